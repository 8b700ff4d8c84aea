package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/wamigrate/wamigrate/internal/models"
	"github.com/wamigrate/wamigrate/internal/session"
	"github.com/wamigrate/wamigrate/internal/tasks"
)

// MigrationStore is the subset of the migration repository the handler needs.
type MigrationStore interface {
	Create(session *models.MigrationSession) error
	Get(id string) (*models.MigrationSession, error)
}

// MigrationHandler serves migration creation, status polling and cancellation.
type MigrationHandler struct {
	codec    *session.Codec
	policy   *session.Policy
	sessions MigrationStore
	engine   tasks.MigrationEngine
	logger   *log.Logger
}

// NewMigrationHandler creates a MigrationHandler with the given dependencies.
func NewMigrationHandler(codec *session.Codec, policy *session.Policy, sessions MigrationStore, engine tasks.MigrationEngine, logger *log.Logger) *MigrationHandler {
	return &MigrationHandler{codec: codec, policy: policy, sessions: sessions, engine: engine, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *MigrationHandler) Routes() []string {
	return []string{
		"POST /migration/start",
		"GET /migration/status/{id}",
		"POST /migration/cancel/{id}",
	}
}

func (h *MigrationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/migration/start":
		h.start(w, r)
	case r.Method == http.MethodGet:
		h.status(w, r)
	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/migration/cancel/"):
		h.cancel(w, r)
	default:
		http.NotFound(w, r)
	}
}

type startMigrationRequest struct {
	FromPhone     string                  `json:"fromPhone"`
	ToPhone       string                  `json:"toPhone"`
	SessionToken  string                  `json:"sessionToken"`
	MigrationType string                  `json:"migrationType"`
	Options       models.MigrationOptions `json:"options"`
}

type startMigrationResponse struct {
	Success       bool     `json:"success"`
	MigrationID   string   `json:"migrationId"`
	Status        string   `json:"status"`
	EstimatedTime string   `json:"estimatedTime"`
	NextSteps     []string `json:"nextSteps"`
}

// start validates the request, persists a new session at preparing/0 and
// launches the background pipeline. The response returns before any stage
// runs; callers poll the status route.
func (h *MigrationHandler) start(w http.ResponseWriter, r *http.Request) {
	var req startMigrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.FromPhone == "" || req.ToPhone == "" {
		writeError(w, http.StatusBadRequest, "Source and destination numbers required")
		return
	}

	if !h.codec.Validate(req.SessionToken).Valid {
		writeError(w, http.StatusUnauthorized, "Invalid session")
		return
	}

	if !h.policy.CanMigrate(req.FromPhone, req.ToPhone) {
		writeError(w, http.StatusForbidden, "Migration not permitted between these numbers")
		return
	}

	migration := models.NewMigrationSession(0, req.FromPhone, req.ToPhone, req.MigrationType, req.Options)
	if err := h.sessions.Create(migration); err != nil {
		h.logger.Error("failed to create migration session", "error", err)
		writeError(w, statusFromError(err), "Failed to start migration")
		return
	}

	// Detached from the request lifetime.
	if err := h.engine.Launch(context.Background(), migration.ID(), nil); err != nil {
		h.logger.Error("failed to launch migration", "id", migration.ID(), "error", err)
		writeError(w, statusFromError(err), "Failed to start migration")
		return
	}

	writeJSON(w, http.StatusOK, startMigrationResponse{
		Success:       true,
		MigrationID:   migration.ID(),
		Status:        "started",
		EstimatedTime: "5-15 minutes",
		NextSteps: []string{
			"Export source data",
			"Convert formats",
			"Generate reports",
			"Prepare exports",
		},
	})
}

type progressInfo struct {
	Percentage int    `json:"percentage"`
	Message    string `json:"message"`
	Step       string `json:"step"`
}

type migrationStatusResponse struct {
	Migration migrationView `json:"migration"`
	Progress  progressInfo  `json:"progress"`
}

// status reads the persisted session; it never touches the running pipeline.
func (h *MigrationHandler) status(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	migration, err := h.sessions.Get(id)
	if err != nil {
		status := statusFromError(err)
		if status == http.StatusNotFound {
			writeError(w, status, "Migration not found")
		} else {
			h.logger.Error("failed to load migration", "id", id, "error", err)
			writeError(w, status, "Failed to load migration")
		}
		return
	}

	writeJSON(w, http.StatusOK, migrationStatusResponse{
		Migration: migrationViewOf(migration),
		Progress: progressInfo{
			Percentage: migration.Progress(),
			Message:    tasks.StatusMessage(migration.Status()),
			Step:       migration.Status(),
		},
	})
}

type cancelMigrationResponse struct {
	Success     bool   `json:"success"`
	MigrationID string `json:"migrationId"`
	Status      string `json:"status"`
	Message     string `json:"message"`
}

// cancel stops a non-terminal migration. Finished sessions answer 409.
func (h *MigrationHandler) cancel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.engine.Cancel(id); err != nil {
		status := statusFromError(err)
		switch status {
		case http.StatusNotFound:
			writeError(w, status, "Migration not found")
		case http.StatusConflict:
			writeError(w, status, "Migration already finished")
		default:
			h.logger.Error("failed to cancel migration", "id", id, "error", err)
			writeError(w, status, "Failed to cancel migration")
		}
		return
	}

	writeJSON(w, http.StatusOK, cancelMigrationResponse{
		Success:     true,
		MigrationID: id,
		Status:      models.StatusFailed,
		Message:     tasks.CancelReason,
	})
}
