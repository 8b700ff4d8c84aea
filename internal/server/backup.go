package server

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/wamigrate/wamigrate/internal/models"
	"github.com/wamigrate/wamigrate/internal/session"
)

// BackupStore is the subset of the backup repository the handler needs.
type BackupStore interface {
	Create(backup *models.Backup) error
	Get(id string) (*models.Backup, error)
}

// BackupHandler serves backup persistence and status lookups.
type BackupHandler struct {
	codec   *session.Codec
	backups BackupStore
	logger  *log.Logger
}

// NewBackupHandler creates a BackupHandler with the given codec and store.
func NewBackupHandler(codec *session.Codec, backups BackupStore, logger *log.Logger) *BackupHandler {
	return &BackupHandler{codec: codec, backups: backups, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *BackupHandler) Routes() []string {
	return []string{
		"POST /backup/save",
		"GET /backup/status/{id}",
	}
}

func (h *BackupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/backup/save":
		h.save(w, r)
	case r.Method == http.MethodGet:
		h.status(w, r)
	default:
		http.NotFound(w, r)
	}
}

type saveBackupRequest struct {
	UserID        string `json:"userId"`
	SessionToken  string `json:"sessionToken"`
	EncryptedData string `json:"encryptedData"`
	BackupType    string `json:"backupType"`
}

type saveBackupResponse struct {
	Success  bool   `json:"success"`
	BackupID string `json:"backupId"`
	Message  string `json:"message"`
}

// save persists an opaque encrypted payload for the authenticated owner.
func (h *BackupHandler) save(w http.ResponseWriter, r *http.Request) {
	var req saveBackupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.UserID == "" || req.EncryptedData == "" {
		writeError(w, http.StatusBadRequest, "Missing required data")
		return
	}

	if !h.codec.Validate(req.SessionToken).Valid {
		writeError(w, http.StatusUnauthorized, "Invalid session")
		return
	}

	backup := models.NewBackup(0, req.UserID, req.EncryptedData, req.BackupType)
	if err := h.backups.Create(backup); err != nil {
		h.logger.Error("failed to save backup", "owner", req.UserID, "error", err)
		writeError(w, statusFromError(err), "Failed to save backup")
		return
	}

	writeJSON(w, http.StatusOK, saveBackupResponse{
		Success:  true,
		BackupID: backup.ID(),
		Message:  "Backup saved",
	})
}

type backupStatusResponse struct {
	Backup   backupView `json:"backup"`
	Status   string     `json:"status"`
	Progress int        `json:"progress"`
}

// status reports a stored backup. Persistence is synchronous, so a found
// record is always complete.
func (h *BackupHandler) status(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	backup, err := h.backups.Get(id)
	if err != nil {
		status := statusFromError(err)
		if status == http.StatusNotFound {
			writeError(w, status, "Backup not found")
		} else {
			h.logger.Error("failed to load backup", "id", id, "error", err)
			writeError(w, status, "Failed to load backup")
		}
		return
	}

	writeJSON(w, http.StatusOK, backupStatusResponse{
		Backup:   backupViewOf(backup),
		Status:   "completed",
		Progress: 100,
	})
}
