package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/wamigrate/wamigrate/internal/formatter"
	"github.com/wamigrate/wamigrate/internal/models"
)

// BackupFinder resolves the most recent backup for an owner.
type BackupFinder interface {
	Latest(ownerPhone string) (*models.Backup, error)
}

// ExportHandler serves read-only renderings of stored backups: plain-text
// conversation logs, vCard contacts and media listings.
type ExportHandler struct {
	backups BackupFinder
	key     []byte
	logger  *log.Logger
}

// NewExportHandler creates an ExportHandler decrypting payloads with key.
func NewExportHandler(backups BackupFinder, key []byte, logger *log.Logger) *ExportHandler {
	return &ExportHandler{backups: backups, key: key, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *ExportHandler) Routes() []string {
	return []string{
		"GET /export/conversations/{phone}",
		"GET /export/contacts/{phone}",
		"GET /export/media/{phone}",
	}
}

func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasPrefix(r.URL.Path, "/export/conversations/"):
		h.conversations(w, r)
	case strings.HasPrefix(r.URL.Path, "/export/contacts/"):
		h.contacts(w, r)
	case strings.HasPrefix(r.URL.Path, "/export/media/"):
		h.media(w, r)
	default:
		http.NotFound(w, r)
	}
}

// loadExportData decrypts the latest backup for phone. A nil result with a
// nil error means no backup exists.
func (h *ExportHandler) loadExportData(w http.ResponseWriter, phone string) *models.ExportData {
	backup, err := h.backups.Latest(phone)
	if err != nil {
		h.logger.Error("failed to load latest backup", "phone", phone, "error", err)
		writeError(w, statusFromError(err), "Failed to load backup")
		return nil
	}
	if backup == nil {
		writeError(w, http.StatusNotFound, "No backup found")
		return nil
	}

	data, err := formatter.DecodeBackup(backup.EncryptedData(), h.key)
	if err != nil {
		h.logger.Error("failed to decode backup payload", "phone", phone, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to decode backup")
		return nil
	}

	return data
}

type conversationsResponse struct {
	Success       bool                  `json:"success"`
	Conversations []models.Conversation `json:"conversations"`
	ExportDate    time.Time             `json:"export_date"`
	Total         int                   `json:"total"`
}

// conversations renders the conversation log as JSON or as a plain-text
// download, selected by the format query parameter.
func (h *ExportHandler) conversations(w http.ResponseWriter, r *http.Request) {
	phone := r.PathValue("phone")

	data := h.loadExportData(w, phone)
	if data == nil {
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="whatsapp-conversations-%s.txt"`, phone))
		w.Write(formatter.ExportToText(data.Conversations))
		return
	}

	writeJSON(w, http.StatusOK, conversationsResponse{
		Success:       true,
		Conversations: data.Conversations,
		ExportDate:    time.Now().UTC(),
		Total:         len(data.Conversations),
	})
}

// contacts renders the address book as a vCard download.
func (h *ExportHandler) contacts(w http.ResponseWriter, r *http.Request) {
	phone := r.PathValue("phone")

	data := h.loadExportData(w, phone)
	if data == nil {
		return
	}

	w.Header().Set("Content-Type", "text/vcard")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="whatsapp-contacts-%s.vcf"`, phone))
	w.Write(formatter.ExportToVCard(data.Contacts))
}

type mediaResponse struct {
	Success      bool               `json:"success"`
	Media        []models.MediaItem `json:"media"`
	Instructions []string           `json:"instructions"`
}

// media lists media metadata from the backup. Files are never stored server
// side, so the listing ships with manual retrieval instructions.
func (h *ExportHandler) media(w http.ResponseWriter, r *http.Request) {
	phone := r.PathValue("phone")

	data := h.loadExportData(w, phone)
	if data == nil {
		return
	}

	media := data.Media
	if media == nil {
		media = []models.MediaItem{}
	}

	writeJSON(w, http.StatusOK, mediaResponse{
		Success: true,
		Media:   media,
		Instructions: []string{
			"1. Media files are kept in your device storage",
			"2. Download them manually from WhatsApp",
			"3. Or use the mobile app to recover them",
		},
	})
}
