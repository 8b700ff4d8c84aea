package server

import (
	"time"

	"github.com/wamigrate/wamigrate/internal/models"
)

// migrationView is the JSON shape of a migration session in responses.
type migrationView struct {
	ID            string                  `json:"id"`
	FromPhone     string                  `json:"from_phone"`
	ToPhone       string                  `json:"to_phone"`
	Status        string                  `json:"status"`
	MigrationType string                  `json:"migration_type"`
	Options       models.MigrationOptions `json:"options"`
	Progress      int                     `json:"progress"`
	ErrorMessage  string                  `json:"error_message,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

func migrationViewOf(m *models.MigrationSession) migrationView {
	return migrationView{
		ID:            m.ID(),
		FromPhone:     m.FromPhone(),
		ToPhone:       m.ToPhone(),
		Status:        m.Status(),
		MigrationType: m.MigrationType(),
		Options:       m.Options(),
		Progress:      m.Progress(),
		ErrorMessage:  m.ErrorMessage(),
		CreatedAt:     m.CreatedAt(),
		UpdatedAt:     m.UpdatedAt(),
	}
}

// backupView is the JSON shape of a backup record in responses. The encrypted
// payload itself is never echoed back.
type backupView struct {
	ID                string    `json:"id"`
	OwnerPhone        string    `json:"owner_phone"`
	BackupType        string    `json:"backup_type"`
	BackupName        string    `json:"backup_name"`
	ConversationCount int       `json:"conversation_count"`
	ContactCount      int       `json:"contact_count"`
	MediaCount        int       `json:"media_count"`
	CreatedAt         time.Time `json:"created_at"`
}

func backupViewOf(b *models.Backup) backupView {
	return backupView{
		ID:                b.ID(),
		OwnerPhone:        b.OwnerPhone(),
		BackupType:        b.BackupType(),
		BackupName:        b.BackupName(),
		ConversationCount: b.ConversationCount(),
		ContactCount:      b.ContactCount(),
		MediaCount:        b.MediaCount(),
		CreatedAt:         b.CreatedAt(),
	}
}
