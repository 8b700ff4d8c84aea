package models

import (
	"fmt"
	"time"

	"github.com/wamigrate/wamigrate/internal/shared"
)

// Backup types.
const (
	BackupFull    = "full"
	BackupPartial = "partial"
)

// Backup is an owner-tagged, opaque encrypted snapshot of a user's data.
// The payload is never interpreted by the store; only the formatter decodes
// it, given the decryption key.
type Backup struct {
	id                string
	sequence          int
	ownerPhone        string
	encryptedData     string
	backupType        string
	backupName        string
	conversationCount int
	contactCount      int
	mediaCount        int
	createdAt         time.Time
	updatedAt         time.Time
	deletedAt         *time.Time
}

// NewBackup creates a backup record with a generated "Backup <date>" label.
func NewBackup(sequence int, ownerPhone, encryptedData, backupType string) *Backup {
	now := time.Now()
	if backupType == "" {
		backupType = BackupFull
	}
	return &Backup{
		sequence:      sequence,
		ownerPhone:    ownerPhone,
		encryptedData: encryptedData,
		backupType:    backupType,
		backupName:    fmt.Sprintf("Backup %s", now.Format("2006-01-02")),
		createdAt:     now,
		updatedAt:     now,
	}
}

func (b *Backup) ID() string             { return b.id }
func (b *Backup) Sequence() int          { return b.sequence }
func (b *Backup) OwnerPhone() string     { return b.ownerPhone }
func (b *Backup) EncryptedData() string  { return b.encryptedData }
func (b *Backup) BackupType() string     { return b.backupType }
func (b *Backup) BackupName() string     { return b.backupName }
func (b *Backup) ConversationCount() int { return b.conversationCount }
func (b *Backup) ContactCount() int      { return b.contactCount }
func (b *Backup) MediaCount() int        { return b.mediaCount }
func (b *Backup) CreatedAt() time.Time   { return b.createdAt }
func (b *Backup) UpdatedAt() time.Time   { return b.updatedAt }
func (b *Backup) DeletedAt() *time.Time  { return b.deletedAt }

func (b *Backup) SetID(id string)              { b.id = id }
func (b *Backup) SetBackupName(name string)    { b.backupName = name }
func (b *Backup) SetConversationCount(n int)   { b.conversationCount = n }
func (b *Backup) SetContactCount(n int)        { b.contactCount = n }
func (b *Backup) SetMediaCount(n int)          { b.mediaCount = n }
func (b *Backup) SetCreatedAt(t time.Time)     { b.createdAt = t }
func (b *Backup) SetUpdatedAt(t time.Time)     { b.updatedAt = t }
func (b *Backup) SetDeletedAt(t *time.Time)    { b.deletedAt = t }

// Validate checks if the backup's data is valid.
func (b *Backup) Validate() error {
	if b.ownerPhone == "" {
		return fmt.Errorf("%w: owner phone number required", shared.ErrInvalidInput)
	}
	if b.encryptedData == "" {
		return fmt.Errorf("%w: encrypted payload required", shared.ErrInvalidInput)
	}
	if b.backupType != BackupFull && b.backupType != BackupPartial {
		return fmt.Errorf("%w: unknown backup type %q", shared.ErrInvalidInput, b.backupType)
	}
	return nil
}
