package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/wamigrate/wamigrate/internal/models"
	"github.com/wamigrate/wamigrate/internal/shared"
)

// BackupRepository implements models.Repository[*models.Backup] for backup
// record persistence. Payloads are stored opaque; the repository never
// inspects them.
type BackupRepository struct {
	db *sql.DB
}

// NewBackupRepository creates a new BackupRepository with the given database connection
func NewBackupRepository(db *sql.DB) *BackupRepository {
	return &BackupRepository{db: db}
}

// Create inserts a new backup record into the database with generated ID and sequence
func (r *BackupRepository) Create(backup *models.Backup) error {
	sequence, err := NextSequence(r.db, "backups")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	backup.SetID(id)

	if err := backup.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO backups (
			id, sequence, owner_phone, encrypted_data, backup_type, backup_name,
			conversation_count, contact_count, media_count, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		backup.OwnerPhone(),
		backup.EncryptedData(),
		backup.BackupType(),
		backup.BackupName(),
		backup.ConversationCount(),
		backup.ContactCount(),
		backup.MediaCount(),
		backup.CreatedAt(),
		backup.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert backup: %v", shared.ErrStore, err)
	}

	return nil
}

// Get retrieves a backup by ID, excluding soft-deleted backups
func (r *BackupRepository) Get(id string) (*models.Backup, error) {
	query := selectBackups + " AND id = ?"

	backup, err := scanBackup(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: backup %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to scan backup: %v", shared.ErrStore, err)
	}
	return backup, nil
}

// Latest returns the most recently created backup for an owner, or (nil, nil)
// when the owner has no backups. Absence is an expected state, not an error.
func (r *BackupRepository) Latest(ownerPhone string) (*models.Backup, error) {
	query := selectBackups + " AND owner_phone = ? ORDER BY sequence DESC LIMIT 1"

	backup, err := scanBackup(r.db.QueryRow(query, ownerPhone))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to scan backup: %v", shared.ErrStore, err)
	}
	return backup, nil
}

// Update persists mutable metadata of an existing backup. The encrypted
// payload is immutable after creation and deliberately not updatable.
func (r *BackupRepository) Update(backup *models.Backup) error {
	if err := backup.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	backup.SetUpdatedAt(now)

	query := `
		UPDATE backups
		SET backup_name = ?, conversation_count = ?, contact_count = ?,
			media_count = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		backup.BackupName(),
		backup.ConversationCount(),
		backup.ContactCount(),
		backup.MediaCount(),
		now,
		backup.ID(),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to update backup: %v", shared.ErrStore, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: backup %s", shared.ErrNotFound, backup.ID())
	}

	return nil
}

// Delete soft-deletes a backup by ID
func (r *BackupRepository) Delete(id string) error {
	query := `
		UPDATE backups
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete backup: %v", shared.ErrStore, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: backup %s", shared.ErrNotFound, id)
	}

	return nil
}

// List retrieves all backups matching the given criteria, excluding soft-deleted backups.
// Results are latest-first.
func (r *BackupRepository) List(criteria map[string]any) ([]*models.Backup, error) {
	query := selectBackups
	args := []any{}

	if ownerPhone, ok := criteria["owner_phone"].(string); ok && ownerPhone != "" {
		query += " AND owner_phone = ?"
		args = append(args, ownerPhone)
	}

	if backupType, ok := criteria["backup_type"].(string); ok && backupType != "" {
		query += " AND backup_type = ?"
		args = append(args, backupType)
	}

	query += " ORDER BY sequence DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query backups: %v", shared.ErrStore, err)
	}
	defer rows.Close()

	var backups []*models.Backup
	for rows.Next() {
		backup, err := scanBackup(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan backup: %v", shared.ErrStore, err)
		}
		backups = append(backups, backup)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return backups, nil
}

const selectBackups = `
	SELECT id, sequence, owner_phone, encrypted_data, backup_type, backup_name,
		conversation_count, contact_count, media_count, created_at, updated_at, deleted_at
	FROM backups
	WHERE deleted_at IS NULL
`

// scanBackup scans one row into a [models.Backup]
func scanBackup(row scanner) (*models.Backup, error) {
	var (
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
		deletedAt         sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &ownerPhone, &encryptedData, &backupType, &backupName,
		&conversationCount, &contactCount, &mediaCount, &createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	backup := models.NewBackup(sequence, ownerPhone, encryptedData, backupType)
	backup.SetID(id)
	backup.SetBackupName(backupName)
	backup.SetConversationCount(conversationCount)
	backup.SetContactCount(contactCount)
	backup.SetMediaCount(mediaCount)
	backup.SetCreatedAt(createdAt)
	backup.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		backup.SetDeletedAt(&deletedAt.Time)
	}

	return backup, nil
}
