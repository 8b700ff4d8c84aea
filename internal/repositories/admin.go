package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/wamigrate/wamigrate/internal/models"
	"github.com/wamigrate/wamigrate/internal/shared"
)

// AdminRepository persists verified administrator phone numbers. One row per
// phone number, refreshed on every successful verification.
type AdminRepository struct {
	db *sql.DB
}

// NewAdminRepository creates a new AdminRepository with the given database connection
func NewAdminRepository(db *sql.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// Upsert records a successful verification for phoneNumber, creating the row
// on first sight and refreshing last_verification afterwards.
func (r *AdminRepository) Upsert(phoneNumber string) (*models.Admin, error) {
	if phoneNumber == "" {
		return nil, fmt.Errorf("%w: phone number required", shared.ErrInvalidInput)
	}

	existing, err := r.GetByPhone(phoneNumber)
	if err != nil && !isNotFound(err) {
		return nil, err
	}

	if existing != nil {
		existing.MarkVerified()
		query := `
			UPDATE admins
			SET is_verified = 1, last_verification = ?, updated_at = ?
			WHERE phone_number = ? AND deleted_at IS NULL
		`
		if _, err := r.db.Exec(query, existing.LastVerification(), existing.UpdatedAt(), phoneNumber); err != nil {
			return nil, fmt.Errorf("%w: failed to update admin: %v", shared.ErrStore, err)
		}
		return existing, nil
	}

	sequence, err := NextSequence(r.db, "admins")
	if err != nil {
		return nil, fmt.Errorf("failed to generate sequence: %w", err)
	}

	admin := models.NewAdmin(sequence, phoneNumber)
	admin.SetID(shared.GenerateID())
	admin.MarkVerified()

	if err := admin.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO admins (id, sequence, phone_number, is_verified, last_verification, created_at, updated_at)
		VALUES (?, ?, ?, 1, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		admin.ID(), sequence, phoneNumber,
		admin.LastVerification(), admin.CreatedAt(), admin.UpdatedAt(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to insert admin: %v", shared.ErrStore, err)
	}

	return admin, nil
}

// GetByPhone retrieves an admin by phone number, excluding soft-deleted rows
func (r *AdminRepository) GetByPhone(phoneNumber string) (*models.Admin, error) {
	query := `
		SELECT id, sequence, phone_number, is_verified, last_verification, created_at, updated_at, deleted_at
		FROM admins
		WHERE phone_number = ? AND deleted_at IS NULL
	`

	var (
		id               string
		sequence         int
		phone            string
		verified         bool
		lastVerification sql.NullTime
		createdAt        time.Time
		updatedAt        time.Time
		deletedAt        sql.NullTime
	)

	err := r.db.QueryRow(query, phoneNumber).Scan(
		&id, &sequence, &phone, &verified, &lastVerification, &createdAt, &updatedAt, &deletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: admin %s", shared.ErrNotFound, phoneNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query admin: %v", shared.ErrStore, err)
	}

	admin := models.NewAdmin(sequence, phone)
	admin.SetID(id)
	admin.SetVerified(verified)
	admin.SetCreatedAt(createdAt)
	admin.SetUpdatedAt(updatedAt)
	if lastVerification.Valid {
		admin.SetLastVerification(&lastVerification.Time)
	}
	if deletedAt.Valid {
		admin.SetDeletedAt(&deletedAt.Time)
	}

	return admin, nil
}
