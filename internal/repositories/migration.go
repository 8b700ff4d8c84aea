package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/wamigrate/wamigrate/internal/models"
	"github.com/wamigrate/wamigrate/internal/shared"
)

// MigrationRepository implements models.Repository[*models.MigrationSession]
// for migration session tracking.
//
// Handles session CRUD with soft delete support plus the guarded Transition
// used by the background pipeline: terminal states and progress monotonicity
// are enforced in SQL, so concurrent writers cannot resurrect a finished run.
type MigrationRepository struct {
	db *sql.DB
}

// NewMigrationRepository creates a new MigrationRepository with the given database connection
func NewMigrationRepository(db *sql.DB) *MigrationRepository {
	return &MigrationRepository{db: db}
}

// Create inserts a new migration session into the database with generated ID and sequence
func (r *MigrationRepository) Create(session *models.MigrationSession) error {
	sequence, err := NextSequence(r.db, "migration_sessions")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	session.SetID(id)

	if err := session.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	options, err := models.EncodeOptions(session.Options())
	if err != nil {
		return err
	}

	query := `
		INSERT INTO migration_sessions (
			id, sequence, from_phone, to_phone, status, migration_type,
			options, progress, error_message, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var errorMessage any = session.ErrorMessage()
	if errorMessage == "" {
		errorMessage = nil
	}

	_, err = r.db.Exec(query,
		id,
		sequence,
		session.FromPhone(),
		session.ToPhone(),
		session.Status(),
		session.MigrationType(),
		options,
		session.Progress(),
		errorMessage,
		session.CreatedAt(),
		session.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert migration session: %v", shared.ErrStore, err)
	}

	return nil
}

// Get retrieves a migration session by ID, excluding soft-deleted sessions
func (r *MigrationRepository) Get(id string) (*models.MigrationSession, error) {
	query := `
		SELECT id, sequence, from_phone, to_phone, status, migration_type,
			options, progress, error_message, created_at, updated_at, deleted_at
		FROM migration_sessions
		WHERE id = ? AND deleted_at IS NULL
	`

	session, err := scanSession(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: migration session %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to scan migration session: %v", shared.ErrStore, err)
	}
	return session, nil
}

// Update persists all mutable fields of an existing session
func (r *MigrationRepository) Update(session *models.MigrationSession) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	options, err := models.EncodeOptions(session.Options())
	if err != nil {
		return err
	}

	now := time.Now()
	session.SetUpdatedAt(now)

	query := `
		UPDATE migration_sessions
		SET status = ?, migration_type = ?, options = ?, progress = ?,
			error_message = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	var errorMessage any = session.ErrorMessage()
	if errorMessage == "" {
		errorMessage = nil
	}

	result, err := r.db.Exec(query,
		session.Status(),
		session.MigrationType(),
		options,
		session.Progress(),
		errorMessage,
		now,
		session.ID(),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to update migration session: %v", shared.ErrStore, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: migration session %s", shared.ErrNotFound, session.ID())
	}

	return nil
}

// Transition moves a session to status/progress with the state machine rules
// applied in SQL: only non-terminal rows with progress <= the new value match.
// Returns ErrTerminalState when the row exists but already finished, so the
// pipeline and cancel paths stay idempotent under races.
func (r *MigrationRepository) Transition(id, status string, progress int, errorMessage string) error {
	if !models.ValidStatus(status) {
		return fmt.Errorf("%w: unknown status %q", shared.ErrInvalidInput, status)
	}

	query := `
		UPDATE migration_sessions
		SET status = ?, progress = ?, error_message = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
			AND status NOT IN (?, ?)
			AND progress <= ?
	`

	var msg any = errorMessage
	if errorMessage == "" {
		msg = nil
	}

	result, err := r.db.Exec(query,
		status, progress, msg, time.Now(),
		id, models.StatusCompleted, models.StatusFailed, progress,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to transition migration session: %v", shared.ErrStore, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		current, getErr := r.Get(id)
		if getErr != nil {
			return getErr
		}
		if current.Terminal() {
			return fmt.Errorf("%w: %s", shared.ErrTerminalState, current.Status())
		}
		return fmt.Errorf("%w: progress cannot regress below %d", shared.ErrInvalidInput, current.Progress())
	}

	return nil
}

// Fail marks a session failed with the given reason, keeping whatever
// progress it reached. A single statement, so it cannot race a concurrent
// stage transition into an inconsistent row.
func (r *MigrationRepository) Fail(id, reason string) error {
	query := `
		UPDATE migration_sessions
		SET status = ?, error_message = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
			AND status NOT IN (?, ?)
	`

	var msg any = reason
	if reason == "" {
		msg = nil
	}

	result, err := r.db.Exec(query,
		models.StatusFailed, msg, time.Now(),
		id, models.StatusCompleted, models.StatusFailed,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to fail migration session: %v", shared.ErrStore, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		current, getErr := r.Get(id)
		if getErr != nil {
			return getErr
		}
		return fmt.Errorf("%w: %s", shared.ErrTerminalState, current.Status())
	}

	return nil
}

// Delete soft-deletes a migration session by ID
func (r *MigrationRepository) Delete(id string) error {
	query := `
		UPDATE migration_sessions
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete migration session: %v", shared.ErrStore, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: migration session %s", shared.ErrNotFound, id)
	}

	return nil
}

// List retrieves all migration sessions matching the given criteria, excluding soft-deleted sessions
func (r *MigrationRepository) List(criteria map[string]any) ([]*models.MigrationSession, error) {
	query := `
		SELECT id, sequence, from_phone, to_phone, status, migration_type,
			options, progress, error_message, created_at, updated_at, deleted_at
		FROM migration_sessions
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if fromPhone, ok := criteria["from_phone"].(string); ok && fromPhone != "" {
		query += " AND from_phone = ?"
		args = append(args, fromPhone)
	}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY sequence DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query migration sessions: %v", shared.ErrStore, err)
	}
	defer rows.Close()

	var sessions []*models.MigrationSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan migration session: %v", shared.ErrStore, err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return sessions, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanSession scans one row into a [models.MigrationSession]
func scanSession(row scanner) (*models.MigrationSession, error) {
	var (
		id            string
		sequence      int
		fromPhone     string
		toPhone       string
		status        string
		migrationType string
		options       string
		progress      int
		errorMessage  sql.NullString
		createdAt     time.Time
		updatedAt     time.Time
		deletedAt     sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &fromPhone, &toPhone, &status, &migrationType,
		&options, &progress, &errorMessage, &createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	opts, err := models.DecodeOptions(options)
	if err != nil {
		return nil, err
	}

	session := models.NewMigrationSession(sequence, fromPhone, toPhone, migrationType, opts)
	session.SetID(id)
	session.SetStatus(status)
	session.SetProgress(progress)
	session.SetCreatedAt(createdAt)
	session.SetUpdatedAt(updatedAt)
	if errorMessage.Valid {
		session.SetErrorMessage(errorMessage.String)
	}
	if deletedAt.Valid {
		session.SetDeletedAt(&deletedAt.Time)
	}

	return session, nil
}
