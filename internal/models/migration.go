package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wamigrate/wamigrate/internal/shared"
)

// Migration session statuses. A session moves through the pipeline statuses
// in order; Failed is reachable from any non-terminal status.
const (
	StatusPreparing  = "preparing"
	StatusExporting  = "exporting"
	StatusConverting = "converting"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Migration types.
const (
	MigrationFull    = "full"
	MigrationPartial = "partial"
)

// PipelineStatuses lists the non-terminal-to-terminal stage order of a
// successful migration run.
var PipelineStatuses = []string{StatusPreparing, StatusExporting, StatusConverting, StatusCompleted}

// TerminalStatus reports whether status permits no further transitions.
func TerminalStatus(status string) bool {
	return status == StatusCompleted || status == StatusFailed
}

// ValidStatus reports whether status is a known migration status.
func ValidStatus(status string) bool {
	switch status {
	case StatusPreparing, StatusExporting, StatusConverting, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// MigrationOptions is the set of named flags selecting what a migration carries over.
type MigrationOptions struct {
	Conversations bool `json:"conversations"`
	Contacts      bool `json:"contacts"`
	Media         bool `json:"media"`
}

// EncodeOptions serializes options for the migration_sessions.options column.
func EncodeOptions(o MigrationOptions) (string, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return "", fmt.Errorf("failed to encode options: %w", err)
	}
	return string(data), nil
}

// DecodeOptions parses the migration_sessions.options column.
func DecodeOptions(raw string) (MigrationOptions, error) {
	var o MigrationOptions
	if raw == "" {
		return o, nil
	}
	if err := json.Unmarshal([]byte(raw), &o); err != nil {
		return o, fmt.Errorf("failed to decode options: %w", err)
	}
	return o, nil
}

// MigrationSession tracks one source -> destination data transfer through a
// fixed sequence of stages. Progress is monotonically non-decreasing and
// status transitions follow the pipeline order.
type MigrationSession struct {
	id            string
	sequence      int
	fromPhone     string
	toPhone       string
	status        string
	migrationType string
	options       MigrationOptions
	progress      int
	errorMessage  string
	createdAt     time.Time
	updatedAt     time.Time
	deletedAt     *time.Time
}

// NewMigrationSession creates a session at status preparing with zero progress.
func NewMigrationSession(sequence int, fromPhone, toPhone, migrationType string, options MigrationOptions) *MigrationSession {
	now := time.Now()
	if migrationType == "" {
		migrationType = MigrationFull
	}
	return &MigrationSession{
		sequence:      sequence,
		fromPhone:     fromPhone,
		toPhone:       toPhone,
		status:        StatusPreparing,
		migrationType: migrationType,
		options:       options,
		progress:      0,
		createdAt:     now,
		updatedAt:     now,
	}
}

func (m *MigrationSession) ID() string                { return m.id }
func (m *MigrationSession) Sequence() int             { return m.sequence }
func (m *MigrationSession) FromPhone() string         { return m.fromPhone }
func (m *MigrationSession) ToPhone() string           { return m.toPhone }
func (m *MigrationSession) Status() string            { return m.status }
func (m *MigrationSession) MigrationType() string     { return m.migrationType }
func (m *MigrationSession) Options() MigrationOptions { return m.options }
func (m *MigrationSession) Progress() int             { return m.progress }
func (m *MigrationSession) ErrorMessage() string      { return m.errorMessage }
func (m *MigrationSession) CreatedAt() time.Time      { return m.createdAt }
func (m *MigrationSession) UpdatedAt() time.Time      { return m.updatedAt }
func (m *MigrationSession) DeletedAt() *time.Time     { return m.deletedAt }

func (m *MigrationSession) SetID(id string)                    { m.id = id }
func (m *MigrationSession) SetErrorMessage(msg string)         { m.errorMessage = msg }
func (m *MigrationSession) SetCreatedAt(t time.Time)           { m.createdAt = t }
func (m *MigrationSession) SetUpdatedAt(t time.Time)           { m.updatedAt = t }
func (m *MigrationSession) SetDeletedAt(t *time.Time)          { m.deletedAt = t }
func (m *MigrationSession) SetOptions(o MigrationOptions)      { m.options = o }
func (m *MigrationSession) SetMigrationType(migType string)    { m.migrationType = migType }
func (m *MigrationSession) SetStatus(status string)            { m.status = status }
func (m *MigrationSession) SetProgress(progress int)           { m.progress = progress }

// Terminal reports whether the session reached completed or failed.
func (m *MigrationSession) Terminal() bool { return TerminalStatus(m.status) }

// Advance applies a pipeline transition, enforcing status order and progress
// monotonicity. Terminal sessions reject all transitions.
func (m *MigrationSession) Advance(status string, progress int) error {
	if m.Terminal() {
		return fmt.Errorf("%w: %s", shared.ErrTerminalState, m.status)
	}
	if !ValidStatus(status) {
		return fmt.Errorf("%w: unknown status %q", shared.ErrInvalidInput, status)
	}
	if progress < m.progress {
		return fmt.Errorf("%w: progress cannot regress from %d to %d", shared.ErrInvalidInput, m.progress, progress)
	}
	if progress > 100 {
		return fmt.Errorf("%w: progress above 100", shared.ErrInvalidInput)
	}
	if status != StatusFailed && stageIndex(status) < stageIndex(m.status) {
		return fmt.Errorf("%w: cannot move from %s back to %s", shared.ErrInvalidInput, m.status, status)
	}
	m.status = status
	m.progress = progress
	m.updatedAt = time.Now()
	return nil
}

// Fail marks the session failed, keeping progress at its last value.
func (m *MigrationSession) Fail(reason string) error {
	if err := m.Advance(StatusFailed, m.progress); err != nil {
		return err
	}
	m.errorMessage = reason
	return nil
}

func stageIndex(status string) int {
	for i, s := range PipelineStatuses {
		if s == status {
			return i
		}
	}
	return -1
}

// Validate checks if the session's data is valid.
func (m *MigrationSession) Validate() error {
	if m.fromPhone == "" {
		return fmt.Errorf("%w: source phone number required", shared.ErrInvalidInput)
	}
	if m.toPhone == "" {
		return fmt.Errorf("%w: destination phone number required", shared.ErrInvalidInput)
	}
	if !ValidStatus(m.status) {
		return fmt.Errorf("%w: unknown status %q", shared.ErrInvalidInput, m.status)
	}
	if m.migrationType != MigrationFull && m.migrationType != MigrationPartial {
		return fmt.Errorf("%w: unknown migration type %q", shared.ErrInvalidInput, m.migrationType)
	}
	if m.progress < 0 || m.progress > 100 {
		return fmt.Errorf("%w: progress out of range: %d", shared.ErrInvalidInput, m.progress)
	}
	return nil
}
