package models

import (
	"fmt"
	"time"

	"github.com/wamigrate/wamigrate/internal/shared"
)

// Admin is a phone number verified against the configured administrator
// identity. One row per phone number, upserted on each verification.
type Admin struct {
	id               string
	sequence         int
	phoneNumber      string
	verified         bool
	lastVerification *time.Time
	createdAt        time.Time
	updatedAt        time.Time
	deletedAt        *time.Time
}

// NewAdmin creates an unverified admin record for the given phone number.
func NewAdmin(sequence int, phoneNumber string) *Admin {
	now := time.Now()
	return &Admin{
		sequence:    sequence,
		phoneNumber: phoneNumber,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (a *Admin) ID() string                   { return a.id }
func (a *Admin) Sequence() int                { return a.sequence }
func (a *Admin) PhoneNumber() string          { return a.phoneNumber }
func (a *Admin) Verified() bool               { return a.verified }
func (a *Admin) LastVerification() *time.Time { return a.lastVerification }
func (a *Admin) CreatedAt() time.Time         { return a.createdAt }
func (a *Admin) UpdatedAt() time.Time         { return a.updatedAt }
func (a *Admin) DeletedAt() *time.Time        { return a.deletedAt }

func (a *Admin) SetID(id string)                 { a.id = id }
func (a *Admin) SetCreatedAt(t time.Time)        { a.createdAt = t }
func (a *Admin) SetUpdatedAt(t time.Time)        { a.updatedAt = t }
func (a *Admin) SetDeletedAt(t *time.Time)       { a.deletedAt = t }
func (a *Admin) SetLastVerification(t *time.Time) { a.lastVerification = t }
func (a *Admin) SetVerified(v bool)              { a.verified = v }

// MarkVerified records a successful verification at the current time.
func (a *Admin) MarkVerified() {
	now := time.Now()
	a.verified = true
	a.lastVerification = &now
	a.updatedAt = now
}

// Validate checks if the admin's data is valid.
func (a *Admin) Validate() error {
	if a.phoneNumber == "" {
		return fmt.Errorf("%w: phone number required", shared.ErrInvalidInput)
	}
	return nil
}
