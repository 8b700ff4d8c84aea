package session

import "github.com/wamigrate/wamigrate/internal/shared"

// Policy decides whether a migration between two phone numbers is permitted.
// This is a capability check against static configuration, not an ownership
// proof: the destination number is never validated.
type Policy struct {
	adminPhone   string
	allowedPairs []shared.MigrationPair
}

// NewPolicy creates a Policy from the configured admin phone and allow-list.
func NewPolicy(adminPhone string, allowedPairs []shared.MigrationPair) *Policy {
	return &Policy{adminPhone: adminPhone, allowedPairs: allowedPairs}
}

// AdminPhone returns the configured administrator phone number.
func (p *Policy) AdminPhone() string { return p.adminPhone }

// IsAdmin reports whether phone is the configured administrator.
func (p *Policy) IsAdmin(phone string) bool {
	return p.adminPhone != "" && phone == p.adminPhone
}

// CanMigrate reports whether from may migrate to to: either from is the
// administrator, or the exact pair appears in the allow-list.
func (p *Policy) CanMigrate(from, to string) bool {
	if p.IsAdmin(from) {
		return true
	}
	for _, pair := range p.allowedPairs {
		if pair.From == from && pair.To == to {
			return true
		}
	}
	return false
}
