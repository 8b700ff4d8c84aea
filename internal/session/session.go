// package session implements stateless session tokens and the migration
// authorization policy.
//
// A token is an AES-GCM sealed JSON claim set carrying the principal's phone
// number, issuance time and role. Validity is purely time-based: there is no
// server-side session store and no revocation before natural expiry, which is
// acceptable for a single-administrator deployment.
package session

import (
	"fmt"
	"time"

	"github.com/wamigrate/wamigrate/internal/cryptox"
	"github.com/wamigrate/wamigrate/internal/shared"
)

// TTL is the fixed lifetime of an issued token.
const TTL = 24 * time.Hour

// Roles carried in a token.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Claims is the plaintext content of a session token.
type Claims struct {
	PhoneNumber string `json:"phoneNumber"`
	IssuedAt    int64  `json:"timestamp"` // unix milliseconds
	Role        string `json:"role"`
}

// Validation is the outcome of checking a token. Invalid tokens carry no
// claim data, so callers cannot accidentally trust a failed check.
type Validation struct {
	Valid       bool
	PhoneNumber string
	Role        string
}

// Codec issues and validates session tokens under a derived symmetric key.
type Codec struct {
	key []byte
	now func() time.Time
}

// NewCodec creates a Codec keyed by the configured shared secret.
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, shared.ErrMissingSecret
	}
	return &Codec{key: cryptox.DeriveKey(secret), now: time.Now}, nil
}

// Issue encodes {phone, now, role} as an opaque token string.
func (c *Codec) Issue(phoneNumber, role string) (string, error) {
	if phoneNumber == "" {
		return "", fmt.Errorf("%w: phone number required", shared.ErrInvalidInput)
	}
	if role != RoleAdmin && role != RoleUser {
		return "", fmt.Errorf("%w: unknown role %q", shared.ErrInvalidInput, role)
	}

	claims := Claims{
		PhoneNumber: phoneNumber,
		IssuedAt:    c.now().UnixMilli(),
		Role:        role,
	}
	token, err := cryptox.SealJSON(claims, c.key)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}

// Validate decodes a token and checks its age against TTL. It fails closed:
// any decryption, parse or expiry problem yields Valid=false, never an error.
func (c *Codec) Validate(token string) Validation {
	if token == "" {
		return Validation{}
	}

	var claims Claims
	if err := cryptox.OpenJSON(token, c.key, &claims); err != nil {
		return Validation{}
	}

	age := c.now().Sub(time.UnixMilli(claims.IssuedAt))
	if age > TTL || age < 0 {
		return Validation{}
	}

	return Validation{Valid: true, PhoneNumber: claims.PhoneNumber, Role: claims.Role}
}
