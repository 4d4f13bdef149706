package domain

import (
	"maps"
	"time"

	"github.com/yndnr/sessionlink/pkg/token"
)

// Identity claim names. Changing any of these changes what every consumer
// sees in Identity, so treat them as part of the public contract.
const (
	ClaimSubject    = "sub"
	ClaimPrivileged = "privileged"
	ClaimExpiresAt  = "exp"
)

// Identity is the projection of a decoded bearer credential used for
// authorization decisions on the client side.
//
// Projection rules:
//   - Subject:    "sub" claim (string, empty if absent)
//   - Privileged: "privileged" claim (true only for a JSON boolean true)
//   - ExpiresAt:  "exp" claim (zero time if absent or malformed)
//   - Claims:     a copy of the full decoded claim set
type Identity struct {
	Subject    string         `json:"subject,omitempty" yaml:"subject,omitempty"`
	Privileged bool           `json:"privileged" yaml:"privileged"`
	ExpiresAt  time.Time      `json:"expires_at,omitzero" yaml:"expires_at,omitempty"`
	Claims     map[string]any `json:"claims,omitempty" yaml:"claims,omitempty"`
}

// NewIdentity projects decoded claims onto an Identity.
func NewIdentity(claims token.Claims) *Identity {
	id := &Identity{
		Subject:   claims.Subject(),
		ExpiresAt: claims.ExpiresAt(),
		Claims:    maps.Clone(map[string]any(claims)),
	}
	if v, ok := claims[ClaimPrivileged].(bool); ok {
		id.Privileged = v
	}
	if id.Claims == nil {
		id.Claims = map[string]any{}
	}
	return id
}

// IsExpired reports whether the identity carries an expiry that has passed.
// An identity without "exp" never expires on the client side.
func (i *Identity) IsExpired(now time.Time) bool {
	if i == nil || i.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(i.ExpiresAt)
}

// Session is the current authentication state.
//
// The zero value is the empty (logged out) session.
type Session struct {
	Token    string    `json:"-" yaml:"-"`
	Identity *Identity `json:"identity,omitempty" yaml:"identity,omitempty"`
}

// NewSession derives a session from a raw token and its decoded claims.
func NewSession(raw string, claims token.Claims) Session {
	return Session{
		Token:    raw,
		Identity: NewIdentity(claims),
	}
}

// IsAuthenticated reports whether the session carries a token.
func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}

// Subject returns the identity subject, or "" for the empty session.
func (s Session) Subject() string {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.Subject
}
