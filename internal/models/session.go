package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is a server-side login session referenced by the session cookie.
// The gate only ever resolves sessions; creation and revocation belong to
// the back-office login flow.
type Session struct {
	// ID identifies the session record in the session store.
	ID uuid.UUID `json:"id"`
	// PrincipalID is the authenticated user this session belongs to.
	PrincipalID uuid.UUID `json:"principal_id"`
	// CreatedAt is when the session was established.
	CreatedAt time.Time `json:"created_at"`
	// ExpiresAt is when the session record lapses.
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session has lapsed at the given instant.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// TTLRemaining returns how much session lifetime is left at the given
// instant; zero or negative means the session has lapsed.
func (s *Session) TTLRemaining(now time.Time) time.Duration {
	return s.ExpiresAt.Sub(now)
}
