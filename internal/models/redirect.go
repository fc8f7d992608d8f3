package models

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// WildcardToken is the placeholder character used in redirect rule paths.
// In a source path it matches one or more arbitrary characters (captured);
// in a destination path it is replaced by the captured substring.
const WildcardToken = "*"

// RedirectRule is a persisted URL redirect authored in the back-office.
// Rules are soft-deleted only; the gate never removes them and only ever
// bumps the hit counter.
type RedirectRule struct {
	// ID identifies the rule.
	ID uuid.UUID `json:"id"`
	// Source is the request path to match, optionally containing a
	// wildcard token when IsWildcard is set.
	Source string `json:"source"`
	// Destination is the target path, optionally containing a wildcard
	// token to be substituted with the captured source segment.
	Destination string `json:"destination"`
	// StatusCode is the HTTP status to respond with (301/302/307/308).
	StatusCode int `json:"status_code"`
	// IsWildcard marks the rule as pattern-matched rather than exact.
	IsWildcard bool `json:"is_wildcard"`
	// IsActive controls whether the rule participates in matching.
	IsActive bool `json:"is_active"`
	// DeletedAt is the soft-delete marker; nil for live rules.
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	// HitCount is the number of requests this rule has redirected.
	HitCount int64 `json:"hit_count"`
	// LastHitAt is when the rule last matched a request.
	LastHitAt *time.Time `json:"last_hit_at,omitempty"`
	// CreatedAt is when the rule was authored.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the rule was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}

// RedirectStatus returns the HTTP status code to emit for this rule.
// Anything outside the four supported redirect codes falls back to a
// permanent redirect; a configured code is otherwise emitted exactly as
// stored, never normalized.
func (r *RedirectRule) RedirectStatus() int {
	switch r.StatusCode {
	case http.StatusMovedPermanently,
		http.StatusFound,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect:
		return r.StatusCode
	default:
		return http.StatusMovedPermanently
	}
}
