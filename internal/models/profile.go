// Package models defines the domain entities shared across the site gateway:
// principal profiles, redirect rules, the maintenance flag, and sessions.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is a tag from the fixed role vocabulary assigned to a principal.
// Roles are a closed set so the authorization predicate can be checked
// exhaustively at compile time rather than against free-form strings.
type Role string

const (
	// RoleSuperAdmin grants unrestricted back-office access.
	RoleSuperAdmin Role = "super_admin"
	// RoleAdmin grants full back-office access.
	RoleAdmin Role = "admin"
	// RoleAuthor grants content-editing back-office access.
	RoleAuthor Role = "author"
	// RoleVisitor is the default role for registered site visitors.
	RoleVisitor Role = "visitor"
)

// ParseRole maps a stored role string onto the closed Role set.
// Unknown values are mapped to RoleVisitor so a corrupted or legacy role
// value can never widen a principal's access.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleSuperAdmin, RoleAdmin, RoleAuthor, RoleVisitor:
		return Role(s)
	default:
		return RoleVisitor
	}
}

// AccountStatus describes the lifecycle state of a principal's account.
type AccountStatus string

const (
	// StatusActive means the account is in good standing.
	StatusActive AccountStatus = "active"
	// StatusInactive means the account has been deactivated.
	StatusInactive AccountStatus = "inactive"
	// StatusSuspended means the account has been suspended by an admin.
	StatusSuspended AccountStatus = "suspended"
)

// Profile is the authorization profile of a principal, fetched by ID with
// elevated privilege when the gate checks back-office access.
type Profile struct {
	// ID is the principal's opaque identifier.
	ID uuid.UUID `json:"id"`
	// Email is the account email address.
	Email string `json:"email"`
	// Roles is the set of role tags assigned to the principal.
	Roles []Role `json:"roles"`
	// Status is the account lifecycle state.
	Status AccountStatus `json:"status"`
	// CreatedAt is when the profile row was created.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the profile row was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}

// HasAnyRole reports whether the profile carries at least one of the given
// role tags.
func (p *Profile) HasAnyRole(roles ...Role) bool {
	for _, have := range p.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// CanAccessAdmin is the back-office authorization predicate: the account
// must be active and carry a staff role. Visitors never qualify, whatever
// their status.
func (p *Profile) CanAccessAdmin() bool {
	if p == nil || p.Status != StatusActive {
		return false
	}
	return p.HasAnyRole(RoleSuperAdmin, RoleAdmin, RoleAuthor)
}
