package models

import "errors"

// Sentinel errors shared between the gate and its collaborators. Callers
// check these with errors.Is to distinguish expected misses (no session,
// no matching row) from real store failures.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoSession is returned when the request carries no resolvable
	// session cookie. It is distinct from a store failure: the gate treats
	// both the same way in the admin branch, but only real failures are
	// logged as errors.
	ErrNoSession = errors.New("no session")

	// ErrSessionExpired is returned when a session cookie resolves to a
	// record that has already lapsed.
	ErrSessionExpired = errors.New("session expired")

	// ErrStoreUnavailable is returned when the backing store cannot be
	// reached. Gate stages that consume it fail open.
	ErrStoreUnavailable = errors.New("store unavailable")
)
