// Package integration contains integration tests for the site gateway.
//
// These tests use testcontainers to spin up real dependencies (Redis) and
// exercise the session store against an environment that closely matches
// production.
package integration
