// Package repository provides PostgreSQL-backed implementations of the
// gate's collaborator stores: principal profiles, redirect rules, and the
// settings table. All repositories follow the pool-getter idiom so they
// always use the manager's current connection pool and survive automatic
// reconnection.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pixfil/yogapluriel-sub002/internal/models"
)

// PoolGetter is a function that returns the current database connection pool.
type PoolGetter func() *pgxpool.Pool

// PostgresProfileRepository implements the gate's ProfileStore against the
// profiles table. The pool's database role bypasses row-level security, so
// lookups succeed for any principal; the gate is the enforcement point, not
// the row policy.
type PostgresProfileRepository struct {
	getPool PoolGetter
}

// NewPostgresProfileRepository creates a new PostgreSQL profile repository.
func NewPostgresProfileRepository(poolGetter PoolGetter) *PostgresProfileRepository {
	return &PostgresProfileRepository{
		getPool: poolGetter,
	}
}

// GetProfile retrieves a principal's authorization profile by ID.
// Returns models.ErrNotFound when no profile row exists and
// models.ErrStoreUnavailable when the database is down.
func (r *PostgresProfileRepository) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	pool := r.getPool()
	if pool == nil {
		return nil, models.ErrStoreUnavailable
	}

	query := `
		SELECT id, email, roles, status, created_at, updated_at
		FROM profiles
		WHERE id = $1`

	var (
		profile models.Profile
		roles   []string
		status  string
	)

	err := pool.QueryRow(ctx, query, id).Scan(
		&profile.ID,
		&profile.Email,
		&roles,
		&status,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile.Roles = make([]models.Role, 0, len(roles))
	for _, role := range roles {
		profile.Roles = append(profile.Roles, models.ParseRole(role))
	}
	profile.Status = models.AccountStatus(status)

	return &profile, nil
}
