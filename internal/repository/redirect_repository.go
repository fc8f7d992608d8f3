package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pixfil/yogapluriel-sub002/internal/models"
)

// redirectColumns is the shared select list for redirect rule rows.
const redirectColumns = `
	id, source, destination, status_code, is_wildcard, is_active,
	deleted_at, hit_count, last_hit_at, created_at, updated_at`

// PostgresRedirectRepository implements the gate's RedirectStore against
// the redirects table. Rules are soft-deleted: every query filters on
// deleted_at IS NULL and nothing here ever removes a row.
type PostgresRedirectRepository struct {
	getPool PoolGetter
}

// NewPostgresRedirectRepository creates a new PostgreSQL redirect repository.
func NewPostgresRedirectRepository(poolGetter PoolGetter) *PostgresRedirectRepository {
	return &PostgresRedirectRepository{
		getPool: poolGetter,
	}
}

// FindExactActive returns the live non-wildcard rule whose source equals
// either path variant, or models.ErrNotFound. A unique index on live rule
// sources guarantees at most one row can match.
func (r *PostgresRedirectRepository) FindExactActive(
	ctx context.Context,
	pathWithSlash, pathWithoutSlash string,
) (*models.RedirectRule, error) {
	pool := r.getPool()
	if pool == nil {
		return nil, models.ErrStoreUnavailable
	}

	query := `
		SELECT ` + redirectColumns + `
		FROM redirects
		WHERE is_active
		  AND NOT is_wildcard
		  AND deleted_at IS NULL
		  AND source IN ($1, $2)
		LIMIT 1`

	rule, err := scanRedirectRule(pool.QueryRow(ctx, query, pathWithSlash, pathWithoutSlash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find exact redirect: %w", err)
	}

	return rule, nil
}

// ListActiveWildcards returns every live wildcard rule in authoring order.
// No server-side path filtering is attempted; the gate evaluates the full
// set in memory.
func (r *PostgresRedirectRepository) ListActiveWildcards(ctx context.Context) ([]*models.RedirectRule, error) {
	pool := r.getPool()
	if pool == nil {
		return nil, models.ErrStoreUnavailable
	}

	query := `
		SELECT ` + redirectColumns + `
		FROM redirects
		WHERE is_active
		  AND is_wildcard
		  AND deleted_at IS NULL
		ORDER BY created_at`

	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list wildcard redirects: %w", err)
	}
	defer rows.Close()

	var rules []*models.RedirectRule
	for rows.Next() {
		rule, scanErr := scanRedirectRule(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan wildcard redirect: %w", scanErr)
		}
		rules = append(rules, rule)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to read wildcard redirects: %w", rowsErr)
	}

	return rules, nil
}

// IncrementHit bumps a rule's hit counter and last-hit timestamp. The write
// is a plain counter bump tolerant of lost updates; callers invoke it
// fire-and-forget off the response path.
func (r *PostgresRedirectRepository) IncrementHit(ctx context.Context, id uuid.UUID) error {
	pool := r.getPool()
	if pool == nil {
		return models.ErrStoreUnavailable
	}

	query := `
		UPDATE redirects
		SET hit_count = hit_count + 1, last_hit_at = now()
		WHERE id = $1`

	if _, err := pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to increment redirect hit: %w", err)
	}

	return nil
}

// scanRedirectRule reads one redirect rule from a row.
func scanRedirectRule(row pgx.Row) (*models.RedirectRule, error) {
	var rule models.RedirectRule
	err := row.Scan(
		&rule.ID,
		&rule.Source,
		&rule.Destination,
		&rule.StatusCode,
		&rule.IsWildcard,
		&rule.IsActive,
		&rule.DeletedAt,
		&rule.HitCount,
		&rule.LastHitAt,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}
