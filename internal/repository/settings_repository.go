package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pixfil/yogapluriel-sub002/internal/models"
)

// maintenanceKey is the settings-table key holding the maintenance flag.
const maintenanceKey = "maintenance"

// PostgresSettingsRepository implements the gate's SettingsStore against
// the key/value settings table, where each value is a JSON document.
type PostgresSettingsRepository struct {
	getPool PoolGetter
}

// NewPostgresSettingsRepository creates a new PostgreSQL settings repository.
func NewPostgresSettingsRepository(poolGetter PoolGetter) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{
		getPool: poolGetter,
	}
}

// MaintenanceFlag fetches the site-wide maintenance flag. A missing
// settings row means maintenance has never been configured and is reported
// as a disabled flag, not an error; the caller fails open on real errors.
func (r *PostgresSettingsRepository) MaintenanceFlag(ctx context.Context) (*models.MaintenanceFlag, error) {
	pool := r.getPool()
	if pool == nil {
		return nil, models.ErrStoreUnavailable
	}

	query := `
		SELECT value
		FROM settings
		WHERE key = $1`

	var raw []byte
	if err := pool.QueryRow(ctx, query, maintenanceKey).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &models.MaintenanceFlag{Enabled: false}, nil
		}
		return nil, fmt.Errorf("failed to fetch maintenance flag: %w", err)
	}

	var flag models.MaintenanceFlag
	if err := json.Unmarshal(raw, &flag); err != nil {
		return nil, fmt.Errorf("failed to decode maintenance flag: %w", err)
	}

	return &flag, nil
}
