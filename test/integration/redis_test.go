package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/pixfil/yogapluriel-sub002/internal/config"
	"github.com/pixfil/yogapluriel-sub002/internal/models"
	"github.com/pixfil/yogapluriel-sub002/internal/session"
	"github.com/pixfil/yogapluriel-sub002/pkg/logger"
)

func TestRedisIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	ctx := context.Background()

	// Start Redis container
	redisContainer, err := redis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)

	defer func() {
		if err = redisContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate Redis container: %v", err)
		}
	}()

	// Get connection string
	connectionString, err := redisContainer.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.RedisConfig{
		URL:          connectionString,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConn:  5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
		IdleTimeout:  300 * time.Second,
	}

	log := logger.New("info", "json", "stdout")
	store, err := session.NewClient(cfg, log)
	require.NoError(t, err)
	defer store.Close()

	// Test ping
	err = store.Ping(ctx)
	require.NoError(t, err)

	t.Run("SessionRoundTrip", func(t *testing.T) {
		testSessionRoundTrip(ctx, t, store)
	})

	t.Run("SessionExpiry", func(t *testing.T) {
		testSessionExpiry(ctx, t, store)
	})

	t.Run("SessionOverwrite", func(t *testing.T) {
		testSessionOverwrite(ctx, t, store)
	})

	t.Run("SessionDelete", func(t *testing.T) {
		testSessionDelete(ctx, t, store)
	})
}

func testSessionRoundTrip(ctx context.Context, t *testing.T, store session.Store) {
	sess := &models.Session{
		ID:          uuid.New(),
		PrincipalID: uuid.New(),
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
		ExpiresAt:   time.Now().UTC().Add(time.Hour).Truncate(time.Second),
	}

	err := store.StoreSession(ctx, sess, time.Hour)
	require.NoError(t, err)

	retrieved, err := store.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, retrieved.ID)
	assert.Equal(t, sess.PrincipalID, retrieved.PrincipalID)
	assert.True(t, sess.ExpiresAt.Equal(retrieved.ExpiresAt))
}

func testSessionExpiry(ctx context.Context, t *testing.T, store session.Store) {
	sess := &models.Session{
		ID:          uuid.New(),
		PrincipalID: uuid.New(),
		ExpiresAt:   time.Now().Add(time.Second),
	}

	err := store.StoreSession(ctx, sess, time.Second)
	require.NoError(t, err)

	// Wait for the Redis TTL to lapse
	time.Sleep(1500 * time.Millisecond)

	_, err = store.GetSession(ctx, sess.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func testSessionOverwrite(ctx context.Context, t *testing.T, store session.Store) {
	sess := &models.Session{
		ID:          uuid.New(),
		PrincipalID: uuid.New(),
		ExpiresAt:   time.Now().UTC().Add(time.Hour),
	}

	err := store.StoreSession(ctx, sess, time.Hour)
	require.NoError(t, err)

	// A sliding refresh stores the same ID with a later expiry
	extended := *sess
	extended.ExpiresAt = sess.ExpiresAt.Add(time.Hour)
	err = store.StoreSession(ctx, &extended, 2*time.Hour)
	require.NoError(t, err)

	retrieved, err := store.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, extended.ExpiresAt.Equal(retrieved.ExpiresAt))
}

func testSessionDelete(ctx context.Context, t *testing.T, store session.Store) {
	sess := &models.Session{
		ID:          uuid.New(),
		PrincipalID: uuid.New(),
		ExpiresAt:   time.Now().Add(time.Hour),
	}

	err := store.StoreSession(ctx, sess, time.Hour)
	require.NoError(t, err)

	err = store.DeleteSession(ctx, sess.ID)
	require.NoError(t, err)

	_, err = store.GetSession(ctx, sess.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	// Deleting a missing record is not an error
	err = store.DeleteSession(ctx, sess.ID)
	assert.NoError(t, err)
}
