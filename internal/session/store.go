// Package session provides session storage and cookie-based session
// resolution for the gateway. Session records live in Redis (with an
// in-memory fallback for local development); the session cookie carries a
// signed token whose subject is the session ID.
//
// The Redis keys are organized with a prefix to avoid collisions:
//   - gw:session:{id} - login sessions with TTL
//
// All operations are context-aware and provide detailed error reporting.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/pixfil/yogapluriel-sub002/internal/config"
	"github.com/pixfil/yogapluriel-sub002/internal/models"
)

// Store defines the interface for session record storage.
//
// Error Handling: GetSession returns models.ErrNotFound for missing or
// expired records rather than a generic store error, so callers can tell a
// cache miss from a real failure.
//
// Thread Safety: Implementations must be safe for concurrent use.
type Store interface {
	// Close gracefully closes the store.
	Close() error

	// Ping verifies connectivity to the backing store.
	Ping(ctx context.Context) error

	// GetSession retrieves a session record by ID.
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)

	// StoreSession persists a session record with the given TTL,
	// overwriting any existing record with the same ID.
	StoreSession(ctx context.Context, session *models.Session, ttl time.Duration) error

	// DeleteSession removes a session record. Deleting a missing record
	// is not an error.
	DeleteSession(ctx context.Context, id uuid.UUID) error
}

// Client is a Redis-backed implementation of the Store interface.
// It maintains a connection pool and is safe for concurrent use.
type Client struct {
	rdb    *redis.Client
	logger *logrus.Logger
}

// NewClient creates a Redis session store from the given configuration and
// verifies connectivity before returning.
func NewClient(cfg *config.RedisConfig, logger *logrus.Logger) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	if cfg.Password != "" {
		opts.Password = cfg.Password // pragma: allowlist secret
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}

	opts.MaxRetries = cfg.MaxRetries
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConn
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout
	opts.PoolTimeout = cfg.PoolTimeout
	opts.ConnMaxIdleTime = cfg.IdleTimeout

	client := &Client{
		rdb:    redis.NewClient(opts),
		logger: logger,
	}

	if pingErr := client.Ping(context.Background()); pingErr != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", pingErr)
	}

	logger.Info("Connected to Redis successfully")

	return client, nil
}

// Close closes the Redis connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Redis exposes the underlying Redis client for components that share the
// connection pool, such as the rate limiter.
func (c *Client) Redis() *redis.Client {
	return c.rdb
}

// Ping verifies connectivity to the Redis server.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// GetSession retrieves a session record by ID.
func (c *Client) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	data, err := c.rdb.Get(ctx, sessionKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session models.Session
	if unmarshalErr := json.Unmarshal([]byte(data), &session); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", unmarshalErr)
	}

	return &session, nil
}

// StoreSession persists a session record with the given TTL.
func (c *Client) StoreSession(ctx context.Context, session *models.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if setErr := c.rdb.Set(ctx, sessionKey(session.ID), data, ttl).Err(); setErr != nil {
		return fmt.Errorf("failed to store session: %w", setErr)
	}

	c.logger.WithField("session_id", session.ID).Debug("Session stored successfully")
	return nil
}

// DeleteSession removes a session record.
func (c *Client) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if err := c.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	c.logger.WithField("session_id", id).Debug("Session deleted successfully")
	return nil
}

// sessionKey builds the Redis key for a session ID.
func sessionKey(id uuid.UUID) string {
	return "gw:session:" + id.String()
}
