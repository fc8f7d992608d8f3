// This file implements an in-memory store with the same Store interface as
// the Redis client, allowing local development without Redis dependencies.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pixfil/yogapluriel-sub002/internal/models"
)

// cleanupInterval is the interval between expired item cleanup runs.
const cleanupInterval = 5 * time.Minute

// MemoryStore is an in-memory implementation of the Store interface.
// It provides the same functionality as the Redis store but without
// persistence. Expired records are reaped by a background goroutine and
// also filtered on read.
type MemoryStore struct {
	sessions map[uuid.UUID]*expiringSession
	logger   *logrus.Logger
	mu       sync.RWMutex
	stop     chan struct{}
	stopOnce sync.Once
}

// expiringSession wraps a session record with its store-level expiry.
type expiringSession struct {
	session   *models.Session
	expiresAt time.Time
}

func (e *expiringSession) expired() bool {
	return time.Now().After(e.expiresAt)
}

// NewMemoryStore creates a new in-memory session store with TTL cleanup.
func NewMemoryStore(logger *logrus.Logger) *MemoryStore {
	store := &MemoryStore{
		sessions: make(map[uuid.UUID]*expiringSession),
		logger:   logger,
		stop:     make(chan struct{}),
	}

	go store.cleanupLoop()

	return store
}

// Close stops the background cleanup goroutine.
func (m *MemoryStore) Close() error {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	return nil
}

// Ping always succeeds for the in-memory store.
func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// GetSession retrieves a session record by ID.
func (m *MemoryStore) GetSession(_ context.Context, id uuid.UUID) (*models.Session, error) {
	m.mu.RLock()
	item, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok || item.expired() {
		return nil, models.ErrNotFound
	}

	// Return a copy so callers cannot mutate the stored record.
	session := *item.session
	return &session, nil
}

// StoreSession persists a session record with the given TTL.
func (m *MemoryStore) StoreSession(_ context.Context, session *models.Session, ttl time.Duration) error {
	stored := *session

	m.mu.Lock()
	m.sessions[session.ID] = &expiringSession{
		session:   &stored,
		expiresAt: time.Now().Add(ttl),
	}
	m.mu.Unlock()

	return nil
}

// DeleteSession removes a session record.
func (m *MemoryStore) DeleteSession(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// cleanupLoop periodically removes expired session records.
func (m *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

func (m *MemoryStore) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, item := range m.sessions {
		if item.expired() {
			delete(m.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		m.logger.WithField("removed", removed).Debug("Cleaned up expired sessions")
	}
}
