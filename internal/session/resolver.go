package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pixfil/yogapluriel-sub002/internal/config"
	"github.com/pixfil/yogapluriel-sub002/internal/gate"
	"github.com/pixfil/yogapluriel-sub002/internal/models"
	"github.com/pixfil/yogapluriel-sub002/pkg/logger"
)

// Resolver resolves session cookies to principals, implementing the gate's
// SessionResolver interface. It distinguishes three outcomes the gate
// handles differently: no usable session (models.ErrNoSession or
// models.ErrSessionExpired), a store failure (any other error), and success
// — optionally carrying refreshed cookies when the session was extended.
type Resolver struct {
	cfg    config.SessionConfig
	store  Store
	codec  tokenCodec
	logger *logrus.Logger

	// now is the clock, swappable in tests.
	now func() time.Time
}

// NewResolver creates a session resolver over the given store.
func NewResolver(cfg config.SessionConfig, store Store, log *logrus.Logger) *Resolver {
	return &Resolver{
		cfg:    cfg,
		store:  store,
		codec:  tokenCodec{secret: []byte(cfg.Secret)},
		logger: log,
		now:    time.Now,
	}
}

// Resolve extracts and verifies the session cookie on a request, loads the
// session record, and slides its expiry forward when it is close to
// lapsing. A tampered or unparseable cookie is treated as no session, not
// as a store failure.
func (r *Resolver) Resolve(ctx context.Context, req *http.Request) (*gate.Resolution, error) {
	cookie, err := req.Cookie(r.cfg.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, models.ErrNoSession
	}

	sessionID, err := r.codec.parse(cookie.Value)
	if err != nil {
		logger.WithCorrelationID(ctx, r.logger).WithError(err).Debug("Rejected session cookie")
		return nil, models.ErrNoSession
	}

	sess, err := r.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNoSession
		}
		return nil, fmt.Errorf("session lookup failed: %w", err)
	}

	now := r.now()
	if sess.Expired(now) {
		return nil, models.ErrSessionExpired
	}

	resolution := &gate.Resolution{PrincipalID: sess.PrincipalID}

	if sess.TTLRemaining(now) < r.cfg.RefreshWindow {
		if refreshed := r.refresh(ctx, sess, now); refreshed != nil {
			resolution.RefreshedCookies = []*http.Cookie{refreshed}
		}
	}

	return resolution, nil
}

// refresh extends the session record by a full TTL and mints a replacement
// cookie. A failed refresh is logged and swallowed: the current session is
// still valid, so the request proceeds with the old cookie.
func (r *Resolver) refresh(ctx context.Context, sess *models.Session, now time.Time) *http.Cookie {
	log := logger.WithCorrelationID(ctx, r.logger)

	sess.ExpiresAt = now.Add(r.cfg.TTL)
	if err := r.store.StoreSession(ctx, sess, r.cfg.TTL); err != nil {
		log.WithError(err).WithField("session_id", sess.ID).Warn("Session refresh failed")
		return nil
	}

	token, err := r.codec.mint(sess.ID, sess.ExpiresAt)
	if err != nil {
		log.WithError(err).WithField("session_id", sess.ID).Warn("Session cookie mint failed")
		return nil
	}

	log.WithField("session_id", sess.ID).Debug("Session refreshed")

	return &http.Cookie{
		Name:     r.cfg.CookieName,
		Value:    token,
		Path:     "/",
		Domain:   r.cfg.CookieDomain,
		Expires:  sess.ExpiresAt,
		MaxAge:   int(r.cfg.TTL / time.Second),
		HttpOnly: true,
		Secure:   r.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
