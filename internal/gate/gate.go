// Package gate implements the request gate that runs in front of page
// rendering: exclusion filtering, admin authorization, site-wide maintenance
// gating, and redirect resolution, applied in that strict order on every
// inbound request.
//
// The gate keeps no state between requests and reads its collaborators fresh
// on every invocation. Its overriding rule is that the public site must stay
// reachable: every collaborator failure outside the admin branch fails open,
// and no code path in this package produces a 5xx.
package gate

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pixfil/yogapluriel-sub002/internal/config"
	"github.com/pixfil/yogapluriel-sub002/internal/constants"
	"github.com/pixfil/yogapluriel-sub002/internal/models"
	"github.com/pixfil/yogapluriel-sub002/pkg/logger"
)

const (
	// redirectCacheControl is set on every rule-driven redirect response.
	// Redirect mappings rarely change once published, so they are cached as
	// effectively permanent regardless of the configured status code.
	redirectCacheControl = "public, max-age=31536000, immutable"

	// hitIncrementTimeout bounds the detached hit-counter write so an
	// unreachable store cannot leak goroutines indefinitely.
	hitIncrementTimeout = 5 * time.Second
)

// Resolution is the outcome of resolving the session cookie on a request.
type Resolution struct {
	// PrincipalID is the authenticated user the session belongs to.
	PrincipalID uuid.UUID
	// RefreshedCookies holds replacement cookies minted during resolution,
	// non-empty only when the session was refreshed. The gate must forward
	// them on pass-through responses or the refresh is silently lost.
	RefreshedCookies []*http.Cookie
}

// SessionResolver resolves the session cookie on a request to a principal.
// A request without a usable session yields models.ErrNoSession or
// models.ErrSessionExpired; any other error is a store failure.
type SessionResolver interface {
	Resolve(ctx context.Context, r *http.Request) (*Resolution, error)
}

// ProfileStore fetches authorization profiles by principal ID. The lookup
// runs with elevated privilege: it must succeed even when the principal
// could not read its own profile row through normal data-access rules,
// because the gate itself is the enforcement point.
type ProfileStore interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// SettingsStore fetches the site-wide maintenance flag.
type SettingsStore interface {
	MaintenanceFlag(ctx context.Context) (*models.MaintenanceFlag, error)
}

// RedirectStore queries the redirect rule table. FindExactActive returns at
// most one live non-wildcard rule whose source equals either path variant
// (models.ErrNotFound when none matches); ListActiveWildcards returns every
// live wildcard rule for in-memory evaluation. IncrementHit bumps a rule's
// hit counter and last-hit timestamp.
type RedirectStore interface {
	FindExactActive(ctx context.Context, pathWithSlash, pathWithoutSlash string) (*models.RedirectRule, error)
	ListActiveWildcards(ctx context.Context) ([]*models.RedirectRule, error)
	IncrementHit(ctx context.Context, id uuid.UUID) error
}

// Gate is the request gate middleware. It is safe for concurrent use; all
// per-request state lives on the stack.
type Gate struct {
	cfg       config.GateConfig
	sessions  SessionResolver
	profiles  ProfileStore
	settings  SettingsStore
	redirects RedirectStore
	logger    *logrus.Logger
	metrics   *Metrics

	extensions map[string]struct{}
}

// New creates a request gate over the given collaborators.
func New(
	cfg config.GateConfig,
	sessions SessionResolver,
	profiles ProfileStore,
	settings SettingsStore,
	redirects RedirectStore,
	log *logrus.Logger,
) *Gate {
	exts := make(map[string]struct{}, len(cfg.AssetExtensions))
	for _, ext := range cfg.AssetExtensions {
		exts[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}

	return &Gate{
		cfg:        cfg,
		sessions:   sessions,
		profiles:   profiles,
		settings:   settings,
		redirects:  redirects,
		logger:     log,
		metrics:    NewMetrics(),
		extensions: exts,
	}
}

// Metrics exposes the gate's Prometheus collectors for registration.
func (g *Gate) Metrics() *Metrics {
	return g.metrics
}

// Handler wraps the downstream page handler with the gate pipeline.
// Stages run strictly in order and each may short-circuit:
//
//	A. exclusion filter    — infrastructure and static-asset traffic
//	B. admin authorization — terminal for everything under the admin prefix
//	C. maintenance gate    — public paths except the maintenance page
//	D. redirect resolution — exact rules before wildcard rules
func (g *Gate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Stage A: never spend auth or store lookups on non-page traffic,
		// and never redirect an asset.
		if g.isExcluded(path) {
			g.metrics.decision(decisionExcluded)
			next.ServeHTTP(w, r)
			return
		}

		// Stage B: the admin branch is terminal. Maintenance mode and
		// redirects are public-site concerns and never apply under the
		// admin prefix.
		if strings.HasPrefix(path, g.cfg.AdminPrefix) {
			g.serveAdmin(w, r, next)
			return
		}

		// Stage C: the maintenance page itself must stay reachable.
		if path != g.cfg.MaintenancePath && g.maintenanceEnabled(r.Context()) {
			g.metrics.decision(decisionMaintenance)
			// The maintenance page is static content, not an echo of the
			// original request, so the query string is dropped.
			http.Redirect(w, r, g.cfg.MaintenancePath, http.StatusFound)
			return
		}

		// Stage D
		if g.serveRedirect(w, r) {
			return
		}

		g.metrics.decision(decisionPass)
		next.ServeHTTP(w, r)
	})
}

// isExcluded reports whether the path belongs to infrastructure or static
// assets the gate never inspects.
func (g *Gate) isExcluded(path string) bool {
	for _, prefix := range g.cfg.ExcludedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	if i := strings.LastIndexByte(path, '.'); i >= 0 && i > strings.LastIndexByte(path, '/') {
		if _, ok := g.extensions[strings.ToLower(path[i+1:])]; ok {
			return true
		}
	}

	return false
}

// serveAdmin applies Stage B to a request under the admin prefix.
func (g *Gate) serveAdmin(w http.ResponseWriter, r *http.Request, next http.Handler) {
	ctx := r.Context()
	log := logger.WithCorrelationID(ctx, g.logger)

	// The login page must remain reachable when locked out.
	if r.URL.Path == g.cfg.AdminLoginPath {
		g.metrics.decision(decisionPass)
		next.ServeHTTP(w, r)
		return
	}

	res, err := g.sessions.Resolve(ctx, r)
	if err != nil {
		// A resolution failure is treated identically to "no session":
		// the user lands on a usable login page either way.
		if !errors.Is(err, models.ErrNoSession) && !errors.Is(err, models.ErrSessionExpired) {
			log.WithError(err).Warn("Session resolution failed, redirecting to login")
		}
		g.metrics.decision(decisionLoginRedirect)
		http.Redirect(w, r, g.cfg.AdminLoginPath, http.StatusFound)
		return
	}

	profile, err := g.profiles.GetProfile(ctx, res.PrincipalID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			log.WithError(err).WithField("principal_id", res.PrincipalID).
				Warn("Profile lookup failed, denying admin access")
		}
		profile = nil
	}

	if !profile.CanAccessAdmin() {
		// Soft denial: authenticated but unauthorized principals are
		// bounced home rather than shown an error page.
		g.metrics.decision(decisionDenied)
		http.Redirect(w, r, g.cfg.SiteRoot, http.StatusFound)
		return
	}

	// Forward any cookies minted during session refresh, or the user is
	// silently re-prompted to log in on the next request.
	for _, cookie := range res.RefreshedCookies {
		http.SetCookie(w, cookie)
	}

	g.metrics.decision(decisionPass)
	next.ServeHTTP(w, r)
}

// maintenanceEnabled fetches the maintenance flag, failing open: a transient
// settings error must not take the whole public site down.
func (g *Gate) maintenanceEnabled(ctx context.Context) bool {
	flag, err := g.settings.MaintenanceFlag(ctx)
	if err != nil {
		logger.WithCorrelationID(ctx, g.logger).WithError(err).
			Warn("Maintenance flag fetch failed, treating as disabled")
		return false
	}
	return flag != nil && flag.Enabled
}

// serveRedirect applies Stage D. It returns true when a redirect response
// was written; any lookup error is treated as "no redirect found".
func (g *Gate) serveRedirect(w http.ResponseWriter, r *http.Request) bool {
	ctx := r.Context()
	log := logger.WithCorrelationID(ctx, g.logger)
	withSlash, withoutSlash := pathVariants(r.URL.Path)

	// Exact pass. Exact rules always win over wildcard rules, whatever
	// their creation order; once one fires, wildcards are never consulted.
	rule, err := g.redirects.FindExactActive(ctx, withSlash, withoutSlash)
	switch {
	case err == nil:
		g.emitRedirect(w, r, rule, rule.Destination)
		return true
	case !errors.Is(err, models.ErrNotFound):
		log.WithError(err).Warn("Exact redirect lookup failed, passing through")
	}

	// Wildcard pass: the full live set is evaluated in memory, in store
	// order, first structural match wins.
	rules, err := g.redirects.ListActiveWildcards(ctx)
	if err != nil {
		log.WithError(err).Warn("Wildcard redirect lookup failed, passing through")
		return false
	}

	for _, rule := range rules {
		// Rules flagged wildcard but lacking a token are misconfigured
		// data; skip them rather than matching nothing forever.
		pat, ok := compilePattern(rule.Source)
		if !ok {
			continue
		}

		// The trimmed variant goes first so a trailing slash on the request
		// never leaks into the capture.
		capture, ok := pat.match(withoutSlash)
		if !ok {
			capture, ok = pat.match(withSlash)
		}
		if !ok {
			continue
		}

		g.emitRedirect(w, r, rule, substituteCapture(rule.Destination, capture))
		return true
	}

	return false
}

// emitRedirect writes the redirect response for a matched rule and kicks off
// the detached hit-counter increment.
func (g *Gate) emitRedirect(w http.ResponseWriter, r *http.Request, rule *models.RedirectRule, destination string) {
	g.incrementHitDetached(rule.ID)

	// The original query string travels with the redirect verbatim.
	target := destination
	if q := r.URL.RawQuery; q != "" {
		target += "?" + q
	}

	g.metrics.decision(decisionRedirect)
	g.metrics.redirectStatus(rule.RedirectStatus())
	w.Header().Set(constants.HeaderCacheControl, redirectCacheControl)
	http.Redirect(w, r, target, rule.RedirectStatus())
}

// incrementHitDetached bumps the rule's hit counter on a goroutine detached
// from the request, so the write never delays the redirect and is never
// cancelled by the response flush. Lost increments under failure are
// acceptable; they are telemetry, not bookkeeping.
func (g *Gate) incrementHitDetached(id uuid.UUID) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), hitIncrementTimeout)
		defer cancel()

		if err := g.redirects.IncrementHit(ctx, id); err != nil {
			g.logger.WithError(err).WithField("rule_id", id).Debug("Redirect hit increment failed")
		}
	}()
}

// pathVariants returns the request path with and without a trailing slash.
// Authored rules may have been entered either way, so both variants are
// tried against every rule. The site root is its own variant on both sides.
func pathVariants(path string) (withSlash, withoutSlash string) {
	if path == "/" || path == "" {
		return "/", "/"
	}
	withoutSlash = strings.TrimSuffix(path, "/")
	return withoutSlash + "/", withoutSlash
}
