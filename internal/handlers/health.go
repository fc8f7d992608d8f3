package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/pixfil/yogapluriel-sub002/internal/constants"
	"github.com/pixfil/yogapluriel-sub002/internal/database/postgres"
	"github.com/pixfil/yogapluriel-sub002/internal/session"
)

const (
	// HealthCheckTimeout is the default timeout for health check operations.
	HealthCheckTimeout = 5 * time.Second
)

// version is stamped at build time via -ldflags.
var version = "dev"

// HealthHandler provides health check and monitoring endpoints. These
// routes are registered outside the gate pipeline: probes must answer even
// when the data backend is down or maintenance mode is on.
type HealthHandler struct {
	store     session.Store
	dbMgr     *postgres.Manager
	logger    *logrus.Logger
	metrics   *HealthMetrics
	startTime time.Time
}

// HealthStatus represents the health status of a component.
type HealthStatus string

const (
	// StatusHealthy indicates the component is healthy.
	StatusHealthy HealthStatus = "healthy"
	// StatusUnhealthy indicates the component is unhealthy.
	StatusUnhealthy HealthStatus = "unhealthy"
	// StatusDegraded indicates the component has degraded performance.
	StatusDegraded HealthStatus = "degraded"
)

// HealthResponse represents the overall health check response.
type HealthResponse struct {
	Status     HealthStatus               `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Uptime     string                     `json:"uptime,omitempty"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// ComponentHealth represents the health of an individual component.
type ComponentHealth struct {
	Status       HealthStatus `json:"status"`
	Message      string       `json:"message,omitempty"`
	LastChecked  time.Time    `json:"last_checked"`
	ResponseTime string       `json:"response_time,omitempty"`
}

// ReadinessResponse represents the readiness check response.
type ReadinessResponse struct {
	Ready      bool                       `json:"ready"`
	Timestamp  time.Time                  `json:"timestamp"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// HealthMetrics holds Prometheus metrics for health monitoring.
type HealthMetrics struct {
	HealthChecksTotal     *prometheus.CounterVec
	ComponentHealthStatus *prometheus.GaugeVec
}

// NewHealthMetrics creates the health Prometheus collectors, unregistered.
func NewHealthMetrics() *HealthMetrics {
	return &HealthMetrics{
		HealthChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_health_checks_total",
				Help: "Total number of health checks performed",
			},
			[]string{"type", "status"},
		),
		ComponentHealthStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gateway_component_health_status",
				Help: "Health status of individual components (1=healthy, 0=unhealthy)",
			},
			[]string{"component"},
		),
	}
}

// Register attaches the collectors to the given registerer.
func (m *HealthMetrics) Register(reg prometheus.Registerer) {
	reg.MustRegister(m.HealthChecksTotal, m.ComponentHealthStatus)
}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler(
	store session.Store,
	dbMgr *postgres.Manager,
	logger *logrus.Logger,
) *HealthHandler {
	return &HealthHandler{
		store:     store,
		dbMgr:     dbMgr,
		logger:    logger,
		metrics:   NewHealthMetrics(),
		startTime: time.Now(),
	}
}

// Metrics exposes the handler's Prometheus collectors for registration.
func (h *HealthHandler) Metrics() *HealthMetrics {
	return h.metrics
}

// RegisterRoutes attaches the health endpoints to a router.
func (h *HealthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/healthz", h.Health)
	router.HandleFunc("/healthz/live", h.Liveness)
	router.HandleFunc("/healthz/ready", h.Readiness)
}

// MetricsHandler returns the Prometheus scrape handler.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// Health provides a comprehensive health check including all components.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	components := make(map[string]ComponentHealth)
	overallStatus := StatusHealthy

	// Session store: admin authentication is unusable without it, but the
	// public site still works, so it only degrades.
	sessionHealth := h.checkSessionStore(ctx)
	components["session_store"] = sessionHealth
	if sessionHealth.Status != StatusHealthy {
		overallStatus = StatusDegraded
	}

	// Database: the gate fails open without it (no redirects, no
	// maintenance gating), so it also degrades rather than fails.
	databaseHealth := h.checkDatabase(ctx)
	components["database"] = databaseHealth
	if databaseHealth.Status != StatusHealthy && overallStatus == StatusHealthy {
		overallStatus = StatusDegraded
	}

	h.metrics.HealthChecksTotal.WithLabelValues("health", string(overallStatus)).Inc()
	for component, health := range components {
		healthValue := float64(0)
		if health.Status == StatusHealthy {
			healthValue = 1
		}
		h.metrics.ComponentHealthStatus.WithLabelValues(component).Set(healthValue)
	}

	response := HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Version:    version,
		Uptime:     time.Since(h.startTime).String(),
		Components: components,
	}

	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.WithError(err).Error("Failed to encode health response")
	}

	h.logger.WithFields(logrus.Fields{
		"status":   overallStatus,
		"duration": time.Since(start).String(),
	}).Debug("Health check completed")
}

// Liveness provides a simple liveness check that returns 200 if the service is alive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	h.metrics.HealthChecksTotal.WithLabelValues("liveness", "healthy").Inc()

	response := map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now(),
		"uptime":    time.Since(h.startTime).String(),
	}

	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.WithError(err).Error("Failed to encode liveness response")
	}
}

// Readiness checks if the service is ready to receive traffic. The gate
// fails open on every backend, so the gateway is ready as soon as it can
// serve pages; component states are reported for visibility only.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	components := map[string]ComponentHealth{
		"session_store": h.checkSessionStore(ctx),
		"database":      h.checkDatabase(ctx),
	}

	h.metrics.HealthChecksTotal.WithLabelValues("readiness", "ready").Inc()

	response := ReadinessResponse{
		Ready:      true,
		Timestamp:  time.Now(),
		Components: components,
	}

	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.WithError(err).Error("Failed to encode readiness response")
	}
}

// checkSessionStore checks session store connectivity and latency.
func (h *HealthHandler) checkSessionStore(ctx context.Context) ComponentHealth {
	start := time.Now()

	checkCtx, cancel := context.WithTimeout(ctx, HealthCheckTimeout)
	defer cancel()

	err := h.store.Ping(checkCtx)
	duration := time.Since(start)

	if err != nil {
		h.logger.WithError(err).Warn("Session store health check failed")
		return ComponentHealth{
			Status:       StatusUnhealthy,
			Message:      "session store connection failed: " + err.Error(),
			LastChecked:  time.Now(),
			ResponseTime: duration.String(),
		}
	}

	status := StatusHealthy
	message := "session store is healthy"
	if duration > time.Second {
		status = StatusDegraded
		message = "session store response time is slow"
	}

	return ComponentHealth{
		Status:       status,
		Message:      message,
		LastChecked:  time.Now(),
		ResponseTime: duration.String(),
	}
}

// checkDatabase checks PostgreSQL database connectivity.
func (h *HealthHandler) checkDatabase(ctx context.Context) ComponentHealth {
	start := time.Now()

	if h.dbMgr == nil {
		return ComponentHealth{
			Status:      StatusDegraded,
			Message:     "database not configured",
			LastChecked: time.Now(),
		}
	}

	checkCtx, cancel := context.WithTimeout(ctx, HealthCheckTimeout)
	defer cancel()

	err := h.dbMgr.Ping(checkCtx)
	duration := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:       StatusUnhealthy,
			Message:      "database connection failed: " + err.Error(),
			LastChecked:  time.Now(),
			ResponseTime: duration.String(),
		}
	}

	return ComponentHealth{
		Status:       StatusHealthy,
		Message:      "database is healthy",
		LastChecked:  time.Now(),
		ResponseTime: duration.String(),
	}
}
