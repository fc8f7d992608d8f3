package gate

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Gate decision labels.
const (
	decisionExcluded      = "excluded"
	decisionPass          = "pass"
	decisionLoginRedirect = "login_redirect"
	decisionDenied        = "denied"
	decisionMaintenance   = "maintenance"
	decisionRedirect      = "redirect"
)

// Metrics holds Prometheus metrics for gate decisions.
type Metrics struct {
	// Decisions counts pipeline outcomes by decision kind.
	Decisions *prometheus.CounterVec
	// RedirectsEmitted counts rule-driven redirects by status code.
	RedirectsEmitted *prometheus.CounterVec
}

// NewMetrics creates the gate's Prometheus collectors, unregistered so
// tests can build gates freely. Call Register to attach them to a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		Decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_gate_decisions_total",
				Help: "Total number of request gate decisions",
			},
			[]string{"decision"},
		),
		RedirectsEmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_redirects_emitted_total",
				Help: "Total number of rule-driven redirects by status code",
			},
			[]string{"status_code"},
		),
	}
}

// Register attaches the collectors to the given registerer.
func (m *Metrics) Register(reg prometheus.Registerer) {
	reg.MustRegister(m.Decisions, m.RedirectsEmitted)
}

func (m *Metrics) decision(kind string) {
	m.Decisions.WithLabelValues(kind).Inc()
}

func (m *Metrics) redirectStatus(code int) {
	m.RedirectsEmitted.WithLabelValues(strconv.Itoa(code)).Inc()
}
