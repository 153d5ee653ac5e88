package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the portal.
type Metrics struct {
	GateDecisions   *prometheus.CounterVec
	GuardOutcomes   *prometheus.CounterVec
	Revalidations   *prometheus.CounterVec
	StorageErrors   *prometheus.CounterVec
	BackendDuration *prometheus.HistogramVec
	AuditDropped    prometheus.Counter
	RateLimited     *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		GateDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "unibuild_portal_gate_decisions_total",
			Help: "Edge gate decisions for protected paths",
		}, []string{"section", "decision"}),
		GuardOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "unibuild_portal_guard_outcomes_total",
			Help: "Page guard outcomes by section",
		}, []string{"section", "outcome"}),
		Revalidations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "unibuild_portal_session_revalidations_total",
			Help: "Session re-validations against the identity endpoint",
		}, []string{"result"}),
		StorageErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "unibuild_portal_storage_errors_total",
			Help: "Session storage failures treated as absent sessions",
		}, []string{"op"}),
		BackendDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "unibuild_portal_backend_request_duration_seconds",
			Help:    "Latency of calls to the UniBuild API",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint", "outcome"}),
		AuditDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "unibuild_portal_audit_dropped_total",
			Help: "Audit events dropped because the async buffer was full",
		}),
		RateLimited: f.NewCounterVec(prometheus.CounterOpts{
			Name: "unibuild_portal_rate_limited_total",
			Help: "Requests rejected by the attempt throttle",
		}, []string{"class"}),
	}
}

// NewRegistry returns a registry carrying the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler exposes the registry in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// ObserveBackend records one API call.
func (m *Metrics) ObserveBackend(endpoint, outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.BackendDuration.WithLabelValues(endpoint, outcome).Observe(time.Since(started).Seconds())
}

// IncGate counts one gate decision.
func (m *Metrics) IncGate(section, decision string) {
	if m == nil {
		return
	}
	m.GateDecisions.WithLabelValues(section, decision).Inc()
}

// IncGuard counts one guard outcome.
func (m *Metrics) IncGuard(section, outcome string) {
	if m == nil {
		return
	}
	m.GuardOutcomes.WithLabelValues(section, outcome).Inc()
}

// IncRevalidation counts one re-validation result.
func (m *Metrics) IncRevalidation(result string) {
	if m == nil {
		return
	}
	m.Revalidations.WithLabelValues(result).Inc()
}

// IncStorageError counts one storage failure.
func (m *Metrics) IncStorageError(op string) {
	if m == nil {
		return
	}
	m.StorageErrors.WithLabelValues(op).Inc()
}

// IncAuditDropped counts one dropped audit event.
func (m *Metrics) IncAuditDropped() {
	if m == nil {
		return
	}
	m.AuditDropped.Inc()
}

// IncRateLimited counts one throttled request.
func (m *Metrics) IncRateLimited(class string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(class).Inc()
}
