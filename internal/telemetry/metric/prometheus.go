package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sessionlink"

// Request outcomes.
const (
	OutcomeSuccess        = "success"
	OutcomeRejected       = "rejected"
	OutcomeTransportError = "transport_error"
	OutcomeDecodeError    = "decode_error"
)

// Session events.
const (
	EventLogin   = "login"
	EventLogout  = "logout"
	EventRestore = "restore"
)

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	SessionEvents    *prometheus.CounterVec
}

// NewRegistry creates a registry with all metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Requests issued by the dispatcher, by method and outcome",
		}, []string{"method", "outcome"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Time from dispatch to decoded outcome",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "requests_in_flight",
			Help:      "Requests currently awaiting a response",
		}),

		SessionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "events_total",
			Help:      "Session transitions (login, logout, restore)",
		}, []string{"event"}),
	}

	r.registry.MustRegister(
		r.RequestsTotal,
		r.RequestDuration,
		r.RequestsInFlight,
		r.SessionEvents,
	)

	return r
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// ObserveRequest records one finished request. Safe on a nil Registry.
func (r *Registry) ObserveRequest(method, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(method, outcome).Inc()
	r.RequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// TrackInFlight increments the in-flight gauge and returns the matching
// decrement. Safe on a nil Registry.
func (r *Registry) TrackInFlight() func() {
	if r == nil {
		return func() {}
	}
	r.RequestsInFlight.Inc()
	return r.RequestsInFlight.Dec
}

// ObserveSessionEvent counts a session transition. Safe on a nil Registry.
func (r *Registry) ObserveSessionEvent(event string) {
	if r == nil {
		return
	}
	r.SessionEvents.WithLabelValues(event).Inc()
}

// WriteTextfile writes all metrics to path in the Prometheus text format.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
