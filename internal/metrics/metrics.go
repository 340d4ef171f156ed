// Package metrics exposes client-side instrumentation for governed sessions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts evaluations and transport failures seen by the SDK.
type Metrics struct {
	Evaluations      *prometheus.CounterVec
	EvaluateDuration *prometheus.HistogramVec
	TransportErrors  prometheus.Counter
}

// New registers the SDK metrics on reg. A nil registerer yields a working
// but unconnected set, so callers that do not scrape pay nothing.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		Evaluations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "agentwarden_evaluations_total",
			Help: "Policy evaluations issued by this process, by action type and verdict.",
		}, []string{"action_type", "verdict"}),

		EvaluateDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "agentwarden_evaluate_duration_seconds",
			Help:    "Round-trip latency of policy evaluations.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"action_type"}),

		TransportErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "agentwarden_transport_errors_total",
			Help: "Requests that failed before a verdict was received.",
		}),
	}
}

// ObserveEvaluate records one completed evaluation round-trip.
func (m *Metrics) ObserveEvaluate(actionType, verdict string, d time.Duration) {
	if verdict == "" {
		verdict = "allow"
	}
	m.Evaluations.WithLabelValues(actionType, verdict).Inc()
	m.EvaluateDuration.WithLabelValues(actionType).Observe(d.Seconds())
}

// IncTransportError records a request that never produced a verdict.
func (m *Metrics) IncTransportError() {
	m.TransportErrors.Inc()
}
