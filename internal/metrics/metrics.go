// README: Prometheus collectors for geocoding and routing outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	RouteResults  *prometheus.CounterVec
	RouteAttempts prometheus.Counter
	Geocodes      *prometheus.CounterVec
	PlanDuration  prometheus.Histogram
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RouteResults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "routecost",
			Name:      "route_results_total",
			Help:      "Route calculations by provider (primary or fallback).",
		}, []string{"provider"}),
		RouteAttempts: f.NewCounter(prometheus.CounterOpts{
			Namespace: "routecost",
			Name:      "route_attempts_total",
			Help:      "Calls issued to the primary routing service.",
		}),
		Geocodes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "routecost",
			Name:      "geocode_lookups_total",
			Help:      "Geocode lookups by source and outcome.",
		}, []string{"source", "result"}),
		PlanDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "routecost",
			Name:      "plan_duration_seconds",
			Help:      "End-to-end route planning latency.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		}),
	}
}

func (m *Metrics) ObserveRoute(provider string, attempts int) {
	if m == nil {
		return
	}
	m.RouteResults.WithLabelValues(provider).Inc()
	m.RouteAttempts.Add(float64(attempts))
}

func (m *Metrics) ObserveGeocode(source, result string) {
	if m == nil {
		return
	}
	m.Geocodes.WithLabelValues(source, result).Inc()
}

func (m *Metrics) ObservePlan(seconds float64) {
	if m == nil {
		return
	}
	m.PlanDuration.Observe(seconds)
}
