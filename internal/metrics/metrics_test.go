package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRoute(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRoute("primary", 1)
	m.ObserveRoute("fallback", 3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RouteResults.WithLabelValues("primary")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RouteResults.WithLabelValues("fallback")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.RouteAttempts))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveRoute("primary", 1)
	m.ObserveGeocode("cache", "hit")
	m.ObservePlan(0.2)
}
