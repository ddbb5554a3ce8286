package providers

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nltrack/internal/structures"
)

func withTestRegistry(t *testing.T) {
	t.Helper()
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = prometheus.NewRegistry()
		prometheus.DefaultGatherer = prometheus.DefaultRegisterer.(prometheus.Gatherer)
	})
}

func TestNoopMetrics_WhenDisabled(t *testing.T) {
	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: false},
	}
	m := NewMetricsProvider(conf)
	_, ok := m.(*noopMetrics)
	assert.True(t, ok, "should return noopMetrics when disabled")

	// Ensure no-op methods don't panic
	m.IncRequestsTotal("/track/open", 200)
	m.ObserveRequestDuration("/track/open", time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.IncEventsRecorded("open")
	m.IncEventsDeduplicated("open")
	m.IncTokenRejected("expired")
	m.ObserveSnapshotDuration(time.Millisecond)
	m.SetSnapshotRows("2024-03-01", 3)
}

func TestMetricsProvider_WhenEnabled(t *testing.T) {
	withTestRegistry(t)

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf)
	_, ok := m.(*MetricsProvider)
	assert.True(t, ok, "should return MetricsProvider when enabled")
}

func TestMetricsProvider_CountsTrackingOutcomes(t *testing.T) {
	withTestRegistry(t)

	m := NewMetricsProvider(&structures.Config{Metrics: structures.MetricsConfig{Enabled: true}})
	p, ok := m.(*MetricsProvider)
	require.True(t, ok)

	m.IncEventsRecorded("open")
	m.IncEventsRecorded("open")
	m.IncEventsRecorded("click")
	m.IncEventsDeduplicated("open")
	m.IncTokenRejected("invalid_signature")
	m.IncRequestsTotal("/track/click", 302)
	m.IncRequestsTotal("/track/click", 400)
	m.IncCacheHits()

	assert.Equal(t, 2.0, promtest.ToFloat64(p.eventsRecorded.WithLabelValues("open")))
	assert.Equal(t, 1.0, promtest.ToFloat64(p.eventsRecorded.WithLabelValues("click")))
	assert.Equal(t, 1.0, promtest.ToFloat64(p.eventsDeduplicated.WithLabelValues("open")))
	assert.Equal(t, 1.0, promtest.ToFloat64(p.tokensRejected.WithLabelValues("invalid_signature")))
	assert.Equal(t, 1.0, promtest.ToFloat64(p.requestsTotal.WithLabelValues("/track/click", "3xx")))
	assert.Equal(t, 1.0, promtest.ToFloat64(p.requestsTotal.WithLabelValues("/track/click", "4xx")))
	assert.Equal(t, 1.0, promtest.ToFloat64(p.cacheHits))
}

func TestMetricsProvider_SnapshotRowsGauge(t *testing.T) {
	withTestRegistry(t)

	m := NewMetricsProvider(&structures.Config{Metrics: structures.MetricsConfig{Enabled: true}})
	p := m.(*MetricsProvider)

	m.SetSnapshotRows("2024-03-01", 9)
	m.SetSnapshotRows("2024-03-01", 4)
	m.ObserveSnapshotDuration(120 * time.Millisecond)

	assert.Equal(t, 4.0, promtest.ToFloat64(p.snapshotRows.WithLabelValues("2024-03-01")))
	assert.Equal(t, 1, promtest.CollectAndCount(p.snapshotDuration))
}

func TestHttpStatusBucket(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{201, "2xx"},
		{302, "3xx"},
		{400, "4xx"},
		{404, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, httpStatusBucket(tt.code))
	}
}
