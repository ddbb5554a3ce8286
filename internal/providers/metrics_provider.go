package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"nltrack/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncEventsRecorded(eventType string)
	IncEventsDeduplicated(eventType string)
	IncTokenRejected(reason string)
	ObserveSnapshotDuration(duration time.Duration)
	SetSnapshotRows(date string, count int)
}

type MetricsProvider struct {
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	eventsRecorded     *prometheus.CounterVec
	eventsDeduplicated *prometheus.CounterVec
	tokensRejected     *prometheus.CounterVec
	snapshotDuration   prometheus.Histogram
	snapshotRows       *prometheus.GaugeVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncEventsRecorded(eventType string) {
	m.eventsRecorded.WithLabelValues(eventType).Inc()
}

func (m *MetricsProvider) IncEventsDeduplicated(eventType string) {
	m.eventsDeduplicated.WithLabelValues(eventType).Inc()
}

func (m *MetricsProvider) IncTokenRejected(reason string) {
	m.tokensRejected.WithLabelValues(reason).Inc()
}

func (m *MetricsProvider) ObserveSnapshotDuration(duration time.Duration) {
	m.snapshotDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) SetSnapshotRows(date string, count int) {
	m.snapshotRows.WithLabelValues(date).Set(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nlt_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nlt_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nlt_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nlt_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		eventsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nlt_events_recorded_total",
			Help: "Engagement events written to the event store",
		}, []string{"type"}),

		eventsDeduplicated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nlt_events_deduplicated_total",
			Help: "Engagement events suppressed inside the dedup window",
		}, []string{"type"}),

		tokensRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nlt_tokens_rejected_total",
			Help: "Tracking tokens that failed verification",
		}, []string{"reason"}),

		snapshotDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "nlt_snapshot_duration_seconds",
			Help:    "Duration of daily snapshot generation in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		snapshotRows: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "nlt_snapshot_rows",
			Help: "Rows written by the last snapshot run per date",
		}, []string{"date"}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncEventsRecorded(_ string)                       {}
func (n *noopMetrics) IncEventsDeduplicated(_ string)                   {}
func (n *noopMetrics) IncTokenRejected(_ string)                        {}
func (n *noopMetrics) ObserveSnapshotDuration(_ time.Duration)          {}
func (n *noopMetrics) SetSnapshotRows(_ string, _ int)                  {}
