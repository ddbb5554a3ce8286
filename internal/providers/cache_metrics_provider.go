package providers

import "nltrack/internal/structures"

// MetricsCacheProvider counts stats cache hits and misses. Invalidations are logged so a
// drop in the hit ratio after a snapshot run can be told apart from real churn.
type MetricsCacheProvider struct {
	inner   CacheProviderInterface
	metrics MetricsProviderInterface
	logger  Logger
}

func (c *MetricsCacheProvider) Get(key string) ([]byte, bool) {
	val, ok := c.inner.Get(key)
	if ok {
		c.metrics.IncCacheHits()
	} else {
		c.metrics.IncCacheMisses()
	}
	return val, ok
}

func (c *MetricsCacheProvider) Set(key string, value []byte) {
	c.inner.Set(key, value)
}

func (c *MetricsCacheProvider) Clear() {
	c.inner.Clear()
	c.logger.Debugf(TypeGet, "Stats cache cleared")
}

// NewInstrumentedCacheProvider returns the plain no-op cache when caching is disabled, so
// no misses are counted for lookups that could never hit.
func NewInstrumentedCacheProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) CacheProviderInterface {
	inner := NewCacheProvider(conf, logger)
	if !conf.Cache.Enabled {
		return inner
	}
	return &MetricsCacheProvider{
		inner:   inner,
		metrics: metrics,
		logger:  logger,
	}
}
