package providers

import "tuner/internal/structures"

// MetricsCacheProvider counts hit/miss on every read of the response
// cache. Generation-keyed cache keys mean a miss is expected right after
// any mutation; the ratio between the two is the signal worth watching.
type MetricsCacheProvider struct {
	inner   CacheProviderInterface
	metrics MetricsProviderInterface
}

func (c *MetricsCacheProvider) Get(key string) ([]byte, bool) {
	val, ok := c.inner.Get(key)
	if !ok {
		c.metrics.IncCacheMisses()
		return nil, false
	}
	c.metrics.IncCacheHits()
	return val, true
}

func (c *MetricsCacheProvider) Set(key string, value []byte) {
	c.inner.Set(key, value)
}

// NewInstrumentedCacheProvider wraps the configured cache with counters.
// A disabled cache stays unwrapped so the noop Get does not register as
// an endless miss streak.
func NewInstrumentedCacheProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) CacheProviderInterface {
	inner := NewCacheProvider(conf, logger)
	if !conf.Cache.Enabled {
		return inner
	}
	return &MetricsCacheProvider{
		inner:   inner,
		metrics: metrics,
	}
}
