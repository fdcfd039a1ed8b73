package providers

import "scoreboard/internal/structures"

// InstrumentedCache counts hits and misses of the board response cache. A
// state snapshot misses once per version and hits for every display that
// polls the same version afterwards.
type InstrumentedCache struct {
	inner   CacheProviderInterface
	metrics MetricsProviderInterface
	logger  Logger
}

func (c *InstrumentedCache) Get(key string) ([]byte, bool) {
	val, ok := c.inner.Get(key)
	if !ok {
		c.metrics.IncCacheMisses()
		c.logger.Debugf(TypeGet, "Cache miss for %s", key)
		return nil, false
	}
	c.metrics.IncCacheHits()
	return val, true
}

func (c *InstrumentedCache) Set(key string, value []byte) {
	c.inner.Set(key, value)
}

// NewInstrumentedCacheProvider wraps the freecache provider with hit/miss
// counters. A disabled cache is returned bare so every poll is not reported
// as a miss.
func NewInstrumentedCacheProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) CacheProviderInterface {
	inner := NewCacheProvider(conf, logger)
	if !conf.Cache.Enabled {
		return inner
	}
	return &InstrumentedCache{
		inner:   inner,
		metrics: metrics,
		logger:  logger,
	}
}
