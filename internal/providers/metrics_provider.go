package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"scoreboard/internal/structures"
	"time"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	IncGameEvent(event string)
	IncStorageFull()
	SetPeriod(period int)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	gameEvents          *prometheus.CounterVec
	storageFull         prometheus.Counter
	period              prometheus.Gauge
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

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncGameEvent(event string) {
	m.gameEvents.WithLabelValues(event).Inc()
}

func (m *MetricsProvider) IncStorageFull() {
	m.storageFull.Inc()
}

func (m *MetricsProvider) SetPeriod(period int) {
	m.period.Set(float64(period))
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
			Name: "scoreboard_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scoreboard_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scoreboard_cache_hits_total",
			Help: "Total number of state cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scoreboard_cache_misses_total",
			Help: "Total number of state cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "scoreboard_persistence_duration_seconds",
			Help:    "Duration of a single key write to the durable store",
			Buckets: prometheus.DefBuckets,
		}),

		gameEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scoreboard_game_events_total",
			Help: "Resolved game actions by kind (goal, timeout, undo)",
		}, []string{"event"}),

		storageFull: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scoreboard_storage_full_total",
			Help: "Number of writes rejected because the store quota was exhausted",
		}),

		period: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "scoreboard_period",
			Help: "Current match/period number",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) IncGameEvent(_ string)                            {}
func (n *noopMetrics) IncStorageFull()                                  {}
func (n *noopMetrics) SetPeriod(_ int)                                  {}
