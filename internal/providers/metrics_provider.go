package providers

import (
	"time"

	"fitsyncd/internal/structures"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncWriteOutcome(outcome string)
	IncReplayed()
	IncReplayFailures()
	SetQueueDepth(depth int)
	SetConnected(connected bool)
	IncCacheHits()
	IncCacheMisses()
}

type MetricsProvider struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	writeOutcomes   *prometheus.CounterVec
	replayedTotal   prometheus.Counter
	replayFailures  prometheus.Counter
	queueDepth      prometheus.Gauge
	connected       prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncWriteOutcome(outcome string) {
	m.writeOutcomes.WithLabelValues(outcome).Inc()
}

func (m *MetricsProvider) IncReplayed() {
	m.replayedTotal.Inc()
}

func (m *MetricsProvider) IncReplayFailures() {
	m.replayFailures.Inc()
}

func (m *MetricsProvider) SetQueueDepth(depth int) {
	m.queueDepth.Set(float64(depth))
}

func (m *MetricsProvider) SetConnected(connected bool) {
	if connected {
		m.connected.Set(1)
	} else {
		m.connected.Set(0)
	}
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
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
			Name: "fitsync_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fitsync_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		writeOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fitsync_guarded_writes_total",
			Help: "Guarded writes by outcome (synced, saved-offline)",
		}, []string{"outcome"}),

		replayedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fitsync_replayed_total",
			Help: "Queued keys successfully replayed to the remote store",
		}),

		replayFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fitsync_replay_failures_total",
			Help: "Replay attempts that failed and left the key queued",
		}),

		queueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "fitsync_sync_queue_depth",
			Help: "Keys currently waiting in the sync queue",
		}),

		connected: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "fitsync_connected",
			Help: "Whether the remote store is currently reachable",
		}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fitsync_cache_hits_total",
			Help: "Total number of local read-cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fitsync_cache_misses_total",
			Help: "Total number of local read-cache misses",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncWriteOutcome(_ string)                         {}
func (n *noopMetrics) IncReplayed()                                     {}
func (n *noopMetrics) IncReplayFailures()                               {}
func (n *noopMetrics) SetQueueDepth(_ int)                              {}
func (n *noopMetrics) SetConnected(_ bool)                              {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
