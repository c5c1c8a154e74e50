// Package observability defines the Prometheus metrics exported by the
// scoring service.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "skyscore"

// Metrics holds the Prometheus counters and histograms for grid evaluation,
// caches and the HTTP API.
type Metrics struct {
	// Grid evaluation metrics.
	GridEvaluations *prometheus.CounterVec   // labels: kind={surface,celestial,crescent}, outcome={ok,cancelled}
	GridPoints      *prometheus.CounterVec   // labels: kind
	GridDuration    *prometheus.HistogramVec // labels: kind

	// Cache metrics.
	CacheLookups *prometheus.CounterVec // labels: cache={score,crescent,weather}, result={hit,miss,neighbor}

	// HTTP metrics.
	HTTPRequests *prometheus.CounterVec   // labels: route, code
	HTTPDuration *prometheus.HistogramVec // labels: route
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsWith creates metrics registered on reg.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		GridEvaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grid_evaluations_total",
			Help:      "Grid evaluations by kind and outcome.",
		}, []string{"kind", "outcome"}),
		GridPoints: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grid_points_total",
			Help:      "Grid points scored by kind.",
		}, []string{"kind"}),
		GridDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "grid_duration_seconds",
			Help:      "Wall time of a complete grid evaluation.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"kind"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by cache and result.",
		}, []string{"cache", "result"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.GridEvaluations,
		m.GridPoints,
		m.GridDuration,
		m.CacheLookups,
		m.HTTPRequests,
		m.HTTPDuration,
	}
}

// CacheHit records a cache lookup result. A nil receiver is a no-op.
func (m *Metrics) CacheHit(cache, result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(cache, result).Inc()
}
