package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weather_cache"

// Metrics holds the Prometheus collectors for the fetch service.
type Metrics struct {
	CacheLookups     *prometheus.CounterVec   // labels: kind={weather,forecast}, result={hit,miss,error}
	CacheWrites      *prometheus.CounterVec   // labels: kind, outcome={success,error}
	UpstreamRequests *prometheus.CounterVec   // labels: kind, outcome={success,error}
	UpstreamDuration *prometheus.HistogramVec // labels: kind
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(
		m.CacheLookups,
		m.CacheWrites,
		m.UpstreamRequests,
		m.UpstreamDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered collectors so tests can build
// as many services as they like without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by data kind and result.",
		}, []string{"kind", "result"}),
		CacheWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_writes_total",
			Help:      "Cache writes after a successful upstream fetch, by outcome.",
		}, []string{"kind", "outcome"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Weather API requests by data kind and outcome.",
		}, []string{"kind", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Weather API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"kind"}),
	}
}
