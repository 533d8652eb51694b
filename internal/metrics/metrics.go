// Package metrics defines the prometheus collectors of the service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups every collector so tests can use a private registry.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	SearchDuration   *prometheus.HistogramVec
	SearchResults    prometheus.Histogram
	CacheLookups     *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		RequestsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		}),
		SearchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "product_search_duration_seconds",
				Help:    "Time spent executing product searches",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "outcome"},
		),
		SearchResults: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "product_search_results",
			Help:    "Number of products returned per search page",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		}),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_lookups_total",
				Help: "Cache lookups by key and result",
			},
			[]string{"key", "result"},
		),
	}
}

// ObserveSearch records one search or count call. A nil receiver is a no-op.
func (m *Metrics) ObserveSearch(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.SearchDuration.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
}

// ObserveResults records the size of a search page.
func (m *Metrics) ObserveResults(n int) {
	if m == nil {
		return
	}
	m.SearchResults.Observe(float64(n))
}

// ObserveCache counts a cache hit or miss.
func (m *Metrics) ObserveCache(key string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(key, result).Inc()
}
