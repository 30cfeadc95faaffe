// Package metrics owns the Prometheus registry shared by the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "locator"

// Cache lookup outcomes.
const (
	LookupHit         = "hit"
	LookupNegativeHit = "negative_hit"
	LookupMiss        = "miss"
)

// Metrics holds every collector the service records into.
type Metrics struct {
	registry *prometheus.Registry

	CacheLookups   *prometheus.CounterVec
	CacheEvictions prometheus.Counter
	CacheErrors    prometheus.Counter

	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBPoolOpen   prometheus.Gauge
	DBPoolInUse  prometheus.Gauge
	DBPoolIdle   prometheus.Gauge
	DBPoolWaited prometheus.Gauge
}

// New creates a registry with the Go runtime collectors and the service collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "postcode_cache_lookups_total",
			Help:      "Postcode cache lookups by outcome",
		}, []string{"result"}),
		CacheEvictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "postcode_cache_evictions_total",
			Help:      "Entries evicted from the postcode cache to make room",
		}),
		CacheErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "postcode_cache_resolve_errors_total",
			Help:      "Store errors while resolving a postcode cache miss",
		}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "path"}),

		DBPoolOpen: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_pool_open_connections",
			Help:      "Open connections in the store pool",
		}),
		DBPoolInUse: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_pool_in_use_connections",
			Help:      "Store connections currently in use",
		}),
		DBPoolIdle: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_pool_idle_connections",
			Help:      "Idle store connections",
		}),
		DBPoolWaited: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_pool_wait_count",
			Help:      "Total connections waited for",
		}),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
