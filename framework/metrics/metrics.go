// Package metrics exposes container and HTTP activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/km-arc/go-inject/framework/container"
)

const namespace = "goinject"

// Collector holds all Prometheus metrics for one application. Each collector
// owns its registry so tests and multiple apps never collide.
type Collector struct {
	Lookups         *prometheus.CounterVec
	LookupDuration  *prometheus.HistogramVec
	Bindings        prometheus.Gauge
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	registry        *prometheus.Registry
}

var _ container.Observer = (*Collector)(nil)

// New creates and registers all metrics.
func New() *Collector {
	registry := prometheus.NewRegistry()

	m := &Collector{
		Lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "container_lookups_total",
				Help:      "Total number of bound component lookups",
			},
			[]string{"ref", "outcome"},
		),
		LookupDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "container_lookup_duration_seconds",
				Help:      "Time spent obtaining a component, including its dependencies",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"ref"},
		),
		Bindings: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "container_bindings",
				Help:      "Number of bindings in the finalized container",
			},
		),
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		registry: registry,
	}

	registry.MustRegister(m.Lookups, m.LookupDuration, m.Bindings, m.Requests, m.RequestDuration)
	return m
}

// Resolved records one container lookup.
func (m *Collector) Resolved(ref container.Ref, elapsed time.Duration, err error) {
	outcome := "resolved"
	if err != nil {
		outcome = "failed"
	}
	name := ref.String()
	m.Lookups.WithLabelValues(name, outcome).Inc()
	m.LookupDuration.WithLabelValues(name).Observe(elapsed.Seconds())
}

// ObserveRequest records one served HTTP request.
func (m *Collector) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.Requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Registry returns the collector's private registry.
func (m *Collector) Registry() *prometheus.Registry { return m.registry }

// Handler returns the HTTP handler for the metrics endpoint.
func (m *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
