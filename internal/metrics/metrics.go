// Package metrics exposes Prometheus counters for persistence and store
// activity. A nil *Collector is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so tests can create many instances.
type Collector struct {
	registry *prometheus.Registry

	PersistOps      *prometheus.CounterVec
	PersistDuration *prometheus.HistogramVec
	StoreEvents     *prometheus.CounterVec
}

// New creates a collector with metrics under namespace.
func New(namespace string) *Collector {
	reg := prometheus.NewRegistry()

	ops := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_operations_total",
			Help:      "Persistence operations by backend, operation and result.",
		},
		[]string{"backend", "op", "result"},
	)
	dur := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "persistence_duration_seconds",
			Help:      "Persistence operation latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"backend", "op"},
	)
	events := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_events_total",
			Help:      "Store change events by kind.",
		},
		[]string{"kind"},
	)

	reg.MustRegister(ops, dur, events)
	return &Collector{registry: reg, PersistOps: ops, PersistDuration: dur, StoreEvents: events}
}

// ObservePersist records one persistence call.
func (c *Collector) ObservePersist(backend, op string, start time.Time, err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.PersistOps.WithLabelValues(backend, op, result).Inc()
	c.PersistDuration.WithLabelValues(backend, op).Observe(time.Since(start).Seconds())
}

// ObserveEvent counts one store change event.
func (c *Collector) ObserveEvent(kind string) {
	if c == nil {
		return
	}
	c.StoreEvents.WithLabelValues(kind).Inc()
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
