// Package telemetry provides Prometheus metrics for the bot.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Update status label values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Catalog cache event label values.
const (
	CacheHit    = "hit"
	CacheMiss   = "miss"
	CacheBypass = "bypass"
)

// BotMetrics collects Prometheus metrics for update handling, checkout and
// the catalog cache.
//
// Thread Safety: Safe for concurrent use by multiple goroutines.
type BotMetrics struct {
	registry *prometheus.Registry

	updates         *prometheus.CounterVec
	handlerDuration *prometheus.HistogramVec
	ordersCreated   prometheus.Counter
	orderTotal      prometheus.Histogram
	cacheEvents     *prometheus.CounterVec
}

// NewBotMetrics creates a new metrics collector with its own registry to
// avoid conflicts with default metrics.
func NewBotMetrics() *BotMetrics {
	registry := prometheus.NewRegistry()

	m := &BotMetrics{
		registry: registry,
		updates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "shopbot",
				Name:      "updates_total",
				Help:      "Total number of handled bot updates.",
			},
			[]string{"handler", "status"},
		),
		handlerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "shopbot",
				Name:      "handler_duration_seconds",
				Help:      "Duration of update handling in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"handler"},
		),
		ordersCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "shopbot",
				Name:      "orders_created_total",
				Help:      "Total number of orders created through checkout.",
			},
		),
		orderTotal: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "shopbot",
				Name:      "order_total_minor_units",
				Help:      "Order totals in minor currency units.",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
		),
		cacheEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "shopbot",
				Name:      "catalog_cache_events_total",
				Help:      "Catalog cache hits, misses and bypasses.",
			},
			[]string{"event"},
		),
	}

	registry.MustRegister(
		m.updates,
		m.handlerDuration,
		m.ordersCreated,
		m.orderTotal,
		m.cacheEvents,
	)

	return m
}

// ObserveUpdate records one handled update with its outcome and duration.
func (m *BotMetrics) ObserveUpdate(handler, status string, duration time.Duration) {
	m.updates.WithLabelValues(handler, status).Inc()
	m.handlerDuration.WithLabelValues(handler).Observe(duration.Seconds())
}

// RecordOrder records a successfully created order and its total.
func (m *BotMetrics) RecordOrder(totalMinorUnits int64) {
	m.ordersCreated.Inc()
	m.orderTotal.Observe(float64(totalMinorUnits))
}

// RecordCacheEvent records a catalog cache hit, miss or bypass.
func (m *BotMetrics) RecordCacheEvent(event string) {
	m.cacheEvents.WithLabelValues(event).Inc()
}

// Handler returns an HTTP handler that serves this collector's registry.
func (m *BotMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
