package monitoring

import (
	"net/http"

	"comanda/internal/models"
	"comanda/internal/restaurant"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector handles metrics collection and reporting
type MetricsCollector struct {
	registry *prometheus.Registry
	metrics  map[string]prometheus.Collector
}

// NewMetricsCollector creates a new metrics collector on its own registry
func NewMetricsCollector() *MetricsCollector {
	registry := prometheus.NewRegistry()

	ordersCreated := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Orders accepted, by channel",
		},
		[]string{"channel"},
	)

	transitions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_transitions_total",
			Help: "Lifecycle transitions, by source and target state",
		},
		[]string{"from", "to"},
	)

	tableRejections := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "table_occupied_rejections_total",
			Help: "Dine-in orders refused because the table was held",
		},
	)

	revenue := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paid_revenue_total",
			Help: "Sum of order totals at payment, by channel",
		},
		[]string{"channel"},
	)

	cycleTime := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "order_cycle_time_seconds",
			Help:    "Time from order creation to payment",
			Buckets: prometheus.LinearBuckets(0, 300, 20), // 5-minute buckets
		},
		[]string{"channel"},
	)

	edits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "order_edits_total",
			Help: "Line item and tip edits applied to orders",
		},
	)

	metrics := map[string]prometheus.Collector{
		"orders_created":   ordersCreated,
		"transitions":      transitions,
		"table_rejections": tableRejections,
		"revenue":          revenue,
		"cycle_time":       cycleTime,
		"edits":            edits,
	}

	for _, metric := range metrics {
		registry.MustRegister(metric)
	}

	return &MetricsCollector{
		registry: registry,
		metrics:  metrics,
	}
}

// Registry exposes the underlying registry
func (mc *MetricsCollector) Registry() *prometheus.Registry {
	return mc.registry
}

// Handler serves the registry in the prometheus text format
func (mc *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(mc.registry, promhttp.HandlerOpts{})
}

// Observe records an order event
func (mc *MetricsCollector) Observe(event restaurant.Event) {
	switch event.Type {
	case restaurant.EventOrderCreated:
		mc.RecordOrderCreated(event.Order)
	case restaurant.EventOrderAdvanced:
		mc.RecordTransition(event.Order, event.From)
	case restaurant.EventOrderUpdated:
		if counter, ok := mc.metrics["edits"].(prometheus.Counter); ok {
			counter.Inc()
		}
	case restaurant.EventTableRejected:
		if counter, ok := mc.metrics["table_rejections"].(prometheus.Counter); ok {
			counter.Inc()
		}
	}
}

// RecordOrderCreated counts a new order
func (mc *MetricsCollector) RecordOrderCreated(order models.Order) {
	if counter, ok := mc.metrics["orders_created"].(*prometheus.CounterVec); ok {
		counter.WithLabelValues(string(order.Channel)).Inc()
	}
}

// RecordTransition counts a transition and, on payment, the revenue and
// cycle time of the order
func (mc *MetricsCollector) RecordTransition(order models.Order, from models.OrderState) {
	if counter, ok := mc.metrics["transitions"].(*prometheus.CounterVec); ok {
		counter.WithLabelValues(string(from), string(order.State)).Inc()
	}
	if order.State != models.OrderStatePaid {
		return
	}
	if counter, ok := mc.metrics["revenue"].(*prometheus.CounterVec); ok {
		counter.WithLabelValues(string(order.Channel)).Add(order.Total.InexactFloat64())
	}
	if histogram, ok := mc.metrics["cycle_time"].(*prometheus.HistogramVec); ok && order.PaidAt != nil {
		histogram.WithLabelValues(string(order.Channel)).Observe(order.PaidAt.Sub(order.CreatedAt).Seconds())
	}
}
