package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records order lifecycle activity.
type OrderMetrics struct {
	transitions       *prometheus.CounterVec
	transitionBlocked *prometheus.CounterVec
	insufficientStock prometheus.Counter
	serviceDuration   *prometheus.HistogramVec
}

// NewOrderMetrics registers the order lifecycle metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions",
		Help: "Committed order status transitions.",
	}, []string{"from", "to"})
	blocked := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_blocked",
		Help: "Order status transitions rejected by the state machine.",
	}, []string{"from", "to"})
	insufficientStock := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_insufficient_stock",
		Help: "Payments refused because a line item had less stock than ordered.",
	})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_operation_duration_seconds",
		Help:    "Duration of order service operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(transitions, blocked, insufficientStock, duration)
	return &OrderMetrics{
		transitions:       transitions,
		transitionBlocked: blocked,
		insufficientStock: insufficientStock,
		serviceDuration:   duration,
	}
}

// IncTransition increments the committed-transition counter.
func (m *OrderMetrics) IncTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// IncTransitionBlocked increments the rejected-transition counter.
func (m *OrderMetrics) IncTransitionBlocked(from, to string) {
	if m == nil || m.transitionBlocked == nil {
		return
	}
	m.transitionBlocked.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// IncInsufficientStock increments the insufficient stock counter.
func (m *OrderMetrics) IncInsufficientStock() {
	if m == nil || m.insufficientStock == nil {
		return
	}
	m.insufficientStock.Inc()
}

// ObserveDuration records the duration for the named operation.
func (m *OrderMetrics) ObserveDuration(operation string, duration time.Duration) {
	if m == nil || m.serviceDuration == nil {
		return
	}
	m.serviceDuration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
