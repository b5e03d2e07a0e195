package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Build outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// OrderMetrics records order build and status transition activity.
type OrderMetrics struct {
	buildDuration *prometheus.HistogramVec
	builds        *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	unitsSold     prometheus.Counter
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	buildDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_build_duration_seconds",
		Help:    "Duration of order builds in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	builds := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_builds_total",
		Help: "Order build attempts by outcome and error code.",
	}, []string{"outcome", "code"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Applied order status transitions.",
	}, []string{"from", "to"})
	unitsSold := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_units_allocated_total",
		Help: "Units decremented from batches by committed orders.",
	})
	reg.MustRegister(buildDuration, builds, transitions, unitsSold)
	return &OrderMetrics{
		buildDuration: buildDuration,
		builds:        builds,
		transitions:   transitions,
		unitsSold:     unitsSold,
	}
}

// ObserveBuild records one build attempt. code is empty for successful builds.
func (m *OrderMetrics) ObserveBuild(outcome, code string, duration time.Duration) {
	if m == nil || m.builds == nil {
		return
	}
	outcome = normalizeLabel(outcome)
	m.buildDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	if code == "" {
		code = "none"
	}
	m.builds.WithLabelValues(outcome, code).Inc()
}

// AddUnits increments the allocated units counter.
func (m *OrderMetrics) AddUnits(units int) {
	if m == nil || m.unitsSold == nil || units <= 0 {
		return
	}
	m.unitsSold.Add(float64(units))
}

// IncTransition counts an applied status change.
func (m *OrderMetrics) IncTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
