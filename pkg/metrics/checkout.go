package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Calculation outcome labels.
const (
	ResultFresh    = "fresh"
	ResultStale    = "stale"
	ResultFallback = "fallback"
	ResultEmpty    = "empty"
	ResultDeferred = "deferred"
)

// CheckoutMetrics records calculator and placement outcomes.
type CheckoutMetrics struct {
	calculations       *prometheus.CounterVec
	calcDuration       *prometheus.HistogramVec
	placements         *prometheus.CounterVec
	availabilityBlocks prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided
// registerer. A nil registerer yields a no-op recorder.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	calculations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_calculations_total",
		Help: "Order calculations by outcome.",
	}, []string{"result"})
	calcDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_calculation_duration_seconds",
		Help:    "Duration of order calculation cycles in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})
	placements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_placements_total",
		Help: "Order placement attempts by outcome.",
	}, []string{"result"})
	availabilityBlocks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_availability_blocks_total",
		Help: "Calculations or placements blocked by branch availability.",
	})
	reg.MustRegister(calculations, calcDuration, placements, availabilityBlocks)
	return &CheckoutMetrics{
		calculations:       calculations,
		calcDuration:       calcDuration,
		placements:         placements,
		availabilityBlocks: availabilityBlocks,
	}
}

// ObserveCalculation records one calculation cycle.
func (m *CheckoutMetrics) ObserveCalculation(result string, duration time.Duration) {
	if m == nil || m.calculations == nil {
		return
	}
	m.calculations.WithLabelValues(normalizeLabel(result)).Inc()
	m.calcDuration.WithLabelValues(normalizeLabel(result)).Observe(duration.Seconds())
}

// IncPlacement records one placement outcome.
func (m *CheckoutMetrics) IncPlacement(result string) {
	if m == nil || m.placements == nil {
		return
	}
	m.placements.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncAvailabilityBlock records a flow blocked by branch availability.
func (m *CheckoutMetrics) IncAvailabilityBlock() {
	if m == nil || m.availabilityBlocks == nil {
		return
	}
	m.availabilityBlocks.Inc()
}

func normalizeLabel(result string) string {
	if result == "" {
		return "unknown"
	}
	return result
}
