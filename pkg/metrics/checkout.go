package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Checkout outcomes.
const (
	OutcomeCommitted = "committed"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// CheckoutMetrics records the result of every checkout attempt.
type CheckoutMetrics struct {
	duration *prometheus.HistogramVec
	attempts *prometheus.CounterVec
	sales    *prometheus.CounterVec
	retries  prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer. A nil
// registerer yields a no-op recorder.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "justsell",
		Name:      "checkout_duration_seconds",
		Help:      "Duration of checkout attempts in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"})
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "justsell",
		Name:      "checkout_attempts_total",
		Help:      "Checkout attempts by outcome and error code.",
	}, []string{"outcome", "code"})
	sales := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "justsell",
		Name:      "sales_cents_total",
		Help:      "Committed sale totals in cents by payment method.",
	}, []string{"payment_method"})
	retries := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "justsell",
		Name:      "receipt_number_retries_total",
		Help:      "Checkout units retried after a receipt number collision.",
	})
	reg.MustRegister(duration, attempts, sales, retries)
	return &CheckoutMetrics{
		duration: duration,
		attempts: attempts,
		sales:    sales,
		retries:  retries,
	}
}

// ObserveCommitted records a committed sale.
func (c *CheckoutMetrics) ObserveCommitted(paymentMethod string, totalCents int64, elapsed time.Duration) {
	if c == nil || c.attempts == nil {
		return
	}
	c.duration.WithLabelValues(OutcomeCommitted).Observe(elapsed.Seconds())
	c.attempts.WithLabelValues(OutcomeCommitted, "").Inc()
	c.sales.WithLabelValues(normalizeLabel(paymentMethod)).Add(float64(totalCents))
}

// ObserveRejected records a checkout refused during validation.
func (c *CheckoutMetrics) ObserveRejected(code string, elapsed time.Duration) {
	if c == nil || c.attempts == nil {
		return
	}
	c.duration.WithLabelValues(OutcomeRejected).Observe(elapsed.Seconds())
	c.attempts.WithLabelValues(OutcomeRejected, normalizeLabel(code)).Inc()
}

// ObserveFailed records a checkout that failed while committing.
func (c *CheckoutMetrics) ObserveFailed(code string, elapsed time.Duration) {
	if c == nil || c.attempts == nil {
		return
	}
	c.duration.WithLabelValues(OutcomeFailed).Observe(elapsed.Seconds())
	c.attempts.WithLabelValues(OutcomeFailed, normalizeLabel(code)).Inc()
}

// IncReceiptRetry counts a receipt number collision retry.
func (c *CheckoutMetrics) IncReceiptRetry() {
	if c == nil || c.retries == nil {
		return
	}
	c.retries.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
