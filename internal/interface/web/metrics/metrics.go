package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the classification API.
type Metrics struct {
	// Request latency by route and method
	RequestDuration *prometheus.HistogramVec

	// Onboarding and verification outcomes by asset type and status
	ClassificationOutcome *prometheus.CounterVec

	// Payment instructions dispatched at onboarding, by denom
	PaymentsDispatched *prometheus.CounterVec
}

// New creates a Metrics instance with all API metrics registered on the
// default registry.
func New() *Metrics {
	return &Metrics{
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "classifyd_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route and method",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "method"}),

		ClassificationOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "classifyd_classification_outcomes_total",
			Help: "Total onboarding and verification outcomes by asset type and status",
		}, []string{"asset_type", "status"}),

		PaymentsDispatched: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "classifyd_payments_dispatched_total",
			Help: "Total payment instructions dispatched at onboarding by denom",
		}, []string{"denom"}),
	}
}

// ObserveRequest records the duration of one handled request.
func (m *Metrics) ObserveRequest(route, method string, d time.Duration) {
	if m != nil {
		m.RequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
	}
}

// IncrementOutcome records an onboarding or verification outcome.
func (m *Metrics) IncrementOutcome(assetType, status string) {
	if m != nil {
		m.ClassificationOutcome.WithLabelValues(assetType, status).Inc()
	}
}

// CountPayments records dispatched payment instructions.
func (m *Metrics) CountPayments(denom string, count int) {
	if m != nil {
		m.PaymentsDispatched.WithLabelValues(denom).Add(float64(count))
	}
}
