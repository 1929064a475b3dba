package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for access decisions.
type Metrics struct {
	// Decisions by operation, outcome and denial reason
	DecisionOutcome *prometheus.CounterVec

	// Time spent verifying and deciding
	DecisionLatency prometheus.Histogram
}

// New registers access metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DecisionOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rolegate_access_decisions_total",
			Help: "Total access decisions by operation, outcome and reason",
		}, []string{"operation", "outcome", "reason"}),

		DecisionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rolegate_access_decision_duration_seconds",
			Help:    "Duration of credential verification plus policy evaluation",
			Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01},
		}),
	}
}

// IncrementOutcome records one decision.
func (m *Metrics) IncrementOutcome(operation, outcome, reason string) {
	if m != nil {
		m.DecisionOutcome.WithLabelValues(operation, outcome, reason).Inc()
	}
}

// ObserveLatency records the decision duration.
func (m *Metrics) ObserveLatency(d time.Duration) {
	if m != nil {
		m.DecisionLatency.Observe(d.Seconds())
	}
}
