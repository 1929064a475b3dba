package publisher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for audit publishing.
type Metrics struct {
	Persisted           prometheus.Counter
	Dropped             *prometheus.CounterVec
	PersistFailures     prometheus.Counter
	CircuitBreakerState prometheus.Gauge
}

// NewMetrics registers audit publisher metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Persisted: factory.NewCounter(prometheus.CounterOpts{
			Name: "rolegate_audit_persisted_total",
			Help: "Total number of audit events written to the sink",
		}),
		Dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rolegate_audit_dropped_total",
			Help: "Total number of audit events dropped before reaching the sink",
		}, []string{"cause"}), // cause: "buffer_full", "circuit_open", "closed"
		PersistFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "rolegate_audit_persist_failures_total",
			Help: "Total number of audit sink write failures",
		}),
		CircuitBreakerState: factory.NewGauge(prometheus.GaugeOpts{
			Name: "rolegate_audit_circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed/healthy, 1=open/unhealthy)",
		}),
	}
}

func (m *Metrics) incPersisted() {
	if m != nil {
		m.Persisted.Inc()
	}
}

func (m *Metrics) incDropped(cause string) {
	if m != nil {
		m.Dropped.WithLabelValues(cause).Inc()
	}
}

func (m *Metrics) incPersistFailures() {
	if m != nil {
		m.PersistFailures.Inc()
	}
}

func (m *Metrics) setCircuitBreakerState(open bool) {
	if m == nil {
		return
	}
	if open {
		m.CircuitBreakerState.Set(1)
	} else {
		m.CircuitBreakerState.Set(0)
	}
}
