package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	TokensIssued *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		TokensIssued: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "rolegate_tokens_issued_total",
			Help: "Total credentials issued, by role",
		}, []string{"role"}),
	}
}

func (m *Metrics) IncrementIssued(role string) {
	if m != nil {
		m.TokensIssued.WithLabelValues(role).Inc()
	}
}
