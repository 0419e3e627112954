package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for authorization decisions.
type Metrics struct {
	DecisionOutcome *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		DecisionOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "eventgate_decision_outcomes_total",
			Help: "Authorization decisions by kind and reason",
		}, []string{"kind", "reason"}),
	}
}

// IncrementOutcome records a decision outcome.
func (m *Metrics) IncrementOutcome(kind, reason string) {
	if m != nil {
		m.DecisionOutcome.WithLabelValues(kind, reason).Inc()
	}
}
