package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the perk, event and content catalog.
type Metrics struct {
	Changes         *prometheus.CounterVec
	ContentViews    *prometheus.CounterVec
	UpcomingLatency prometheus.Histogram
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Changes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "eventgate_catalog_changes_total",
			Help: "Catalog writes by entity kind and operation",
		}, []string{"kind", "op"}),
		ContentViews: f.NewCounterVec(prometheus.CounterOpts{
			Name: "eventgate_content_views_total",
			Help: "Gated content requests by decision reason",
		}, []string{"reason"}),
		UpcomingLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "eventgate_upcoming_events_duration_seconds",
			Help:    "Duration of upcoming event listings",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) RecordChange(kind, op string) {
	if m == nil {
		return
	}
	m.Changes.WithLabelValues(kind, op).Inc()
}

func (m *Metrics) RecordContentView(reason string) {
	if m == nil {
		return
	}
	m.ContentViews.WithLabelValues(reason).Inc()
}

// ObserveUpcoming records a listing started at start.
func (m *Metrics) ObserveUpcoming(start time.Time) {
	if m == nil {
		return
	}
	m.UpcomingLatency.Observe(time.Since(start).Seconds())
}
