package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts check-in scans and QR issuance.
type Metrics struct {
	Scans     *prometheus.CounterVec
	QRIssued  prometheus.Counter
	LogWrites prometheus.Counter
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Scans: f.NewCounterVec(prometheus.CounterOpts{
			Name: "eventgate_checkin_scans_total",
			Help: "Check-in scans by terminal state and reason",
		}, []string{"state", "reason"}),
		QRIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "eventgate_checkin_qr_issued_total",
			Help: "QR codes rendered for attendees",
		}),
		LogWrites: f.NewCounter(prometheus.CounterOpts{
			Name: "eventgate_checkin_access_logs_total",
			Help: "Access log entries appended",
		}),
	}
}

func (m *Metrics) RecordScan(state, reason string) {
	if m == nil {
		return
	}
	m.Scans.WithLabelValues(state, reason).Inc()
}

func (m *Metrics) IncrementQRIssued() {
	if m == nil {
		return
	}
	m.QRIssued.Inc()
}

func (m *Metrics) IncrementLogWrites() {
	if m == nil {
		return
	}
	m.LogWrites.Inc()
}
