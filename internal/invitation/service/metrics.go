package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts invitation lifecycle outcomes.
type Metrics struct {
	Created  prometheus.Counter
	Accepted prometheus.Counter
	Expired  prometheus.Counter
}

// NewMetrics creates and registers the invitation metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		Created: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bagofholding_invitations_created_total",
			Help: "Total number of invitations created.",
		}),
		Accepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bagofholding_invitations_accepted_total",
			Help: "Total number of invitations accepted.",
		}),
		Expired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bagofholding_invitations_expired_total",
			Help: "Total number of invitations lazily expired on read.",
		}),
	}
}

func (m *Metrics) incrementCreated() {
	if m != nil {
		m.Created.Inc()
	}
}

func (m *Metrics) incrementAccepted() {
	if m != nil {
		m.Accepted.Inc()
	}
}

func (m *Metrics) incrementExpired() {
	if m != nil {
		m.Expired.Inc()
	}
}
