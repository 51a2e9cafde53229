// Package metrics holds process-wide Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds counters shared across features. Per-feature metrics live in
// the feature packages.
type Metrics struct {
	UsersRegistered prometheus.Counter
	BagsCreated     prometheus.Counter
	HTTPDuration    *prometheus.HistogramVec
}

// New creates and registers all shared Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bagofholding_users_registered_total",
			Help: "Total number of users registered.",
		}),
		BagsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bagofholding_bags_created_total",
			Help: "Total number of bags created.",
		}),
		HTTPDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bagofholding_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// IncrementUsersRegistered increments the registration counter by 1.
func (m *Metrics) IncrementUsersRegistered() {
	if m != nil {
		m.UsersRegistered.Inc()
	}
}

// IncrementBagsCreated increments the bag creation counter by 1.
func (m *Metrics) IncrementBagsCreated() {
	if m != nil {
		m.BagsCreated.Inc()
	}
}
