package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments exposed at /metrics.
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	SessionsSwept   prometheus.Counter
	SweepRuns       prometheus.Counter
}

// NewMetrics registers the gatehouse instruments on the given
// registerer (pass prometheus.DefaultRegisterer in production; tests
// use a private registry to avoid duplicate registration).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gatehouse",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served, by method and status code.",
		}, []string{"method", "status"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gatehouse",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		SessionsSwept: f.NewCounter(prometheus.CounterOpts{
			Namespace: "gatehouse",
			Subsystem: "sessions",
			Name:      "swept_total",
			Help:      "Expired sessions removed by the background sweeper.",
		}),
		SweepRuns: f.NewCounter(prometheus.CounterOpts{
			Namespace: "gatehouse",
			Subsystem: "sessions",
			Name:      "sweep_runs_total",
			Help:      "Completed sweeper passes.",
		}),
	}
}
