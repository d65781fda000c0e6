package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	adminRequestsTotal  *prometheus.CounterVec
	adminLatencySeconds *prometheus.HistogramVec
	adminErrorsTotal    *prometheus.CounterVec
	reviewsTotal        *prometheus.CounterVec
	notifyFailures      *prometheus.CounterVec
	dispatchedTotal     prometheus.Counter
	sweepPenaltiesTotal prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors for the challenge API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		adminRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_requests_total",
			Help: "Total number of admin API requests served.",
		}, []string{"method", "route", "status"})

		adminLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "admin_latency_seconds",
			Help:    "Latency distribution for admin API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		adminErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_errors_total",
			Help: "Total number of error responses returned by admin endpoints.",
		}, []string{"method", "route", "status"})

		reviewsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submission_reviews_total",
			Help: "Total number of submission review decisions by outcome.",
		}, []string{"outcome"})

		notifyFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notification_failures_total",
			Help: "Total number of undelivered gateway notifications by source.",
		}, []string{"source"})

		dispatchedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "problems_dispatched_total",
			Help: "Total number of problems announced to participants.",
		})

		sweepPenaltiesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sweep_penalties_total",
			Help: "Total number of penalties applied by the deadline sweep.",
		})

		prometheus.MustRegister(
			adminRequestsTotal,
			adminLatencySeconds,
			adminErrorsTotal,
			reviewsTotal,
			notifyFailures,
			dispatchedTotal,
			sweepPenaltiesTotal,
		)
	})
}

// AdminRequests exposes the counter for admin requests.
func AdminRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return adminRequestsTotal
}

// AdminLatency exposes the latency histogram for admin requests.
func AdminLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return adminLatencySeconds
}

// AdminErrors exposes the counter for admin error responses.
func AdminErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return adminErrorsTotal
}

// Reviews exposes the counter for review decisions, labelled by outcome.
func Reviews() *prometheus.CounterVec {
	RegisterMetrics()
	return reviewsTotal
}

// NotificationFailures exposes the counter for failed notifications.
func NotificationFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return notifyFailures
}

// DispatchedProblems exposes the counter for announced problems.
func DispatchedProblems() prometheus.Counter {
	RegisterMetrics()
	return dispatchedTotal
}

// SweepPenalties exposes the counter for sweep penalties.
func SweepPenalties() prometheus.Counter {
	RegisterMetrics()
	return sweepPenaltiesTotal
}
