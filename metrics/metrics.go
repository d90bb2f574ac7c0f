// Package metrics holds the Prometheus collectors for the API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific collectors
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foodshare",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "foodshare",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	registrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foodshare",
			Subsystem: "accounts",
			Name:      "registrations_total",
			Help:      "Registration attempts by role and outcome.",
		},
		[]string{"role", "outcome"},
	)

	logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foodshare",
			Subsystem: "accounts",
			Name:      "logins_total",
			Help:      "Login attempts by role and outcome.",
		},
		[]string{"role", "outcome"},
	)

	feedback = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foodshare",
			Subsystem: "feedback",
			Name:      "submissions_total",
			Help:      "Feedback submissions by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		registrations,
		logins,
		feedback,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func ObserveHTTP(method, path, status string, seconds float64) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(seconds)
}

func RecordRegistration(role, outcome string) {
	registrations.WithLabelValues(role, outcome).Inc()
}

func RecordLogin(role, outcome string) {
	logins.WithLabelValues(role, outcome).Inc()
}

func RecordFeedback(outcome string) {
	feedback.WithLabelValues(outcome).Inc()
}
