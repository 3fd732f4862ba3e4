// Package metrics holds the process-wide Prometheus collectors.
//
// Collectors are registered once on the default registry through promauto,
// which is what promhttp.Handler() exposes on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Call outcomes recorded by RecordCallOutcome.
const (
	OutcomeInitiated = "initiated"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Number of in-flight HTTP requests",
		},
	)

	callsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vapi_calls_total",
			Help: "Outbound call attempts by outcome",
		},
		[]string{"outcome"},
	)

	upstreamStatusTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vapi_upstream_responses_total",
			Help: "Responses from the call-placement API by HTTP status",
		},
		[]string{"status"},
	)
)

// ObserveRequest records one finished HTTP request.
//
// path must be the route template, never the raw URL, to keep label
// cardinality bounded.
func ObserveRequest(method, path, status string, seconds float64) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// RequestStarted and RequestFinished track in-flight requests.
func RequestStarted() { activeRequests.Inc() }

func RequestFinished() { activeRequests.Dec() }

// RecordCallOutcome counts one outbound call attempt.
func RecordCallOutcome(outcome string) {
	callsTotal.WithLabelValues(outcome).Inc()
}

// RecordUpstreamStatus counts one answer from the call-placement API.
func RecordUpstreamStatus(status string) {
	upstreamStatusTotal.WithLabelValues(status).Inc()
}
