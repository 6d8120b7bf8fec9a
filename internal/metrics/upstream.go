package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels of an upstream call.
const (
	OutcomeSuccess   = "success"
	OutcomeStatus    = "status_error"
	OutcomeTransport = "transport_error"
	OutcomeTimeout   = "timeout"
)

// Retrieval engine Prometheus metrics.
var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of calls to the retrieval engine",
		},
		[]string{"operation", "outcome"},
	)

	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Retrieval engine call duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation"},
	)

	UpstreamMalformedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "upstream_malformed_responses_total",
			Help:      "2xx engine responses whose body could not be decoded",
		},
		[]string{"operation"},
	)

	UpstreamMatchesReturned = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "upstream_matches_returned",
			Help:      "Number of matches per decoded search response",
			Buckets:   []float64{0, 1, 3, 5, 10, 25, 50, 100, 250},
		},
		[]string{"operation"},
	)
)

var registerUpstreamOnce sync.Once

// RegisterUpstreamMetrics registers the retrieval engine metrics on the default registry.
// Safe for concurrent use; repeated calls are no-ops.
func RegisterUpstreamMetrics() {
	registerUpstreamOnce.Do(func() {
		prometheus.MustRegister(
			UpstreamRequestsTotal,
			UpstreamRequestDuration,
			UpstreamMalformedTotal,
			UpstreamMatchesReturned,
		)
	})
}
