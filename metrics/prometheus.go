// Package metrics exports Prometheus counters for outbound marketplace calls
// and pipeline outcomes.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "divulgador"

var (
	upstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of requests sent to the marketplace API.",
		},
		[]string{"method", "endpoint", "status"},
	)
	upstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Histogram of marketplace API request durations.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)
	lookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Pipeline operations by kind and outcome.",
		},
		[]string{"operation", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(upstreamRequestsTotal)
	prometheus.MustRegister(upstreamRequestDuration)
	prometheus.MustRegister(lookupsTotal)
}

// RecordRequest records one outbound request. A statusCode of 0 means the
// request failed before a response arrived.
func RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := classifyStatus(statusCode)
	upstreamRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	upstreamRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

// RecordLookup counts one Resolve or Search call by outcome ("ok" or an
// error type).
func RecordLookup(operation, outcome string) {
	lookupsTotal.WithLabelValues(operation, outcome).Inc()
}

func classifyStatus(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500 && statusCode < 600:
		return "5xx"
	case statusCode == 0:
		return "error"
	}
	return "unknown"
}

// Handler returns the HTTP handler exposing the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
