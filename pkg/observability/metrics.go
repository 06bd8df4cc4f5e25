// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the scenesmith service.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets defines histogram buckets suited for LLM inference latencies,
// ranging from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

// RenderBuckets covers container render times, from a couple of seconds
// of startup overhead up to the default render timeout.
var RenderBuckets = []float64{1, 2, 5, 10, 20, 30, 60, 90, 120, 180}

var (
	// RequestsTotal counts all HTTP requests by method, status class, and route.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scenesmith_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status", "route"},
	)

	// RequestDuration records HTTP request duration in seconds by method and route.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scenesmith_request_duration_seconds",
			Help:    "Request duration",
			Buckets: LLMBuckets,
		},
		[]string{"method", "route"},
	)

	// StreamingConnections tracks the number of active SSE streaming connections.
	StreamingConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scenesmith_streaming_connections_active",
			Help: "Active streaming connections",
		},
	)

	// ProviderRequestsTotal counts streaming turns sent to the backend provider.
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scenesmith_provider_requests_total",
			Help: "Provider requests",
		},
		[]string{"provider", "model", "status"},
	)

	// ProviderLatency records backend provider turn latency in seconds.
	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scenesmith_provider_latency_seconds",
			Help:    "Provider latency",
			Buckets: LLMBuckets,
		},
		[]string{"provider", "model"},
	)

	// RenderExecutionsTotal counts sandbox render executions by outcome.
	RenderExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scenesmith_render_executions_total",
			Help: "Render executions",
		},
		[]string{"status"},
	)

	// RenderDuration records end-to-end render duration in seconds,
	// including container create and teardown.
	RenderDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scenesmith_render_duration_seconds",
			Help:    "Render duration",
			Buckets: RenderBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		StreamingConnections,
		ProviderRequestsTotal,
		ProviderLatency,
		RenderExecutionsTotal,
		RenderDuration,
	)
}
