// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the falpipe gateway.
package observability

import "github.com/prometheus/client_golang/prometheus"

// GenerationBuckets defines histogram buckets suited for image generation
// latencies, ranging from 500ms to 5 minutes.
var GenerationBuckets = []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120, 300}

var (
	// RequestsTotal counts all HTTP requests by method, status class, and model.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "falpipe_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status", "model"},
	)

	// RequestDuration records HTTP request duration in seconds by method and model.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "falpipe_request_duration_seconds",
			Help:    "Request duration",
			Buckets: GenerationBuckets,
		},
		[]string{"method", "model"},
	)

	// StreamingConnections tracks the number of active SSE streaming connections.
	StreamingConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "falpipe_streaming_connections_active",
			Help: "Active streaming connections",
		},
	)

	// PipeInvocationsTotal counts pipe invocations by model and outcome. The
	// outcome is "success" or the failure code of the rendered error.
	PipeInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "falpipe_pipe_invocations_total",
			Help: "Pipe invocations",
		},
		[]string{"model", "outcome"},
	)

	// BackendRequestsTotal counts generations dispatched to the backend.
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "falpipe_backend_requests_total",
			Help: "Backend generation requests",
		},
		[]string{"provider", "target", "status"},
	)

	// BackendLatency records backend generation latency in seconds.
	BackendLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "falpipe_backend_latency_seconds",
			Help:    "Backend generation latency",
			Buckets: GenerationBuckets,
		},
		[]string{"provider", "target"},
	)

	// ImagesGeneratedTotal counts images reported by completed generations.
	ImagesGeneratedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "falpipe_images_generated_total",
			Help: "Generated images",
		},
		[]string{"provider", "target"},
	)

	// StatusEventsDroppedTotal counts status events that could not be
	// delivered, whether the sink panicked or the stream write failed.
	StatusEventsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "falpipe_status_events_dropped_total",
			Help: "Status events dropped",
		},
	)

	// RoutingFallbackTotal counts requests routed to the operator's custom
	// target because no registry entry matched.
	RoutingFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "falpipe_routing_fallback_total",
			Help: "Requests routed to the fallback target",
		},
	)

	// SettingsUpdatesTotal counts settings replacements by outcome.
	SettingsUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "falpipe_settings_updates_total",
			Help: "Settings updates",
		},
		[]string{"status"},
	)

	// RateLimitRejectedTotal counts requests rejected by the rate limiter.
	RateLimitRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "falpipe_ratelimit_rejected_total",
			Help: "Rate limit rejections",
		},
		[]string{"tier"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		StreamingConnections,
		PipeInvocationsTotal,
		BackendRequestsTotal,
		BackendLatency,
		ImagesGeneratedTotal,
		StatusEventsDroppedTotal,
		RoutingFallbackTotal,
		SettingsUpdatesTotal,
		RateLimitRejectedTotal,
	)
}
