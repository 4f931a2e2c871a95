// Package metrics exposes the Prometheus instrumentation surface for a
// running queue: the in-process scheduler's own counters and gauges,
// plus the HTTP/WebSocket control surface layered on top of it.
//
// Labels are small fixed sets (queue name; HTTP method/path/status;
// message type, Redis operation, rejection reason or scope) — never
// task ID. A Task's TaskID is caller-assigned and unbounded, so
// labeling a Prometheus series by it would be an unbounded-cardinality
// time series per task, not a metric.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TasksSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskqueue_tasks_submitted_total",
			Help: "Total number of tasks submitted to a queue",
		},
		[]string{"queue"},
	)

	TasksRetiredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskqueue_tasks_retired_total",
			Help: "Total number of tasks that finished (one-shot completion, RunAgainNo, cancellation, or panic)",
		},
		[]string{"queue"},
	)

	TasksPending = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "taskqueue_tasks_pending",
			Help: "Current number of task records live in a queue (running or waiting)",
		},
		[]string{"queue"},
	)

	TaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskqueue_task_duration_seconds",
			Help:    "Duration of a single PerformTask call",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		},
		[]string{"queue"},
	)

	WorkersConfigured = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "taskqueue_workers_configured",
			Help: "Configured worker pool size for a queue",
		},
		[]string{"queue"},
	)

	WorkersLive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "taskqueue_workers_live",
			Help: "Worker goroutines currently running for a queue (transiently above or below configured during a resize)",
		},
		[]string{"queue"},
	)

	// HTTP metrics, for the admin API layered on top of the queue.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskqueue_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskqueue_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// WebSocket metrics, for the live status-change stream.
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "taskqueue_websocket_connections",
			Help: "Current number of WebSocket connections",
		},
	)

	WebSocketMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskqueue_websocket_messages_total",
			Help: "Total number of WebSocket messages sent",
		},
		[]string{"type"},
	)

	// Redis metrics, for the optional status-mirror publisher.
	RedisOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskqueue_redis_operation_duration_seconds",
			Help:    "Redis operation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		},
		[]string{"operation"},
	)

	RedisErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskqueue_redis_errors_total",
			Help: "Total number of Redis errors",
		},
		[]string{"operation"},
	)

	// Middleware metrics, for the admin auth and rate-limit gates.
	AuthRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskqueue_auth_rejections_total",
			Help: "Total number of admin API requests rejected by the auth middleware, by reason",
		},
		[]string{"reason"},
	)

	RateLimitRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskqueue_rate_limit_rejections_total",
			Help: "Total number of HTTP requests rejected by the rate limiter, by scope (global or per-client)",
		},
		[]string{"scope"},
	)
)

func IncrementTasksSubmitted(queue string) {
	TasksSubmittedTotal.WithLabelValues(queue).Inc()
}

func IncrementTasksRetired(queue string) {
	TasksRetiredTotal.WithLabelValues(queue).Inc()
}

func SetTasksPending(queue string, count float64) {
	TasksPending.WithLabelValues(queue).Set(count)
}

func ObserveTaskDuration(queue string, seconds float64) {
	TaskDuration.WithLabelValues(queue).Observe(seconds)
}

func SetWorkersConfigured(queue string, count float64) {
	WorkersConfigured.WithLabelValues(queue).Set(count)
}

func SetWorkersLive(queue string, count float64) {
	WorkersLive.WithLabelValues(queue).Set(count)
}

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration)
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
}

func SetWebSocketConnections(count float64) {
	WebSocketConnections.Set(count)
}

func RecordWebSocketMessage(msgType string) {
	WebSocketMessages.WithLabelValues(msgType).Inc()
}

func RecordRedisOperation(operation string, duration float64) {
	RedisOperationDuration.WithLabelValues(operation).Observe(duration)
}

func RecordRedisError(operation string) {
	RedisErrors.WithLabelValues(operation).Inc()
}

func IncrementAuthRejection(reason string) {
	AuthRejectionsTotal.WithLabelValues(reason).Inc()
}

func IncrementRateLimitRejection(scope string) {
	RateLimitRejectionsTotal.WithLabelValues(scope).Inc()
}
