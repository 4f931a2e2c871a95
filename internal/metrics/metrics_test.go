package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistration(t *testing.T) {
	assert.NotNil(t, TasksSubmittedTotal)
	assert.NotNil(t, TasksRetiredTotal)
	assert.NotNil(t, TasksPending)
	assert.NotNil(t, TaskDuration)
	assert.NotNil(t, WorkersConfigured)
	assert.NotNil(t, WorkersLive)
	assert.NotNil(t, HTTPRequestDuration)
	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, WebSocketConnections)
	assert.NotNil(t, WebSocketMessages)
	assert.NotNil(t, RedisOperationDuration)
	assert.NotNil(t, RedisErrors)
	assert.NotNil(t, AuthRejectionsTotal)
	assert.NotNil(t, RateLimitRejectionsTotal)
}

func TestIncrementTasksSubmitted(t *testing.T) {
	TasksSubmittedTotal.Reset()

	IncrementTasksSubmitted("default")
	IncrementTasksSubmitted("default")
	IncrementTasksSubmitted("other")

	assert.InDelta(t, 2, testutil.ToFloat64(TasksSubmittedTotal.WithLabelValues("default")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(TasksSubmittedTotal.WithLabelValues("other")), 0)
}

func TestIncrementTasksRetired(t *testing.T) {
	TasksRetiredTotal.Reset()

	IncrementTasksRetired("default")

	assert.InDelta(t, 1, testutil.ToFloat64(TasksRetiredTotal.WithLabelValues("default")), 0)
}

func TestSetTasksPending(t *testing.T) {
	SetTasksPending("default", 3)
	SetTasksPending("default", 0)
}

func TestObserveTaskDuration(t *testing.T) {
	TaskDuration.Reset()

	ObserveTaskDuration("default", 0.01)
	ObserveTaskDuration("default", 1.5)
}

func TestSetWorkersConfiguredAndLive(t *testing.T) {
	SetWorkersConfigured("default", 4)
	SetWorkersLive("default", 3)
}

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestDuration.Reset()
	HTTPRequestsTotal.Reset()

	RecordHTTPRequest("GET", "/tasks", "200", 0.05)
	RecordHTTPRequest("POST", "/tasks", "201", 0.1)
}

func TestRecordRedisOperation(t *testing.T) {
	RedisOperationDuration.Reset()

	RecordRedisOperation("PUBLISH", 0.001)
}

func TestRecordRedisError(t *testing.T) {
	RedisErrors.Reset()

	RecordRedisError("PUBLISH")
}

func TestSetWebSocketConnections(t *testing.T) {
	SetWebSocketConnections(0)
	SetWebSocketConnections(5)
}

func TestRecordWebSocketMessage(t *testing.T) {
	WebSocketMessages.Reset()

	RecordWebSocketMessage("status.changed")
}

func TestIncrementAuthRejection(t *testing.T) {
	AuthRejectionsTotal.Reset()

	IncrementAuthRejection("invalid_token")
	IncrementAuthRejection("invalid_token")

	assert.InDelta(t, 2, testutil.ToFloat64(AuthRejectionsTotal.WithLabelValues("invalid_token")), 0)
}

func TestIncrementRateLimitRejection(t *testing.T) {
	RateLimitRejectionsTotal.Reset()

	IncrementRateLimitRejection("client")

	assert.InDelta(t, 1, testutil.ToFloat64(RateLimitRejectionsTotal.WithLabelValues("client")), 0)
}
