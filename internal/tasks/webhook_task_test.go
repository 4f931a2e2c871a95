package tasks

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercadolabs/taskqueue/internal/taskqueue"
)

func TestWebhookTask_DeliverOneShot(t *testing.T) {
	var hits int
	var correlationID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		correlationID = r.Header.Get("X-Correlation-ID")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	wt := NewWebhookTask(1, 0, srv.URL, map[string]any{"k": "v"}, 0)
	result := wt.PerformTask()

	assert.Equal(t, taskqueue.RunAgainNo, result)
	assert.Equal(t, 1, hits)
	assert.NotEmpty(t, correlationID, "each delivery attempt must carry a correlation id")
	assert.Contains(t, wt.TaskStatus().Message, "delivered")
}

func TestWebhookTask_MaxAttempts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	wt := NewWebhookTask(2, 10, srv.URL, nil, 2)

	require.Equal(t, taskqueue.RunAgainYes, wt.PerformTask())
	require.Equal(t, taskqueue.RunAgainNo, wt.PerformTask())
}

func TestWebhookTask_CanceledBeforeDelivery(t *testing.T) {
	wt := NewWebhookTask(3, 10, "http://example.invalid", nil, 0)
	wt.CancelTask()

	result := wt.PerformTask()
	assert.Equal(t, taskqueue.RunAgainNo, result)
	assert.Contains(t, wt.TaskStatus().Message, "canceled")
}

func TestWebhookTask_DeliveryFailureRetiresOneShot(t *testing.T) {
	wt := NewWebhookTask(4, 0, "http://127.0.0.1:0", nil, 0)

	result := wt.PerformTask()
	assert.Equal(t, taskqueue.RunAgainNo, result)
	assert.Contains(t, wt.TaskStatus().Message, "failed")
}

func TestWebhookTask_PauseAndQueue(t *testing.T) {
	q := taskqueue.New("webhook-task-test", 1)
	defer q.Close()

	wt := NewWebhookTask(5, 0, "http://example.invalid", nil, 0)
	wt.SetTaskQueue(q)
	assert.Equal(t, q, wt.queue)

	wt.SetPaused(true)
	assert.True(t, wt.Paused())
}
