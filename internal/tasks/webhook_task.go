package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mercadolabs/taskqueue/internal/logger"
	"github.com/mercadolabs/taskqueue/internal/taskqueue"
)

// WebhookTask posts a small JSON envelope to url every timeoutMS, until
// canceled or it has run maxAttempts times (0 means unlimited for a
// periodic task; a one-shot task — timeoutMS == 0 — always retires
// after its first attempt regardless of outcome).
type WebhookTask struct {
	id          int64
	timeoutMS   int64
	url         string
	payload     map[string]any
	maxAttempts int
	httpClient  *http.Client

	mu        sync.Mutex
	paused    bool
	canceled  bool
	attempts  int
	lastError string
	status    taskqueue.Status
	onChange  taskqueue.StatusChangedFunc
	queue     *taskqueue.Queue
}

func NewWebhookTask(id int64, timeoutMS int64, url string, payload map[string]any, maxAttempts int) *WebhookTask {
	return &WebhookTask{
		id:          id,
		timeoutMS:   timeoutMS,
		url:         url,
		payload:     payload,
		maxAttempts: maxAttempts,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		status:      taskqueue.Status{TaskID: id, Message: "pending"},
	}
}

func (t *WebhookTask) TaskID() int64          { return t.id }
func (t *WebhookTask) TimeoutMS() int64       { return t.timeoutMS }
func (t *WebhookTask) TimeoutMessage() string { return "next delivery attempt in " }

func (t *WebhookTask) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

func (t *WebhookTask) SetPaused(paused bool) {
	t.mu.Lock()
	t.paused = paused
	t.mu.Unlock()
}

func (t *WebhookTask) CancelTask() {
	t.mu.Lock()
	t.canceled = true
	t.mu.Unlock()
}

func (t *WebhookTask) PerformTask() taskqueue.RunAgain {
	t.mu.Lock()
	t.attempts++
	attempt := t.attempts
	canceled := t.canceled
	t.mu.Unlock()

	if canceled {
		t.pushStatus("canceled before delivery", true)
		return taskqueue.RunAgainNo
	}

	body, err := json.Marshal(t.payload)
	if err != nil {
		t.recordError(err)
		return taskqueue.RunAgainNo
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.httpClient.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		t.recordError(err)
		return taskqueue.RunAgainNo
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Correlation-ID", uuid.New().String())

	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.recordError(err)
	} else {
		resp.Body.Close()
		t.pushStatus(fmt.Sprintf("delivered (attempt %d, status %d)", attempt, resp.StatusCode), false)
		logger.WithComponent("tasks").Debug().
			Int64("task_id", t.id).
			Int("status", resp.StatusCode).
			Msg("webhook delivered")
	}

	if t.timeoutMS <= 0 {
		return taskqueue.RunAgainNo
	}
	if t.maxAttempts > 0 && attempt >= t.maxAttempts {
		return taskqueue.RunAgainNo
	}
	return taskqueue.RunAgainYes
}

func (t *WebhookTask) recordError(err error) {
	t.mu.Lock()
	t.lastError = err.Error()
	t.mu.Unlock()
	logger.WithComponent("tasks").Warn().Int64("task_id", t.id).Err(err).Msg("webhook delivery failed")
	t.pushStatus(fmt.Sprintf("delivery failed: %v", err), false)
}

func (t *WebhookTask) TaskStatus() taskqueue.Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *WebhookTask) SetStatusChangedCallback(fn taskqueue.StatusChangedFunc) {
	t.mu.Lock()
	t.onChange = fn
	t.mu.Unlock()
}

func (t *WebhookTask) SetTaskQueue(q *taskqueue.Queue) {
	t.mu.Lock()
	t.queue = q
	t.mu.Unlock()
}

func (t *WebhookTask) pushStatus(message string, complete bool) {
	t.mu.Lock()
	t.status.Message = message
	t.status.Complete = complete
	cb := t.onChange
	s := t.status
	t.mu.Unlock()

	if cb != nil {
		cb(s)
	}
}
