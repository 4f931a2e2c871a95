// Package tasks provides concrete Task implementations for the HTTP
// API and queuectl CLI to submit without requiring a custom binary.
// The core scheduler treats Task purely as a capability contract (see
// internal/taskqueue); these are ordinary clients of that contract,
// nothing more.
package tasks

import (
	"fmt"
	"sync"

	"github.com/mercadolabs/taskqueue/internal/logger"
	"github.com/mercadolabs/taskqueue/internal/taskqueue"
)

// LogTask logs a message every time it runs, optionally a fixed number
// of times before retiring. It is the simplest possible Task, useful
// for smoke-testing a queue's scheduling behavior end to end.
type LogTask struct {
	id        int64
	timeoutMS int64
	message   string
	repeat    int // 0 means run indefinitely if timeoutMS > 0

	mu       sync.Mutex
	paused   bool
	canceled bool
	runs     int
	status   taskqueue.Status
	onChange taskqueue.StatusChangedFunc
	queue    *taskqueue.Queue
}

func NewLogTask(id int64, timeoutMS int64, message string, repeat int) *LogTask {
	return &LogTask{
		id:        id,
		timeoutMS: timeoutMS,
		message:   message,
		repeat:    repeat,
		status:    taskqueue.Status{TaskID: id, Message: "pending"},
	}
}

func (t *LogTask) TaskID() int64          { return t.id }
func (t *LogTask) TimeoutMS() int64       { return t.timeoutMS }
func (t *LogTask) TimeoutMessage() string { return "next log in " }

func (t *LogTask) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

func (t *LogTask) SetPaused(paused bool) {
	t.mu.Lock()
	t.paused = paused
	t.mu.Unlock()
}

func (t *LogTask) CancelTask() {
	t.mu.Lock()
	t.canceled = true
	t.mu.Unlock()
}

func (t *LogTask) PerformTask() taskqueue.RunAgain {
	t.mu.Lock()
	t.runs++
	runs := t.runs
	canceled := t.canceled
	message := t.message
	t.mu.Unlock()

	logger.WithComponent("tasks").Info().
		Int64("task_id", t.id).
		Int("run", runs).
		Str("message", message).
		Msg("log task fired")

	t.pushStatus(fmt.Sprintf("%s (run %d)", message, runs), false)

	if canceled {
		return taskqueue.RunAgainNo
	}
	if t.repeat > 0 && runs >= t.repeat {
		return taskqueue.RunAgainNo
	}
	if t.timeoutMS <= 0 {
		return taskqueue.RunAgainNo
	}
	return taskqueue.RunAgainYes
}

func (t *LogTask) TaskStatus() taskqueue.Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *LogTask) SetStatusChangedCallback(fn taskqueue.StatusChangedFunc) {
	t.mu.Lock()
	t.onChange = fn
	t.mu.Unlock()
}

func (t *LogTask) SetTaskQueue(q *taskqueue.Queue) {
	t.mu.Lock()
	t.queue = q
	t.mu.Unlock()
}

func (t *LogTask) pushStatus(message string, complete bool) {
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
