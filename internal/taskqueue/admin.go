package taskqueue

import (
	"strconv"
	"time"

	"github.com/mercadolabs/taskqueue/internal/logger"
)

// adminLoop keeps every non-active record's status message in sync with
// how long it has left before its next run, per spec.md §4.3. It is a
// single goroutine, independent of the worker pool, woken by its own
// ticker and stopped by closing adminDone.
func (q *Queue) adminLoop() {
	defer q.adminWG.Done()

	ticker := time.NewTicker(q.adminTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-q.adminDone:
			logger.WithQueue(q.threadName).Debug().Msg("admin loop stopped")
			return
		case <-ticker.C:
		case <-q.adminWake:
		}
		q.refreshCountdowns()
	}
}

// refreshCountdowns walks the task list once, computing each non-active
// record's remaining time and writing the resulting message into the
// status table. Status publishes happen after mu is released, same as
// everywhere else in the package.
func (q *Queue) refreshCountdowns() {
	q.mu.Lock()
	now := q.clock()

	type pendingMsg struct {
		taskID  int64
		message string
	}
	var pending []pendingMsg

	for _, rec := range q.tasks {
		if rec.active {
			continue
		}

		paused := rec.task.Paused()
		remaining := rec.nextRun.Sub(now)
		if remaining < 0 {
			remaining = 0
		}
		secs := int64(remaining / time.Second)

		var msg string
		switch {
		case paused:
			msg = "Paused."
		case secs == 0:
			msg = "Waiting for thread."
		default:
			msg = rec.task.TimeoutMessage() + strconv.FormatInt(secs, 10)
		}
		pending = append(pending, pendingMsg{rec.task.TaskID(), msg})
	}
	q.mu.Unlock()

	for _, p := range pending {
		if updated, ok := q.status.setMessage(p.taskID, p.message); ok {
			q.observers.notify(updated)
		}
	}
}

// wakeAdmin asks the admin goroutine to refresh countdowns immediately
// rather than waiting for its next tick, used after operations (pause,
// cancel) that make the currently displayed messages stale right away.
// It never blocks: a pending wake already in the channel is enough.
func (q *Queue) wakeAdmin() {
	select {
	case q.adminWake <- struct{}{}:
	default:
	}
}
