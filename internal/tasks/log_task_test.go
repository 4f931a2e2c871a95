package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercadolabs/taskqueue/internal/logger"
	"github.com/mercadolabs/taskqueue/internal/taskqueue"
)

func init() {
	logger.Init("error", false)
}

func TestLogTask_OneShot(t *testing.T) {
	lt := NewLogTask(1, 0, "hello", 0)

	assert.Equal(t, int64(1), lt.TaskID())
	assert.Equal(t, int64(0), lt.TimeoutMS())
	assert.False(t, lt.Paused())

	result := lt.PerformTask()
	assert.Equal(t, taskqueue.RunAgainNo, result)
	assert.Contains(t, lt.TaskStatus().Message, "hello (run 1)")
}

func TestLogTask_RepeatLimit(t *testing.T) {
	lt := NewLogTask(2, 10, "tick", 3)

	require.Equal(t, taskqueue.RunAgainYes, lt.PerformTask())
	require.Equal(t, taskqueue.RunAgainYes, lt.PerformTask())
	require.Equal(t, taskqueue.RunAgainNo, lt.PerformTask())
}

func TestLogTask_CancelStopsRepeat(t *testing.T) {
	lt := NewLogTask(3, 10, "tick", 0)

	lt.CancelTask()
	assert.Equal(t, taskqueue.RunAgainNo, lt.PerformTask())
}

func TestLogTask_PauseToggle(t *testing.T) {
	lt := NewLogTask(4, 10, "tick", 0)

	lt.SetPaused(true)
	assert.True(t, lt.Paused())
	lt.SetPaused(false)
	assert.False(t, lt.Paused())
}

func TestLogTask_StatusChangedCallback(t *testing.T) {
	lt := NewLogTask(5, 0, "callback-test", 0)

	var received taskqueue.Status
	lt.SetStatusChangedCallback(func(s taskqueue.Status) {
		received = s
	})

	lt.PerformTask()

	require.Eventually(t, func() bool {
		return received.TaskID == 5
	}, time.Second, 10*time.Millisecond)
}

func TestLogTask_SetTaskQueue(t *testing.T) {
	q := taskqueue.New("log-task-test", 1)
	defer q.Close()

	lt := NewLogTask(6, 0, "q", 0)
	lt.SetTaskQueue(q)
	assert.Equal(t, q, lt.queue)
}
