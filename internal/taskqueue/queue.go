package taskqueue

import (
	"fmt"
	"sync"
	"time"

	"github.com/mercadolabs/taskqueue/internal/logger"
	"github.com/mercadolabs/taskqueue/internal/metrics"
)

// indefiniteWait stands in for the spec's INT64_MAX sentinel: "no record
// currently knows of an earlier wake-up than this".
const indefiniteWait = time.Duration(1<<63 - 1)

// Option configures a Queue at construction time. The zero-value Queue
// (threadName, nThreads) matches spec.md's constructor signature; options
// exist only for things the spec models as external collaborators (the
// clock) or implementation knobs it leaves to the platform (the admin
// tick period).
type Option func(*Queue)

// WithClock overrides the queue's time source. Tests use this to drive
// scheduling deterministically instead of sleeping.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) { q.clock = now }
}

// WithAdminTickInterval overrides the admin goroutine's default period.
func WithAdminTickInterval(d time.Duration) Option {
	return func(q *Queue) { q.adminTickInterval = d }
}

// Queue is an in-process, multi-threaded task queue: a bounded pool of
// worker goroutines that run caller-supplied Tasks, plus an admin
// goroutine that keeps countdown messages fresh. The zero value is not
// usable; construct one with New.
type Queue struct {
	threadName string
	clock      func() time.Time

	// mu is the primary lock. It guards tasks, byID, nextTaskIndex,
	// waitFor, workDone, finish, configured and live. cond's wait is
	// always entered and left with mu held.
	mu   sync.Mutex
	cond *sync.Cond

	tasks         []*record
	byID          map[int64]*record
	nextTaskIndex int
	waitFor       time.Duration
	workDone      bool
	finish        bool
	configured    int
	live          int

	workerWG sync.WaitGroup

	status    *statusTable
	observers *observerRegistry

	adminTickInterval time.Duration
	adminWake         chan struct{}
	adminDone         chan struct{}
	adminWG           sync.WaitGroup
}

// New constructs a Queue named threadName with nThreads worker
// goroutines already running, plus one admin goroutine. threadName is
// the label the queue's log lines and metrics carry: Go has no portable
// way to name an OS thread, so neither the workers nor the admin
// goroutine get an OS-visible name, and the admin goroutine's log lines
// carry the same queue name as the workers'.
func New(threadName string, nThreads int, opts ...Option) *Queue {
	q := &Queue{
		threadName:        threadName,
		clock:             time.Now,
		byID:              make(map[int64]*record),
		waitFor:           indefiniteWait,
		status:            newStatusTable(),
		observers:         newObserverRegistry(),
		adminTickInterval: time.Second,
		adminWake:         make(chan struct{}, 1),
		adminDone:         make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	for _, opt := range opts {
		opt(q)
	}

	if nThreads < 0 {
		nThreads = 0
	}
	q.mu.Lock()
	q.configured = nThreads
	for i := 0; i < nThreads; i++ {
		q.spawnWorkerLocked()
	}
	q.mu.Unlock()

	q.adminWG.Add(1)
	go q.adminLoop()

	metrics.SetWorkersConfigured(q.threadName, float64(nThreads))
	return q
}

// spawnWorkerLocked starts one worker goroutine. Callers must hold mu.
func (q *Queue) spawnWorkerLocked() {
	q.live++
	q.workerWG.Add(1)
	workerNum := q.live
	metrics.SetWorkersLive(q.threadName, float64(q.live))
	go q.workerLoop(workerNum)
}

// Close stops every worker and the admin goroutine, draining both
// before returning. It cancels every task still registered so
// in-flight PerformTask calls get a chance to notice and return
// RunAgainNo, but it does not wait for them beyond the normal sweep —
// a task that ignores CancelTask and blocks forever blocks Close too,
// matching spec.md §4.1's destructor contract.
func (q *Queue) Close() error {
	q.mu.Lock()
	q.finish = true
	for _, rec := range q.tasks {
		rec.task.CancelTask()
	}
	q.cond.Broadcast()
	q.mu.Unlock()

	q.workerWG.Wait()

	close(q.adminDone)
	q.adminWG.Wait()

	logger.WithQueue(q.threadName).Info().Msg("queue closed")
	return nil
}

// NumberOfTaskThreads returns the configured worker count.
func (q *Queue) NumberOfTaskThreads() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.configured
}

// SetNumberOfTaskThreads resizes the pool. Growing spawns new workers
// immediately; shrinking is cooperative — the excess workers notice on
// their next sweep and exit on their own, per spec.md §4.2's "a worker
// whose live count exceeds configured at the top of its loop retires
// itself" rule.
func (q *Queue) SetNumberOfTaskThreads(n int) {
	if n < 0 {
		n = 0
	}
	q.mu.Lock()
	q.configured = n
	for q.live < q.configured {
		q.spawnWorkerLocked()
	}
	q.cond.Broadcast()
	q.mu.Unlock()

	metrics.SetWorkersConfigured(q.threadName, float64(n))
}

// AddTask registers task with the queue. task keeps whatever paused
// flag it already has, is scheduled to run after its initial TimeoutMS
// delay (zero for a
// one-shot task due immediately), and wakes exactly one idle worker —
// addTask never needs more than one worker to notice, per spec.md §4.1.
//
// Submitting a task whose TaskID collides with one already live in the
// queue is a contract violation (spec.md §7 leaves this undefined at
// this layer); AddTask logs a warning and ignores the duplicate rather
// than corrupting the existing record.
func (q *Queue) AddTask(task Task) {
	id := task.TaskID()

	q.mu.Lock()
	if _, exists := q.byID[id]; exists {
		q.mu.Unlock()
		logger.WithQueue(q.threadName).Warn().
			Int64("task_id", id).
			Msg("duplicate task id ignored")
		return
	}

	task.SetTaskQueue(q)
	task.SetStatusChangedCallback(q.onTaskStatusChanged)

	rec := newRecord(task, q.clock())
	q.tasks = append(q.tasks, rec)
	q.byID[id] = rec
	pending := len(q.tasks)
	q.cond.Signal()
	q.mu.Unlock()

	initial := task.TaskStatus()
	initial.TaskID = id
	q.status.put(initial)
	q.observers.notify(initial)

	metrics.IncrementTasksSubmitted(q.threadName)
	metrics.SetTasksPending(q.threadName, float64(pending))
}

// CancelTask asks the task identified by taskID to retire. It is a
// no-op if taskID is not live in the queue. Cancellation is advisory:
// the task itself decides, via its own CancelTask, how quickly its next
// PerformTask call returns RunAgainNo. To give that next call a chance
// to happen promptly even for a task with a long remaining delay,
// CancelTask also pulls the record's nextRun forward to now before
// waking the pool — otherwise a task canceled minutes before it was
// next due would sit untouched until that original deadline arrived.
func (q *Queue) CancelTask(taskID int64) {
	q.mu.Lock()
	rec, ok := q.byID[taskID]
	if !ok {
		q.mu.Unlock()
		return
	}
	rec.nextRun = q.clock()
	q.mu.Unlock()

	rec.task.CancelTask()

	q.mu.Lock()
	q.cond.Broadcast()
	q.mu.Unlock()
	q.wakeAdmin()
}

// PauseTask sets taskID's paused flag. A paused task is skipped by
// every worker's sweep until resumed; the admin loop marks its message
// "Paused." in the meantime. No-op if taskID is not live.
func (q *Queue) PauseTask(taskID int64, paused bool) {
	q.mu.Lock()
	rec, ok := q.byID[taskID]
	if !ok {
		q.mu.Unlock()
		return
	}
	q.mu.Unlock()

	rec.task.SetPaused(paused)

	if updated, ok := q.status.setPaused(taskID, paused); ok {
		q.observers.notify(updated)
	}

	q.mu.Lock()
	q.cond.Broadcast()
	q.mu.Unlock()
	q.wakeAdmin()
}

// TogglePauseTask flips taskID's paused flag and returns the new value.
// The second return is false if taskID is not live.
func (q *Queue) TogglePauseTask(taskID int64) (paused bool, ok bool) {
	q.mu.Lock()
	rec, exists := q.byID[taskID]
	q.mu.Unlock()
	if !exists {
		return false, false
	}

	next := !rec.task.Paused()
	q.PauseTask(taskID, next)
	return next, true
}

// ViewTaskStatus invokes fn once with a consistent snapshot of every
// live task's status, keyed by TaskID. fn must not call back into the
// queue; it runs under the status table's read lock.
func (q *Queue) ViewTaskStatus(fn func(rows map[int64]Status)) {
	q.status.view(fn)
}

// AddStatusChangedCallback registers fn to be invoked after every
// status mutation, for as long as it stays registered. It returns a
// token to pass to RemoveStatusChangedCallback.
func (q *Queue) AddStatusChangedCallback(fn StatusObserverFunc) ObserverToken {
	return q.observers.add(fn)
}

// RemoveStatusChangedCallback unregisters a previously added observer.
// Removing an unknown or already-removed token is a silent no-op.
func (q *Queue) RemoveStatusChangedCallback(token ObserverToken) {
	q.observers.remove(token)
}

// onTaskStatusChanged is the StatusChangedFunc every task is handed at
// submission time. It re-stamps the incoming status with the next rev
// and fans it out to observers, all outside the primary lock.
func (q *Queue) onTaskStatusChanged(s Status) {
	if updated, ok := q.status.update(s); ok {
		q.observers.notify(updated)
	}
}

// workerLoop is one worker goroutine's lifetime: repeated sweeps of the
// task list, each sweep dispatching every due, unpaused, inactive
// record once before blocking until the earliest known wake-up.
func (q *Queue) workerLoop(workerNum int) {
	defer q.workerWG.Done()
	wlog := logger.WithWorker(workerNum).With().Str("queue", q.threadName).Logger()

	q.mu.Lock()
	for {
		if q.finish {
			q.live--
			metrics.SetWorkersLive(q.threadName, float64(q.live))
			q.mu.Unlock()
			return
		}
		if q.live > q.configured {
			q.live--
			metrics.SetWorkersLive(q.threadName, float64(q.live))
			wlog.Debug().Msg("worker retiring after pool shrink")
			q.mu.Unlock()
			return
		}

		if q.nextTaskIndex < len(q.tasks) {
			rec := q.tasks[q.nextTaskIndex]
			q.nextTaskIndex++

			if rec.active || rec.task.Paused() {
				continue
			}

			now := q.clock()
			delay := rec.nextRun.Sub(now)
			if delay < q.waitFor {
				q.waitFor = delay
			}
			if delay > 0 {
				continue
			}

			rec.active = true
			q.workDone = true
			q.mu.Unlock()

			start := q.clock()
			result, panicVal := q.runTask(rec.task)
			metrics.ObserveTaskDuration(q.threadName, q.clock().Sub(start).Seconds())

			q.mu.Lock()
			q.finalizeRunLocked(rec, result, panicVal)
			continue
		}

		// End of sweep: rewind the cursor and sleep for the shortest
		// delay any record reported, unless work happened this sweep.
		q.nextTaskIndex = 0
		w := q.waitFor
		q.waitFor = indefiniteWait
		if q.workDone {
			q.workDone = false
			continue
		}
		if w < 0 {
			w = 0
		}
		q.waitLocked(w)
	}
}

// runTask invokes task.PerformTask with no Queue lock held, recovering
// from a panic so one misbehaving task can never take a worker down.
// A recovered panic is reported back as (RunAgainNo, recovered value);
// finalizeRunLocked folds it into the task's final status.
func (q *Queue) runTask(task Task) (result RunAgain, panicVal any) {
	defer func() {
		if r := recover(); r != nil {
			panicVal = r
			result = RunAgainNo
		}
	}()
	return task.PerformTask(), nil
}

// finalizeRunLocked decides whether rec retires or reschedules, after
// one PerformTask call returned. Callers must hold mu; it is held
// throughout except for the final-status publish, which — like every
// status publish — happens with no Queue lock held.
func (q *Queue) finalizeRunLocked(rec *record, result RunAgain, panicVal any) {
	retire := rec.task.TimeoutMS() < 1 || result == RunAgainNo

	if !retire {
		rec.nextRun = q.clock().Add(msDuration(rec.task.TimeoutMS()))
		rec.active = false
		return
	}

	idx := -1
	for i, r := range q.tasks {
		if r == rec {
			idx = i
			break
		}
	}
	if idx >= 0 {
		q.tasks = append(q.tasks[:idx], q.tasks[idx+1:]...)
		if idx < q.nextTaskIndex {
			q.nextTaskIndex--
		}
	}
	delete(q.byID, rec.task.TaskID())
	pending := len(q.tasks)
	q.mu.Unlock()

	final := rec.task.TaskStatus()
	final.TaskID = rec.task.TaskID()
	final.Complete = true
	if panicVal != nil {
		final.Message = fmt.Sprintf("task panicked: %v", panicVal)
		logger.WithTask(rec.task.TaskID()).Error().
			Str("queue", q.threadName).
			Interface("panic", panicVal).
			Msg("task panicked, retiring")
	}
	if updated, ok := q.status.update(final); ok {
		q.observers.notify(updated)
	}
	q.status.remove(rec.task.TaskID())

	metrics.IncrementTasksRetired(q.threadName)
	metrics.SetTasksPending(q.threadName, float64(pending))

	q.mu.Lock()
}

// waitLocked blocks on cond for at most d, or indefinitely if d is
// indefiniteWait. Callers must hold mu; cond.Wait releases it while
// parked and reacquires it before returning, whichever wakes it first
// — another addTask/cancelTask/pause/resize signal, or this wait's own
// timer. sync.Cond has no built-in deadline, so a timed wait is
// synthesized with a timer that broadcasts after d elapses.
func (q *Queue) waitLocked(d time.Duration) {
	if d <= 0 {
		return
	}
	if d == indefiniteWait {
		q.cond.Wait()
		return
	}

	timer := time.AfterFunc(d, func() {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	q.cond.Wait()
	timer.Stop()
}
