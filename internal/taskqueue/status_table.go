package taskqueue

import "sync"

// statusTable is the observable snapshot of per-task state. It is
// guarded by its own mutex, independent of the primary scheduling lock,
// per spec.md §5's lock-ordering rule (primary -> status -> observer).
type statusTable struct {
	mu   sync.RWMutex
	rows map[int64]*Status
}

func newStatusTable() *statusTable {
	return &statusTable{rows: make(map[int64]*Status)}
}

// put inserts or replaces a row wholesale, used when a task is first
// added to the queue. The rev counter starts at zero.
func (t *statusTable) put(s Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s.Rev = 0
	row := s.clone()
	t.rows[s.TaskID] = &row
}

// update re-stamps an incoming status with the next rev for its taskID
// and stores it, preserving the invariant that rev is strictly
// non-decreasing per taskID (spec.md §3). It is a no-op if the taskID
// was already removed (e.g. a task pushes a status update after its
// record retired — a race the spec tolerates as benign), reported via
// the second return.
func (t *statusTable) update(s Status) (Status, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	existing, ok := t.rows[s.TaskID]
	if !ok {
		return Status{}, false
	}
	s.Rev = existing.Rev + 1
	row := s.clone()
	t.rows[s.TaskID] = &row
	return row.clone(), true
}

// setMessage rewrites only the message field of an existing row,
// bumping rev, used by the admin ticker to refresh countdown text.
// The second return is false if the row no longer exists or the
// message is unchanged (no rev bump, no notification needed).
func (t *statusTable) setMessage(taskID int64, message string) (Status, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	existing, ok := t.rows[taskID]
	if !ok || existing.Message == message {
		return Status{}, false
	}
	row := *existing
	row.Message = message
	row.Rev = existing.Rev + 1
	t.rows[taskID] = &row
	return row.clone(), true
}

// setPaused mirrors a task's paused flag into its status row.
func (t *statusTable) setPaused(taskID int64, paused bool) (Status, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	existing, ok := t.rows[taskID]
	if !ok || existing.Paused == paused {
		return Status{}, false
	}
	row := *existing
	row.Paused = paused
	row.Rev = existing.Rev + 1
	t.rows[taskID] = &row
	return row.clone(), true
}

// remove deletes a row, used when a record retires.
func (t *statusTable) remove(taskID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.rows, taskID)
}

// get returns a copy of one row.
func (t *statusTable) get(taskID int64) (Status, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[taskID]
	if !ok {
		return Status{}, false
	}
	return row.clone(), true
}

// view invokes fn with a consistent snapshot of every row while holding
// the status lock for reads, matching spec.md §4.1's viewTaskStatus
// contract: fn must not call back into the queue.
func (t *statusTable) view(fn func(rows map[int64]Status)) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snapshot := make(map[int64]Status, len(t.rows))
	for id, row := range t.rows {
		snapshot[id] = row.clone()
	}
	fn(snapshot)
}
