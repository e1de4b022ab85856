// Package sync keeps the client's view of registration state consistent with
// the backend: a per-activity in-flight mutation guard and the debounced,
// re-entrancy-guarded refresh coordinator.
package sync

import "sync"

// Tracker is the processing set: activity ids with a register or cancel
// round-trip currently in flight. It enforces at most one concurrent
// mutation per activity per client.
type Tracker struct {
	mu  sync.Mutex
	ids map[int64]struct{}
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{ids: make(map[int64]struct{})}
}

// Begin marks the activity as processing. Returns false when a mutation for
// this id is already in flight; the caller must no-op without touching the
// network.
func (t *Tracker) Begin(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, busy := t.ids[id]; busy {
		return false
	}
	t.ids[id] = struct{}{}
	return true
}

// End clears the processing mark. Callers run it from a deferred path so the
// mark is removed on every exit, success or not; an activity can never wedge
// in processing.
func (t *Tracker) End(id int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.ids, id)
}

// Processing reports whether a mutation for the activity is in flight.
// Rendering uses it to disable or relabel the action control.
func (t *Tracker) Processing(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, busy := t.ids[id]
	return busy
}
