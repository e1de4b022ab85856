package sync

import (
	"context"
	"log/slog"
	stdsync "sync"
	"time"

	"github.com/betterpursue/sproom/internal/application/projections"
	"github.com/betterpursue/sproom/internal/domain/activity"
	"github.com/betterpursue/sproom/internal/domain/registration"
)

// DefaultWakeDebounce is the delay between a wake signal and the refresh it
// triggers, so a burst of signals collapses to one request pair.
const DefaultWakeDebounce = time.Second

// Fetcher reads the two authoritative source lists from the backend.
type Fetcher interface {
	ListActivities(ctx context.Context) ([]activity.Activity, error)
	MyRegistrations(ctx context.Context) ([]registration.Registration, error)
}

// SnapshotSink persists the refreshed lists for offline reads. Persistence
// failures are logged, never surfaced; the in-memory snapshot is already
// current.
type SnapshotSink interface {
	SaveSnapshot(ctx context.Context, activities []activity.Activity, mine []registration.Registration) error
}

// Notifier surfaces a refresh failure to the user. Only user-initiated
// refreshes report; background failures are swallowed and retried by the
// next trigger.
type Notifier interface {
	Error(message string)
}

// Snapshot is the client's current view of the remote state: both source
// lists, replaced wholesale per refresh, and the statuses derived from them.
// Slices are shared read-only; callers must not mutate them.
type Snapshot struct {
	Activities      []activity.Activity
	MyRegistrations []registration.Registration
	Statuses        map[int64]projections.Status
	RefreshedAt     time.Time
}

// Options configures a Coordinator. Zero values get defaults; Sink,
// Notifier and OnChange may stay nil.
type Options struct {
	Sink     SnapshotSink
	Notifier Notifier
	Debounce time.Duration
	Now      func() time.Time
	// OnChange runs after each successful refresh with the new snapshot,
	// outside the coordinator lock.
	OnChange func(Snapshot)
}

// Coordinator owns the refresh cycle. A module-scoped re-entrancy flag
// collapses overlapping refreshes into one effective fetch; a generation
// counter discards results from cycles superseded by Close.
type Coordinator struct {
	fetcher Fetcher
	sink    SnapshotSink
	notify  Notifier
	now     func() time.Time
	onChng  func(Snapshot)

	mu         stdsync.Mutex
	snapshot   Snapshot
	refreshing bool
	generation uint64
	closed     bool

	debounce  time.Duration
	timerMu   stdsync.Mutex
	wakeTimer *time.Timer
}

// NewCoordinator creates a Coordinator around the given fetcher.
func NewCoordinator(fetcher Fetcher, opts Options) *Coordinator {
	c := &Coordinator{
		fetcher:  fetcher,
		sink:     opts.Sink,
		notify:   opts.Notifier,
		now:      opts.Now,
		onChng:   opts.OnChange,
		debounce: opts.Debounce,
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.debounce <= 0 {
		c.debounce = DefaultWakeDebounce
	}
	return c
}

// Snapshot returns the current view. The zero Snapshot means no refresh has
// completed yet.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// Refresh re-fetches both source lists concurrently and replaces the
// snapshot wholesale. When a refresh is already running the call is a no-op:
// the second caller observes the first's result via the next read.
// surfaceErrors marks a user-initiated refresh whose failure must be shown;
// background failures are only logged.
// POST: On success the snapshot holds both new lists, recomputed statuses,
// and cancelled/deleted activities are filtered from the visible list
func (c *Coordinator) Refresh(ctx context.Context, surfaceErrors bool) error {
	c.mu.Lock()
	if c.closed || c.refreshing {
		c.mu.Unlock()
		return nil
	}
	c.refreshing = true
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	var (
		wg          stdsync.WaitGroup
		activities  []activity.Activity
		mine        []registration.Registration
		actErr      error
		regErr      error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		activities, actErr = c.fetcher.ListActivities(ctx)
	}()
	go func() {
		defer wg.Done()
		mine, regErr = c.fetcher.MyRegistrations(ctx)
	}()
	wg.Wait()

	err := actErr
	if err == nil {
		err = regErr
	}

	c.mu.Lock()
	c.refreshing = false
	if c.closed || gen != c.generation {
		// A stale cycle: the coordinator moved on while we were fetching.
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		notify := c.notify
		c.mu.Unlock()
		slog.Error("refresh_failed", "error", err, "user_initiated", surfaceErrors)
		if surfaceErrors && notify != nil {
			notify.Error("failed to refresh activities, please try again")
		}
		return err
	}

	visible := projections.FilterVisible(activities)
	snap := Snapshot{
		Activities:      visible,
		MyRegistrations: mine,
		Statuses:        projections.ComputeStatuses(visible, mine),
		RefreshedAt:     c.now(),
	}
	c.snapshot = snap
	onChange := c.onChng
	c.mu.Unlock()

	slog.Debug("refresh_complete", "activities", len(visible), "registrations", len(mine))

	if c.sink != nil {
		if saveErr := c.sink.SaveSnapshot(ctx, visible, mine); saveErr != nil {
			slog.Warn("snapshot_persist_failed", "error", saveErr)
		}
	}
	if onChange != nil {
		onChange(snap)
	}
	return nil
}

// SetOnChange replaces the post-refresh callback. Takes effect from the next
// completed refresh.
func (c *Coordinator) SetOnChange(fn func(Snapshot)) {
	c.mu.Lock()
	c.onChng = fn
	c.mu.Unlock()
}

// SetNotifier replaces the refresh-failure notifier. The watch daemon swaps
// in a log-backed one since nobody is reading the terminal.
func (c *Coordinator) SetNotifier(n Notifier) {
	c.mu.Lock()
	c.notify = n
	c.mu.Unlock()
}

// RemoveRegistration optimistically drops one registration from the local
// list and recomputes statuses. Registrations are never fabricated locally,
// and the caller's follow-up refresh reconciles with the backend either way.
func (c *Coordinator) RemoveRegistration(registrationID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := make([]registration.Registration, 0, len(c.snapshot.MyRegistrations))
	for _, r := range c.snapshot.MyRegistrations {
		if r.ID != registrationID {
			kept = append(kept, r)
		}
	}
	c.snapshot.MyRegistrations = kept
	c.snapshot.Statuses = projections.ComputeStatuses(c.snapshot.Activities, kept)
}

// Wake schedules a debounced background refresh. Each new signal cancels any
// pending one and reschedules, so rapid flickering (the tab-visibility storm
// case) costs one request pair at most.
func (c *Coordinator) Wake() {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()
	if c.wakeTimer != nil {
		c.wakeTimer.Stop()
	}
	c.wakeTimer = time.AfterFunc(c.debounce, func() {
		// Ignore the error: background refresh failures are retried by the
		// next trigger.
		_ = c.Refresh(context.Background(), false)
	})
}

// Close stops the wake timer and marks the coordinator closed. In-flight
// refreshes finish their network calls but their results are discarded, so
// a slow fetch can never clobber state after the consuming view is gone.
func (c *Coordinator) Close() {
	c.timerMu.Lock()
	if c.wakeTimer != nil {
		c.wakeTimer.Stop()
		c.wakeTimer = nil
	}
	c.timerMu.Unlock()

	c.mu.Lock()
	c.closed = true
	c.generation++
	c.mu.Unlock()
}
