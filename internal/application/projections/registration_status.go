package projections

import (
	"strings"

	"github.com/betterpursue/sproom/internal/domain/activity"
	"github.com/betterpursue/sproom/internal/domain/registration"
)

// Status is the derived, client-only registration state for one activity.
// It is recomputed from the two source lists and never persisted; it is
// invalid the instant either list changes.
type Status struct {
	IsRegistered bool
	IsFull       bool
	Status       string // PENDING, CONFIRMED, or "" when not registered
}

// ComputeStatuses derives the per-activity registration status from the two
// independently fetched source lists. Pure: no network, no side effects.
// It must be re-run wholesale whenever either list is replaced by a refresh,
// never patched incrementally.
// PRE: Both lists are read-only snapshots from the most recent refresh
// POST: Result has exactly one entry per activity in activities
func ComputeStatuses(activities []activity.Activity, mine []registration.Registration) map[int64]Status {
	// Index registrations by their resolved activity id first so a large
	// activity list does not rescan the registrations per entry.
	byActivity := make(map[int64]*registration.Registration, len(mine))
	for i := range mine {
		id, ok := mine[i].ResolveActivityID()
		if !ok {
			continue
		}
		if _, exists := byActivity[id]; !exists {
			byActivity[id] = &mine[i]
		}
	}

	statuses := make(map[int64]Status, len(activities))
	for i := range activities {
		a := &activities[i]
		st := Status{IsFull: a.IsFull()}
		if match, ok := byActivity[a.ID]; ok {
			st.IsRegistered = true
			st.Status = match.Status
		}
		statuses[a.ID] = st
	}
	return statuses
}

// FilterVisible drops activities in a terminal lifecycle state (cancelled,
// deleted) from the list shown to the user.
// POST: Returns a new slice; the input is not mutated
func FilterVisible(activities []activity.Activity) []activity.Activity {
	visible := make([]activity.Activity, 0, len(activities))
	for _, a := range activities {
		if a.Visible() {
			visible = append(visible, a)
		}
	}
	return visible
}

// SearchActivities filters the cached list by a case-insensitive match on
// name, description or location, mirroring the listing page's search box.
// An empty term returns the list unchanged.
func SearchActivities(activities []activity.Activity, term string) []activity.Activity {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return activities
	}
	matched := make([]activity.Activity, 0, len(activities))
	for _, a := range activities {
		if strings.Contains(strings.ToLower(a.Name), term) ||
			strings.Contains(strings.ToLower(a.Description), term) ||
			strings.Contains(strings.ToLower(a.Location), term) {
			matched = append(matched, a)
		}
	}
	return matched
}
