// Package orchestrators coordinates the client's operations against the
// backend gateway: registration mutations, auth and profile flows, and the
// admin surface. Every orchestrator is an Execute function taking its
// dependencies as narrow interfaces so tests can run against in-memory
// fakes.
package orchestrators

import (
	"context"

	appsync "github.com/betterpursue/sproom/internal/application/sync"
)

// Notifier presents transient user-facing messages, the toast analog.
type Notifier interface {
	Success(message string)
	Info(message string)
	Error(message string)
}

// ProcessingGuard is the per-activity in-flight mutation guard.
type ProcessingGuard interface {
	Begin(id int64) bool
	End(id int64)
}

// StatusView reads the current local view of activities and registrations.
type StatusView interface {
	Snapshot() appsync.Snapshot
}

// Refresher triggers a re-fetch of both source lists. Mutations call it
// unconditionally after completion: a failed mutation may still have
// partially applied server-side, and re-fetching is the only way to learn
// the truth.
type Refresher interface {
	Refresh(ctx context.Context, surfaceErrors bool) error
}

// Confirmer asks the user to approve a destructive action before it runs.
type Confirmer interface {
	Confirm(prompt string) bool
}
