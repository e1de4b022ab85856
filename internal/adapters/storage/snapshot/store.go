// Package snapshot persists the last successfully fetched activity and
// registration lists so the CLI can show something useful offline.
package snapshot

import (
	"context"
	"time"

	"github.com/betterpursue/sproom/internal/domain/activity"
	"github.com/betterpursue/sproom/internal/domain/registration"
)

// Cached is a snapshot loaded from local storage.
type Cached struct {
	Activities      []activity.Activity
	MyRegistrations []registration.Registration
	RefreshedAt     time.Time
}

// Store persists snapshots. Each save replaces the previous one wholesale.
type Store interface {
	SaveSnapshot(ctx context.Context, activities []activity.Activity, mine []registration.Registration) error
	Load(ctx context.Context) (Cached, error)
}
