package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"github.com/betterpursue/sproom/internal/adapters/gateway"
	"github.com/betterpursue/sproom/internal/domain/account"
	"github.com/betterpursue/sproom/internal/domain/activity"
	"github.com/betterpursue/sproom/internal/domain/registration"
)

// Precondition errors shared by the registration mutations.
var (
	ErrNotSignedIn       = errors.New("not signed in")
	ErrInvalidActivityID = errors.New("activity id must be a positive integer")
	ErrActivityNotOpen   = errors.New("activity is not open for registration")
)

// RegisterGateway is the mutation surface ExecuteRegisterActivity needs.
type RegisterGateway interface {
	CreateRegistration(ctx context.Context, activityID int64) (registration.Registration, error)
}

// RegisterActivityInput carries input for the orchestrator.
type RegisterActivityInput struct {
	ActivityID int64
}

// RegisterActivityDeps holds dependencies for RegisterActivity.
type RegisterActivityDeps struct {
	Gateway   RegisterGateway
	Guard     ProcessingGuard
	View      StatusView
	Refresher Refresher
	Notifier  Notifier
	Session   *account.Session // nil when signed out
}

// ExecuteRegisterActivity registers the current user for an activity.
// Preconditions are checked against the local cache before any network call,
// each with its own user-facing message; on any terminal outcome after the
// gateway call the source lists are re-fetched.
// PRE: Deps are populated; View holds the most recent snapshot
// POST: The processing mark for the activity is cleared on every exit path
// INVARIANT: At most one register-or-cancel round-trip per activity is in flight
func ExecuteRegisterActivity(ctx context.Context, input RegisterActivityInput, deps RegisterActivityDeps) error {
	if deps.Session == nil || deps.Session.Validate() != nil {
		deps.Notifier.Error("please sign in first")
		return ErrNotSignedIn
	}
	if input.ActivityID <= 0 {
		deps.Notifier.Error("invalid activity")
		return ErrInvalidActivityID
	}

	snap := deps.View.Snapshot()
	if st, ok := snap.Statuses[input.ActivityID]; ok {
		if st.IsRegistered {
			// Informational no-op, not an error.
			deps.Notifier.Info("already registered for this activity")
			return nil
		}
		if st.IsFull {
			deps.Notifier.Error("activity is full")
			return ErrActivityNotOpen
		}
	}
	if target := findActivity(snap.Activities, input.ActivityID); target != nil && target.Status != "" && target.Status != activity.StatusOpen {
		deps.Notifier.Error(notOpenMessage(target.Status))
		return ErrActivityNotOpen
	}

	if !deps.Guard.Begin(input.ActivityID) {
		slog.Debug("register_skipped_in_flight", "activity_id", input.ActivityID)
		return nil
	}
	defer deps.Guard.End(input.ActivityID)

	_, err := deps.Gateway.CreateRegistration(ctx, input.ActivityID)

	// Re-fetch regardless of outcome: a failed response does not prove the
	// registration was not created server-side.
	if refreshErr := deps.Refresher.Refresh(ctx, false); refreshErr != nil {
		slog.Warn("post_register_refresh_failed", "activity_id", input.ActivityID, "error", refreshErr)
	}

	if err != nil {
		switch gateway.KindOf(err) {
		case gateway.KindConflict:
			deps.Notifier.Info("already registered for this activity")
			return nil
		case gateway.KindCapacityExceeded:
			deps.Notifier.Error(gateway.MessageOf(err, "activity is full"))
		case gateway.KindSessionExpired:
			deps.Notifier.Error("session expired, please sign in again")
		default:
			deps.Notifier.Error(gateway.MessageOf(err, "registration failed, please try again"))
		}
		slog.Error("register_failed", "activity_id", input.ActivityID, "kind", string(gateway.KindOf(err)), "error", err)
		return err
	}

	deps.Notifier.Success("registration submitted")
	return nil
}

func findActivity(activities []activity.Activity, id int64) *activity.Activity {
	for i := range activities {
		if activities[i].ID == id {
			return &activities[i]
		}
	}
	return nil
}

// notOpenMessage maps a non-open lifecycle status to its user-facing reason.
func notOpenMessage(status string) string {
	switch status {
	case activity.StatusClosed:
		return "registration for this activity has closed"
	case activity.StatusCancelled:
		return "this activity has been cancelled"
	case activity.StatusFull:
		return "activity is full"
	case activity.StatusDraft:
		return "this activity is not open for registration yet"
	default:
		return "this activity is not accepting registrations"
	}
}
