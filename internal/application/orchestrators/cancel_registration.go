package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"github.com/betterpursue/sproom/internal/adapters/gateway"
	"github.com/betterpursue/sproom/internal/domain/account"
	"github.com/betterpursue/sproom/internal/domain/registration"
)

// Cancel precondition errors.
var (
	ErrConfirmedLocked = errors.New("confirmed registrations cannot be cancelled")
	ErrNotOwner        = errors.New("registration belongs to another user")
)

// CancelGateway is the mutation surface ExecuteCancelRegistration needs.
type CancelGateway interface {
	DeleteRegistration(ctx context.Context, registrationID int64) error
}

// LocalRemover drops one registration from the local list ahead of the
// reconciling refresh. Removal is the only optimistic local patch the client
// ever makes.
type LocalRemover interface {
	RemoveRegistration(registrationID int64)
}

// CancelRegistrationInput carries input for the orchestrator.
type CancelRegistrationInput struct {
	ActivityID int64
}

// CancelRegistrationDeps holds dependencies for CancelRegistration.
type CancelRegistrationDeps struct {
	Gateway   CancelGateway
	Guard     ProcessingGuard
	View      StatusView
	Refresher Refresher
	Remover   LocalRemover
	Notifier  Notifier
	Confirmer Confirmer
	Session   *account.Session
	// OnSessionExpired schedules the delayed return to the sign-in flow when
	// the cancel fails with an expired session. May be nil.
	OnSessionExpired func()
}

// ExecuteCancelRegistration cancels the current user's registration for an
// activity after an explicit confirmation. Confirmed registrations are
// immutable to the end user; ownership is checked locally as defense in
// depth even though the backend also enforces it.
// PRE: Deps are populated; View holds the most recent snapshot
// POST: The processing mark for the activity is cleared on every exit path
func ExecuteCancelRegistration(ctx context.Context, input CancelRegistrationInput, deps CancelRegistrationDeps) error {
	if deps.Session == nil || deps.Session.Validate() != nil {
		deps.Notifier.Error("please sign in first")
		return ErrNotSignedIn
	}
	if input.ActivityID <= 0 {
		deps.Notifier.Error("invalid activity")
		return ErrInvalidActivityID
	}

	snap := deps.View.Snapshot()
	match := findRegistrationForActivity(snap.MyRegistrations, input.ActivityID)
	if match == nil {
		// Informational no-op, distinct from the confirmed case below.
		deps.Notifier.Info("not registered for this activity")
		return nil
	}
	if match.Status == registration.StatusConfirmed {
		deps.Notifier.Error("registration is confirmed and can no longer be cancelled")
		return ErrConfirmedLocked
	}
	if match.UserID != 0 && match.UserID != deps.Session.User.ID {
		deps.Notifier.Error("this registration does not belong to you")
		return ErrNotOwner
	}
	if !deps.Confirmer.Confirm("cancel this registration?") {
		return nil
	}

	if !deps.Guard.Begin(input.ActivityID) {
		slog.Debug("cancel_skipped_in_flight", "activity_id", input.ActivityID)
		return nil
	}
	defer deps.Guard.End(input.ActivityID)

	err := deps.Gateway.DeleteRegistration(ctx, match.ID)
	if err == nil && deps.Remover != nil {
		deps.Remover.RemoveRegistration(match.ID)
	}

	// Re-fetch regardless of outcome; the refresh also reconciles the
	// optimistic removal above.
	if refreshErr := deps.Refresher.Refresh(ctx, false); refreshErr != nil {
		slog.Warn("post_cancel_refresh_failed", "activity_id", input.ActivityID, "error", refreshErr)
	}

	if err != nil {
		kind := gateway.KindOf(err)
		switch kind {
		case gateway.KindSessionExpired:
			deps.Notifier.Error("session expired, please sign in again")
			if deps.OnSessionExpired != nil {
				deps.OnSessionExpired()
			}
		case gateway.KindForbidden:
			deps.Notifier.Error(gateway.MessageOf(err, "this registration does not belong to you"))
		case gateway.KindNotFound:
			deps.Notifier.Error(gateway.MessageOf(err, "registration not found"))
		default:
			deps.Notifier.Error(gateway.MessageOf(err, "cancellation failed, please try again"))
		}
		slog.Error("cancel_failed", "activity_id", input.ActivityID, "registration_id", match.ID, "kind", string(kind), "error", err)
		return err
	}

	deps.Notifier.Success("registration cancelled")
	return nil
}

func findRegistrationForActivity(regs []registration.Registration, activityID int64) *registration.Registration {
	for i := range regs {
		if id, ok := regs[i].ResolveActivityID(); ok && id == activityID {
			return &regs[i]
		}
	}
	return nil
}
