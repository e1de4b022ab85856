package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/betterpursue/sproom/internal/adapters/gateway"
	"github.com/betterpursue/sproom/internal/domain/account"
	"github.com/betterpursue/sproom/internal/domain/activity"
)

// Admin activity errors
var (
	ErrNotAdmin        = errors.New("admin role required")
	ErrEmptyName       = errors.New("activity name is required")
	ErrInvalidWindow   = errors.New("end time must be after start time")
	ErrInvalidCapacity = errors.New("max participants must be positive when set")
)

// ActivityAdminGateway covers the admin-only activity CRUD endpoints.
type ActivityAdminGateway interface {
	CreateActivity(ctx context.Context, input gateway.ActivityInput) (activity.Activity, error)
	UpdateActivity(ctx context.Context, id int64, input gateway.ActivityInput) (activity.Activity, error)
	DeleteActivity(ctx context.Context, id int64) error
}

// SaveActivityInput carries the admin-editable fields for create and update.
type SaveActivityInput struct {
	ActivityID int64 // 0 for create
	Fields     gateway.ActivityInput
}

// SaveActivityDeps holds dependencies for the activity CRUD orchestrators.
type SaveActivityDeps struct {
	Gateway   ActivityAdminGateway
	Refresher Refresher
	Notifier  Notifier
	Session   *account.Session
}

// ExecuteSaveActivity creates or updates an activity (admin only). The
// backend enforces authorization authoritatively; the role check here only
// skips a request certain to fail.
// POST: On success the local lists are re-fetched
func ExecuteSaveActivity(ctx context.Context, input SaveActivityInput, deps SaveActivityDeps) (activity.Activity, error) {
	if err := requireAdmin(deps.Session, deps.Notifier); err != nil {
		return activity.Activity{}, err
	}
	input.Fields.Name = strings.TrimSpace(input.Fields.Name)
	if input.Fields.Name == "" {
		deps.Notifier.Error("activity name is required")
		return activity.Activity{}, ErrEmptyName
	}
	if !input.Fields.StartTime.IsZero() && !input.Fields.EndTime.After(input.Fields.StartTime) {
		deps.Notifier.Error("end time must be after start time")
		return activity.Activity{}, ErrInvalidWindow
	}
	if input.Fields.MaxParticipants != nil && *input.Fields.MaxParticipants <= 0 {
		deps.Notifier.Error("max participants must be positive, or unset for unlimited")
		return activity.Activity{}, ErrInvalidCapacity
	}

	var (
		saved activity.Activity
		err   error
	)
	if input.ActivityID > 0 {
		saved, err = deps.Gateway.UpdateActivity(ctx, input.ActivityID, input.Fields)
	} else {
		saved, err = deps.Gateway.CreateActivity(ctx, input.Fields)
	}
	if err != nil {
		deps.Notifier.Error(gateway.MessageOf(err, "failed to save activity"))
		slog.Error("activity_save_failed", "activity_id", input.ActivityID, "error", err)
		return activity.Activity{}, err
	}

	if refreshErr := deps.Refresher.Refresh(ctx, false); refreshErr != nil {
		slog.Warn("post_save_refresh_failed", "error", refreshErr)
	}
	deps.Notifier.Success("activity saved")
	return saved, nil
}

// DeleteActivityDeps holds dependencies for DeleteActivity.
type DeleteActivityDeps struct {
	Gateway   ActivityAdminGateway
	Refresher Refresher
	Notifier  Notifier
	Confirmer Confirmer
	Session   *account.Session
}

// ExecuteDeleteActivity deletes an activity (admin only) after confirmation.
// POST: On success the local lists are re-fetched
func ExecuteDeleteActivity(ctx context.Context, activityID int64, deps DeleteActivityDeps) error {
	if err := requireAdmin(deps.Session, deps.Notifier); err != nil {
		return err
	}
	if activityID <= 0 {
		deps.Notifier.Error("invalid activity")
		return ErrInvalidActivityID
	}
	if !deps.Confirmer.Confirm("delete this activity?") {
		return nil
	}

	if err := deps.Gateway.DeleteActivity(ctx, activityID); err != nil {
		deps.Notifier.Error(gateway.MessageOf(err, "failed to delete activity"))
		slog.Error("activity_delete_failed", "activity_id", activityID, "error", err)
		return err
	}

	if refreshErr := deps.Refresher.Refresh(ctx, false); refreshErr != nil {
		slog.Warn("post_delete_refresh_failed", "error", refreshErr)
	}
	deps.Notifier.Success("activity deleted")
	return nil
}

func requireAdmin(sess *account.Session, notify Notifier) error {
	if sess == nil || sess.Validate() != nil {
		notify.Error("please sign in first")
		return ErrNotSignedIn
	}
	if !sess.User.IsAdmin() {
		notify.Error("admin role required")
		return ErrNotAdmin
	}
	return nil
}
