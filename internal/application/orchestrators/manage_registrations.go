package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"github.com/betterpursue/sproom/internal/adapters/gateway"
	"github.com/betterpursue/sproom/internal/domain/account"
	"github.com/betterpursue/sproom/internal/domain/registration"
)

var ErrInvalidStatus = errors.New("status must be PENDING or CONFIRMED")

// RegistrationAdminGateway covers the admin-only registration endpoints.
type RegistrationAdminGateway interface {
	ActivityRegistrations(ctx context.Context, activityID int64) ([]registration.Registration, error)
	UpdateRegistrationStatus(ctx context.Context, registrationID int64, status string) error
	DeleteRegistration(ctx context.Context, registrationID int64) error
}

// RegistrationAdminDeps holds dependencies for the admin registration orchestrators.
type RegistrationAdminDeps struct {
	Gateway   RegistrationAdminGateway
	Refresher Refresher
	Notifier  Notifier
	Confirmer Confirmer
	Session   *account.Session
}

// ExecuteListActivityRegistrations fetches all registrations for one activity
// (admin only).
func ExecuteListActivityRegistrations(ctx context.Context, activityID int64, deps RegistrationAdminDeps) ([]registration.Registration, error) {
	if err := requireAdmin(deps.Session, deps.Notifier); err != nil {
		return nil, err
	}
	if activityID <= 0 {
		deps.Notifier.Error("invalid activity")
		return nil, ErrInvalidActivityID
	}
	regs, err := deps.Gateway.ActivityRegistrations(ctx, activityID)
	if err != nil {
		deps.Notifier.Error(gateway.MessageOf(err, "failed to load registrations"))
		return nil, err
	}
	return regs, nil
}

// ExecuteSetRegistrationStatus moves a registration between PENDING and
// CONFIRMED (admin only).
// POST: On success the local lists are re-fetched
func ExecuteSetRegistrationStatus(ctx context.Context, registrationID int64, status string, deps RegistrationAdminDeps) error {
	if err := requireAdmin(deps.Session, deps.Notifier); err != nil {
		return err
	}
	if registrationID <= 0 {
		deps.Notifier.Error("invalid registration")
		return ErrInvalidActivityID
	}
	if status != registration.StatusPending && status != registration.StatusConfirmed {
		deps.Notifier.Error("status must be PENDING or CONFIRMED")
		return ErrInvalidStatus
	}

	if err := deps.Gateway.UpdateRegistrationStatus(ctx, registrationID, status); err != nil {
		deps.Notifier.Error(gateway.MessageOf(err, "failed to update registration status"))
		slog.Error("registration_status_update_failed", "registration_id", registrationID, "status", status, "error", err)
		return err
	}

	if refreshErr := deps.Refresher.Refresh(ctx, false); refreshErr != nil {
		slog.Warn("post_status_update_refresh_failed", "error", refreshErr)
	}
	deps.Notifier.Success("registration status updated")
	return nil
}

// ExecuteRemoveRegistration removes another user's registration (admin only)
// after confirmation.
// POST: On success the local lists are re-fetched
func ExecuteRemoveRegistration(ctx context.Context, registrationID int64, deps RegistrationAdminDeps) error {
	if err := requireAdmin(deps.Session, deps.Notifier); err != nil {
		return err
	}
	if registrationID <= 0 {
		deps.Notifier.Error("invalid registration")
		return ErrInvalidActivityID
	}
	if !deps.Confirmer.Confirm("remove this registration?") {
		return nil
	}

	if err := deps.Gateway.DeleteRegistration(ctx, registrationID); err != nil {
		deps.Notifier.Error(gateway.MessageOf(err, "failed to remove registration"))
		slog.Error("registration_remove_failed", "registration_id", registrationID, "error", err)
		return err
	}

	if refreshErr := deps.Refresher.Refresh(ctx, false); refreshErr != nil {
		slog.Warn("post_remove_refresh_failed", "error", refreshErr)
	}
	deps.Notifier.Success("registration removed")
	return nil
}
