package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/betterpursue/sproom/internal/adapters/gateway"
	"github.com/betterpursue/sproom/internal/domain/account"
)

// ProfileGateway covers the profile endpoints.
type ProfileGateway interface {
	CurrentUser(ctx context.Context) (account.User, error)
	UpdateProfile(ctx context.Context, update gateway.ProfileUpdate) (account.User, error)
}

// QueryProfileDeps holds dependencies for QueryProfile.
type QueryProfileDeps struct {
	Gateway  ProfileGateway
	Sessions SessionStore
	Session  *account.Session
}

// QueryProfile fetches the authenticated user's current profile from the
// backend and keeps the persisted session's user copy in step with it.
func QueryProfile(ctx context.Context, deps QueryProfileDeps) (account.User, error) {
	if deps.Session == nil || deps.Session.Validate() != nil {
		return account.User{}, ErrNotSignedIn
	}
	user, err := deps.Gateway.CurrentUser(ctx)
	if err != nil {
		return account.User{}, err
	}
	if deps.Sessions != nil {
		updated := account.Session{Token: deps.Session.Token, User: user}
		if saveErr := deps.Sessions.Save(ctx, updated); saveErr != nil {
			slog.Warn("session_persist_failed", "error", saveErr)
		}
	}
	return user, nil
}

// UpdateProfileInput carries the editable profile fields. Empty fields keep
// their current backend values.
type UpdateProfileInput struct {
	Nickname string
	Email    string
	Phone    string
	RealName string
}

// UpdateProfileDeps holds dependencies for UpdateProfile.
type UpdateProfileDeps struct {
	Gateway  ProfileGateway
	Sessions SessionStore
	Notifier Notifier
	Session  *account.Session
}

// ExecuteUpdateProfile updates the authenticated user's profile and keeps
// the persisted session's user in step with the backend's response.
// PRE: Deps are populated
// POST: On success the session store carries the refreshed user
func ExecuteUpdateProfile(ctx context.Context, input UpdateProfileInput, deps UpdateProfileDeps) (account.User, error) {
	if deps.Session == nil || deps.Session.Validate() != nil {
		deps.Notifier.Error("please sign in first")
		return account.User{}, ErrNotSignedIn
	}
	if input.Email != "" && !strings.Contains(input.Email, "@") {
		deps.Notifier.Error("email address looks invalid")
		return account.User{}, errors.New("email must contain '@'")
	}

	user, err := deps.Gateway.UpdateProfile(ctx, gateway.ProfileUpdate{
		Nickname: input.Nickname,
		Email:    input.Email,
		Phone:    input.Phone,
		RealName: input.RealName,
	})
	if err != nil {
		deps.Notifier.Error(gateway.MessageOf(err, "failed to update profile"))
		slog.Error("profile_update_failed", "error", err)
		return account.User{}, err
	}

	if deps.Sessions != nil {
		updated := account.Session{Token: deps.Session.Token, User: user}
		if saveErr := deps.Sessions.Save(ctx, updated); saveErr != nil {
			slog.Warn("session_persist_failed", "error", saveErr)
		}
	}

	deps.Notifier.Success("profile updated")
	return user, nil
}
