package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/betterpursue/sproom/internal/adapters/gateway"
	"github.com/betterpursue/sproom/internal/domain/account"
)

// Auth errors
var (
	ErrEmptyCredentials = errors.New("username and password are required")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
)

// AuthGateway covers the backend's auth endpoints.
type AuthGateway interface {
	Login(ctx context.Context, username, password string) (account.Session, error)
	SignUp(ctx context.Context, input gateway.SignUpInput) (account.Session, error)
}

// SessionStore persists the local session between runs.
type SessionStore interface {
	Save(ctx context.Context, sess account.Session) error
	Clear(ctx context.Context) error
}

// LoginInput carries credentials for the login orchestrator.
type LoginInput struct {
	Username string
	Password string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	Gateway  AuthGateway
	Sessions SessionStore
	Notifier Notifier
}

// ExecuteLogin exchanges credentials for a session and persists it locally.
// PRE: Deps are populated
// POST: On success the session store holds the new token and user
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (account.Session, error) {
	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" || input.Password == "" {
		deps.Notifier.Error("username and password are required")
		return account.Session{}, ErrEmptyCredentials
	}

	sess, err := deps.Gateway.Login(ctx, input.Username, input.Password)
	if err != nil {
		deps.Notifier.Error(gateway.MessageOf(err, "sign in failed, check your username and password"))
		slog.Error("login_failed", "username", input.Username, "error", err)
		return account.Session{}, err
	}

	if err := deps.Sessions.Save(ctx, sess); err != nil {
		// The backend accepted the credentials; a persistence failure only
		// costs the user a re-login next run.
		slog.Warn("session_persist_failed", "error", err)
	}

	deps.Notifier.Success("signed in as " + sess.User.DisplayName())
	return sess, nil
}

// SignUpInput carries the fields for account creation.
type SignUpInput struct {
	Username string
	Password string
	Nickname string
	Email    string
	Phone    string
}

// SignUpDeps holds dependencies for SignUp.
type SignUpDeps struct {
	Gateway  AuthGateway
	Sessions SessionStore
	Notifier Notifier
}

// ExecuteSignUp creates a new account and signs the user in.
// PRE: Deps are populated
// POST: On success the session store holds the new session
func ExecuteSignUp(ctx context.Context, input SignUpInput, deps SignUpDeps) (account.Session, error) {
	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" || input.Password == "" {
		deps.Notifier.Error("username and password are required")
		return account.Session{}, ErrEmptyCredentials
	}
	if len(input.Password) < 6 {
		deps.Notifier.Error("password must be at least 6 characters")
		return account.Session{}, ErrPasswordTooShort
	}
	if input.Email != "" && !strings.Contains(input.Email, "@") {
		deps.Notifier.Error("email address looks invalid")
		return account.Session{}, errors.New("email must contain '@'")
	}

	sess, err := deps.Gateway.SignUp(ctx, gateway.SignUpInput{
		Username: input.Username,
		Password: input.Password,
		Nickname: input.Nickname,
		Email:    input.Email,
		Phone:    input.Phone,
	})
	if err != nil {
		deps.Notifier.Error(gateway.MessageOf(err, "sign up failed, please try again"))
		slog.Error("signup_failed", "username", input.Username, "error", err)
		return account.Session{}, err
	}

	if err := deps.Sessions.Save(ctx, sess); err != nil {
		slog.Warn("session_persist_failed", "error", err)
	}

	deps.Notifier.Success("account created, signed in as " + sess.User.DisplayName())
	return sess, nil
}

// LogoutDeps holds dependencies for Logout.
type LogoutDeps struct {
	Sessions  SessionStore
	Notifier  Notifier
	Confirmer Confirmer
}

// ExecuteLogout clears the persisted session after confirmation.
// POST: Returns true when the user confirmed and the session was cleared
func ExecuteLogout(ctx context.Context, deps LogoutDeps) (bool, error) {
	if !deps.Confirmer.Confirm("sign out?") {
		return false, nil
	}
	if err := deps.Sessions.Clear(ctx); err != nil {
		deps.Notifier.Error("failed to clear the local session")
		return false, err
	}
	deps.Notifier.Success("signed out")
	return true, nil
}
