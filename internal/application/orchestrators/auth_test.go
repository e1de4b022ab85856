package orchestrators

import (
	"context"
	"errors"
	"testing"

	"github.com/betterpursue/sproom/internal/adapters/gateway"
	"github.com/betterpursue/sproom/internal/domain/account"
)

type mockAuthGateway struct {
	session    account.Session
	loginErr   error
	signUpErr  error
	loginCalls int
}

func (m *mockAuthGateway) Login(_ context.Context, _, _ string) (account.Session, error) {
	m.loginCalls++
	if m.loginErr != nil {
		return account.Session{}, m.loginErr
	}
	return m.session, nil
}

func (m *mockAuthGateway) SignUp(_ context.Context, _ gateway.SignUpInput) (account.Session, error) {
	if m.signUpErr != nil {
		return account.Session{}, m.signUpErr
	}
	return m.session, nil
}

type mockSessionStore struct {
	saved   []account.Session
	cleared int
	saveErr error
}

func (m *mockSessionStore) Save(_ context.Context, sess account.Session) error {
	m.saved = append(m.saved, sess)
	return m.saveErr
}

func (m *mockSessionStore) Clear(_ context.Context) error {
	m.cleared++
	return nil
}

// TestExecuteLogin tests credential validation and session persistence.
func TestExecuteLogin(t *testing.T) {
	valid := account.Session{Token: "tok", User: account.User{ID: 1, Username: "alex", Nickname: "Al"}}

	tests := []struct {
		name      string
		input     LoginInput
		gw        *mockAuthGateway
		wantErr   bool
		wantSaved int
		wantCalls int
	}{
		{
			name:      "success saves session",
			input:     LoginInput{Username: "alex", Password: "secret1"},
			gw:        &mockAuthGateway{session: valid},
			wantSaved: 1,
			wantCalls: 1,
		},
		{
			name:    "empty username",
			input:   LoginInput{Username: "  ", Password: "secret1"},
			gw:      &mockAuthGateway{session: valid},
			wantErr: true,
		},
		{
			name:    "empty password",
			input:   LoginInput{Username: "alex"},
			gw:      &mockAuthGateway{session: valid},
			wantErr: true,
		},
		{
			name:      "backend rejection",
			input:     LoginInput{Username: "alex", Password: "wrong"},
			gw:        &mockAuthGateway{loginErr: &gateway.Error{Kind: gateway.KindNotAuthenticated, Message: "bad credentials"}},
			wantErr:   true,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockSessionStore{}
			notifier := &mockNotifier{}

			sess, err := ExecuteLogin(context.Background(), tt.input, LoginDeps{
				Gateway:  tt.gw,
				Sessions: store,
				Notifier: notifier,
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.gw.loginCalls != tt.wantCalls {
				t.Errorf("gateway calls = %d, want %d", tt.gw.loginCalls, tt.wantCalls)
			}
			if len(store.saved) != tt.wantSaved {
				t.Errorf("sessions saved = %d, want %d", len(store.saved), tt.wantSaved)
			}
			if !tt.wantErr && sess.Token != "tok" {
				t.Errorf("returned session token = %q, want %q", sess.Token, "tok")
			}
			if tt.wantErr && len(notifier.errors) != 1 {
				t.Errorf("expected one error message, got %v", notifier.errors)
			}
		})
	}
}

// TestExecuteLogin_PersistFailureIsNotFatal tests that a failed local save
// does not fail the login.
func TestExecuteLogin_PersistFailureIsNotFatal(t *testing.T) {
	gw := &mockAuthGateway{session: account.Session{Token: "tok", User: account.User{ID: 1, Username: "alex"}}}
	store := &mockSessionStore{saveErr: errors.New("disk full")}

	_, err := ExecuteLogin(context.Background(), LoginInput{Username: "alex", Password: "secret1"}, LoginDeps{
		Gateway:  gw,
		Sessions: store,
		Notifier: &mockNotifier{},
	})
	if err != nil {
		t.Fatalf("login should succeed despite a persistence failure, got %v", err)
	}
}

// TestExecuteSignUp tests the client-side signup checks.
func TestExecuteSignUp(t *testing.T) {
	valid := account.Session{Token: "tok", User: account.User{ID: 2, Username: "sam"}}

	tests := []struct {
		name    string
		input   SignUpInput
		wantErr error
	}{
		{name: "valid", input: SignUpInput{Username: "sam", Password: "secret1"}},
		{name: "valid with email", input: SignUpInput{Username: "sam", Password: "secret1", Email: "sam@example.com"}},
		{name: "short password", input: SignUpInput{Username: "sam", Password: "abc"}, wantErr: ErrPasswordTooShort},
		{name: "missing username", input: SignUpInput{Password: "secret1"}, wantErr: ErrEmptyCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockSessionStore{}
			_, err := ExecuteSignUp(context.Background(), tt.input, SignUpDeps{
				Gateway:  &mockAuthGateway{session: valid},
				Sessions: store,
				Notifier: &mockNotifier{},
			})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				if len(store.saved) != 0 {
					t.Error("failed signup must not save a session")
				}
				return
			}
			if err != nil {
				t.Fatalf("ExecuteSignUp() error = %v", err)
			}
			if len(store.saved) != 1 {
				t.Errorf("sessions saved = %d, want 1", len(store.saved))
			}
		})
	}
}

// TestExecuteSignUp_BadEmail tests the lightweight email check.
func TestExecuteSignUp_BadEmail(t *testing.T) {
	_, err := ExecuteSignUp(context.Background(), SignUpInput{
		Username: "sam", Password: "secret1", Email: "not-an-email",
	}, SignUpDeps{
		Gateway:  &mockAuthGateway{},
		Sessions: &mockSessionStore{},
		Notifier: &mockNotifier{},
	})
	if err == nil {
		t.Fatal("expected an error for an email without '@'")
	}
}

// TestExecuteLogout tests the confirm-then-clear flow.
func TestExecuteLogout(t *testing.T) {
	t.Run("confirmed clears the session", func(t *testing.T) {
		store := &mockSessionStore{}
		done, err := ExecuteLogout(context.Background(), LogoutDeps{
			Sessions:  store,
			Notifier:  &mockNotifier{},
			Confirmer: &mockConfirmer{answer: true},
		})
		if err != nil || !done {
			t.Fatalf("ExecuteLogout() = (%v, %v), want (true, nil)", done, err)
		}
		if store.cleared != 1 {
			t.Errorf("store cleared %d times, want 1", store.cleared)
		}
	})

	t.Run("declined keeps the session", func(t *testing.T) {
		store := &mockSessionStore{}
		done, err := ExecuteLogout(context.Background(), LogoutDeps{
			Sessions:  store,
			Notifier:  &mockNotifier{},
			Confirmer: &mockConfirmer{answer: false},
		})
		if err != nil || done {
			t.Fatalf("ExecuteLogout() = (%v, %v), want (false, nil)", done, err)
		}
		if store.cleared != 0 {
			t.Error("declining must not clear the session")
		}
	})
}

// TestExecuteUpdateProfile tests the profile update flow, including the
// session re-save with the refreshed user.
func TestExecuteUpdateProfile(t *testing.T) {
	store := &mockSessionStore{}
	gw := &mockProfileGateway{user: account.User{ID: 42, Username: "alex", Nickname: "Lex"}}

	user, err := ExecuteUpdateProfile(context.Background(), UpdateProfileInput{Nickname: "Lex"}, UpdateProfileDeps{
		Gateway:  gw,
		Sessions: store,
		Notifier: &mockNotifier{},
		Session:  testSession(),
	})
	if err != nil {
		t.Fatalf("ExecuteUpdateProfile() error = %v", err)
	}
	if user.Nickname != "Lex" {
		t.Errorf("returned user nickname = %q, want %q", user.Nickname, "Lex")
	}
	if len(store.saved) != 1 || store.saved[0].User.Nickname != "Lex" {
		t.Errorf("session should be re-saved with the refreshed user, got %+v", store.saved)
	}
	if store.saved[0].Token != "tok-1" {
		t.Error("re-saved session must keep the existing token")
	}
}

// TestExecuteUpdateProfile_NotSignedIn tests the signed-out path.
func TestExecuteUpdateProfile_NotSignedIn(t *testing.T) {
	_, err := ExecuteUpdateProfile(context.Background(), UpdateProfileInput{}, UpdateProfileDeps{
		Gateway:  &mockProfileGateway{},
		Sessions: &mockSessionStore{},
		Notifier: &mockNotifier{},
	})
	if !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("error = %v, want ErrNotSignedIn", err)
	}
}

type mockProfileGateway struct {
	user account.User
	err  error
}

func (m *mockProfileGateway) CurrentUser(_ context.Context) (account.User, error) {
	return m.user, m.err
}

func (m *mockProfileGateway) UpdateProfile(_ context.Context, _ gateway.ProfileUpdate) (account.User, error) {
	return m.user, m.err
}

// TestQueryProfile tests the read path and the session copy staying in step.
func TestQueryProfile(t *testing.T) {
	store := &mockSessionStore{}
	gw := &mockProfileGateway{user: account.User{ID: 42, Username: "alex", Email: "alex@example.com"}}

	user, err := QueryProfile(context.Background(), QueryProfileDeps{
		Gateway:  gw,
		Sessions: store,
		Session:  testSession(),
	})
	if err != nil {
		t.Fatalf("QueryProfile() error = %v", err)
	}
	if user.Email != "alex@example.com" {
		t.Errorf("user email = %q, want backend value", user.Email)
	}
	if len(store.saved) != 1 || store.saved[0].Token != "tok-1" {
		t.Errorf("session should be re-saved keeping the token, got %+v", store.saved)
	}

	_, err = QueryProfile(context.Background(), QueryProfileDeps{Gateway: gw})
	if !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("signed-out error = %v, want ErrNotSignedIn", err)
	}
}
