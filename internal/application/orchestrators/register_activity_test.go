package orchestrators

import (
	"context"
	"errors"
	"testing"

	"github.com/betterpursue/sproom/internal/adapters/gateway"
	"github.com/betterpursue/sproom/internal/application/projections"
	appsync "github.com/betterpursue/sproom/internal/application/sync"
	"github.com/betterpursue/sproom/internal/domain/activity"
	"github.com/betterpursue/sproom/internal/domain/registration"
)

type mockRegisterGateway struct {
	calls int
	err   error
}

func (m *mockRegisterGateway) CreateRegistration(_ context.Context, activityID int64) (registration.Registration, error) {
	m.calls++
	if m.err != nil {
		return registration.Registration{}, m.err
	}
	return registration.Registration{ID: 100, ActivityID: activityID, Status: registration.StatusPending}, nil
}

func openSnapshot() appsync.Snapshot {
	return appsync.Snapshot{
		Activities: []activity.Activity{
			{ID: 1, Name: "Football", Status: activity.StatusOpen},
			{ID: 2, Name: "Closed run", Status: activity.StatusClosed},
		},
		Statuses: map[int64]projections.Status{
			1: {},
			2: {},
		},
	}
}

// TestExecuteRegisterActivity_Success tests the happy path: gateway call,
// unconditional refresh, success toast.
func TestExecuteRegisterActivity_Success(t *testing.T) {
	gw := &mockRegisterGateway{}
	guard := newMockGuard()
	refresher := &mockRefresher{}
	notifier := &mockNotifier{}

	err := ExecuteRegisterActivity(context.Background(), RegisterActivityInput{ActivityID: 1}, RegisterActivityDeps{
		Gateway:   gw,
		Guard:     guard,
		View:      &mockView{snap: openSnapshot()},
		Refresher: refresher,
		Notifier:  notifier,
		Session:   testSession(),
	})
	if err != nil {
		t.Fatalf("ExecuteRegisterActivity() error = %v", err)
	}
	if gw.calls != 1 {
		t.Errorf("gateway calls = %d, want 1", gw.calls)
	}
	if refresher.calls != 1 {
		t.Errorf("refresh calls = %d, want 1", refresher.calls)
	}
	if len(notifier.successes) != 1 {
		t.Errorf("expected one success message, got %v", notifier.successes)
	}
	if len(guard.ended) != 1 || guard.ended[0] != 1 {
		t.Errorf("processing mark not cleared: %v", guard.ended)
	}
}

// TestExecuteRegisterActivity_Preconditions tests the local short-circuits
// that must never reach the network.
func TestExecuteRegisterActivity_Preconditions(t *testing.T) {
	registered := openSnapshot()
	registered.Statuses[1] = projections.Status{IsRegistered: true, Status: registration.StatusPending}

	full := openSnapshot()
	full.Statuses[1] = projections.Status{IsFull: true}

	tests := []struct {
		name     string
		input    RegisterActivityInput
		snap     appsync.Snapshot
		session  bool
		wantErr  error
		wantInfo bool
	}{
		{
			name:    "not signed in",
			input:   RegisterActivityInput{ActivityID: 1},
			snap:    openSnapshot(),
			wantErr: ErrNotSignedIn,
		},
		{
			name:    "invalid id",
			input:   RegisterActivityInput{ActivityID: 0},
			snap:    openSnapshot(),
			session: true,
			wantErr: ErrInvalidActivityID,
		},
		{
			name:     "already registered is a quiet no-op",
			input:    RegisterActivityInput{ActivityID: 1},
			snap:     registered,
			session:  true,
			wantErr:  nil,
			wantInfo: true,
		},
		{
			name:    "full activity",
			input:   RegisterActivityInput{ActivityID: 1},
			snap:    full,
			session: true,
			wantErr: ErrActivityNotOpen,
		},
		{
			name:    "closed activity",
			input:   RegisterActivityInput{ActivityID: 2},
			snap:    openSnapshot(),
			session: true,
			wantErr: ErrActivityNotOpen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &mockRegisterGateway{}
			refresher := &mockRefresher{}
			notifier := &mockNotifier{}
			deps := RegisterActivityDeps{
				Gateway:   gw,
				Guard:     newMockGuard(),
				View:      &mockView{snap: tt.snap},
				Refresher: refresher,
				Notifier:  notifier,
			}
			if tt.session {
				deps.Session = testSession()
			}

			err := ExecuteRegisterActivity(context.Background(), tt.input, deps)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if gw.calls != 0 {
				t.Error("precondition failures must not reach the gateway")
			}
			if refresher.calls != 0 {
				t.Error("precondition failures must not trigger a refresh")
			}
			if tt.wantInfo && len(notifier.infos) != 1 {
				t.Errorf("expected an informational message, got %v", notifier.infos)
			}
		})
	}
}

// TestExecuteRegisterActivity_InFlight tests the per-activity mutation guard.
func TestExecuteRegisterActivity_InFlight(t *testing.T) {
	gw := &mockRegisterGateway{}
	guard := newMockGuard()
	guard.busy[1] = true
	refresher := &mockRefresher{}

	err := ExecuteRegisterActivity(context.Background(), RegisterActivityInput{ActivityID: 1}, RegisterActivityDeps{
		Gateway:   gw,
		Guard:     guard,
		View:      &mockView{snap: openSnapshot()},
		Refresher: refresher,
		Notifier:  &mockNotifier{},
		Session:   testSession(),
	})
	if err != nil {
		t.Fatalf("in-flight duplicate should be a silent no-op, got %v", err)
	}
	if gw.calls != 0 {
		t.Error("in-flight duplicate must not reach the gateway")
	}
}

// TestExecuteRegisterActivity_GatewayFailures tests post-call classification,
// including the refresh-on-failure rule.
func TestExecuteRegisterActivity_GatewayFailures(t *testing.T) {
	tests := []struct {
		name        string
		gwErr       error
		wantErr     bool
		wantInfo    bool
		wantMessage string
	}{
		{
			name:     "conflict resolves to already registered",
			gwErr:    &gateway.Error{Kind: gateway.KindConflict, Message: "duplicate", HTTPStatus: 409},
			wantErr:  false,
			wantInfo: true,
		},
		{
			name:        "capacity exceeded",
			gwErr:       &gateway.Error{Kind: gateway.KindCapacityExceeded, Message: "activity full", HTTPStatus: 400},
			wantErr:     true,
			wantMessage: "activity full",
		},
		{
			name:        "session expired",
			gwErr:       &gateway.Error{Kind: gateway.KindSessionExpired, Message: "expired", HTTPStatus: 401},
			wantErr:     true,
			wantMessage: "session expired, please sign in again",
		},
		{
			name:        "transport failure",
			gwErr:       errors.New("connection refused"),
			wantErr:     true,
			wantMessage: "registration failed, please try again",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &mockRegisterGateway{err: tt.gwErr}
			guard := newMockGuard()
			refresher := &mockRefresher{}
			notifier := &mockNotifier{}

			err := ExecuteRegisterActivity(context.Background(), RegisterActivityInput{ActivityID: 1}, RegisterActivityDeps{
				Gateway:   gw,
				Guard:     guard,
				View:      &mockView{snap: openSnapshot()},
				Refresher: refresher,
				Notifier:  notifier,
				Session:   testSession(),
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if refresher.calls != 1 {
				t.Errorf("failure must still refresh: calls = %d, want 1", refresher.calls)
			}
			if tt.wantInfo && len(notifier.infos) != 1 {
				t.Errorf("expected an informational message, got %v", notifier.infos)
			}
			if tt.wantMessage != "" {
				if len(notifier.errors) != 1 || notifier.errors[0] != tt.wantMessage {
					t.Errorf("error messages = %v, want [%q]", notifier.errors, tt.wantMessage)
				}
			}
			if len(guard.ended) != 1 {
				t.Error("processing mark must be cleared on the failure path")
			}
		})
	}
}
