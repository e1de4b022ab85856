package orchestrators

import (
	"context"

	appsync "github.com/betterpursue/sproom/internal/application/sync"
	"github.com/betterpursue/sproom/internal/domain/account"
)

// Shared fakes for orchestrator tests.

type mockNotifier struct {
	successes []string
	infos     []string
	errors    []string
}

func (m *mockNotifier) Success(msg string) { m.successes = append(m.successes, msg) }
func (m *mockNotifier) Info(msg string)    { m.infos = append(m.infos, msg) }
func (m *mockNotifier) Error(msg string)   { m.errors = append(m.errors, msg) }

type mockGuard struct {
	busy   map[int64]bool
	begun  []int64
	ended  []int64
	marked map[int64]bool
}

func newMockGuard() *mockGuard {
	return &mockGuard{busy: map[int64]bool{}, marked: map[int64]bool{}}
}

func (m *mockGuard) Begin(id int64) bool {
	if m.busy[id] || m.marked[id] {
		return false
	}
	m.marked[id] = true
	m.begun = append(m.begun, id)
	return true
}

func (m *mockGuard) End(id int64) {
	delete(m.marked, id)
	m.ended = append(m.ended, id)
}

type mockView struct {
	snap appsync.Snapshot
}

func (m *mockView) Snapshot() appsync.Snapshot { return m.snap }

type mockRefresher struct {
	calls int
	err   error
}

func (m *mockRefresher) Refresh(_ context.Context, _ bool) error {
	m.calls++
	return m.err
}

type mockConfirmer struct {
	answer  bool
	prompts []string
}

func (m *mockConfirmer) Confirm(prompt string) bool {
	m.prompts = append(m.prompts, prompt)
	return m.answer
}

func testSession() *account.Session {
	return &account.Session{
		Token: "tok-1",
		User:  account.User{ID: 42, Username: "alex", Role: account.RoleUser},
	}
}

func adminSession() *account.Session {
	return &account.Session{
		Token: "tok-2",
		User:  account.User{ID: 1, Username: "root", Role: account.RoleAdmin},
	}
}
