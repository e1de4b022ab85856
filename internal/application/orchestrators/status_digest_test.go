package orchestrators

import (
	"context"
	"strings"
	"testing"

	"github.com/betterpursue/sproom/internal/adapters/email"
	"github.com/betterpursue/sproom/internal/application/projections"
	appsync "github.com/betterpursue/sproom/internal/application/sync"
	"github.com/betterpursue/sproom/internal/domain/activity"
)

type mockSender struct {
	sent []email.Message
	err  error
}

func (m *mockSender) Send(_ context.Context, msg email.Message) (email.Receipt, error) {
	m.sent = append(m.sent, msg)
	return email.Receipt{MessageID: "m-1"}, m.err
}

func snapshotWith(acts []activity.Activity, statuses map[int64]projections.Status) appsync.Snapshot {
	return appsync.Snapshot{Activities: acts, Statuses: statuses}
}

// TestDiffSnapshots tests change detection between refresh cycles.
func TestDiffSnapshots(t *testing.T) {
	prev := snapshotWith(
		[]activity.Activity{
			{ID: 1, Name: "Football", Status: activity.StatusOpen},
			{ID: 2, Name: "Yoga", Status: activity.StatusOpen},
			{ID: 3, Name: "Swim", Status: activity.StatusOpen},
		},
		map[int64]projections.Status{1: {}, 2: {}, 3: {IsFull: true}},
	)
	curr := snapshotWith(
		[]activity.Activity{
			{ID: 1, Name: "Football", Status: activity.StatusClosed}, // status change
			{ID: 2, Name: "Yoga", Status: activity.StatusOpen},       // unchanged
			{ID: 3, Name: "Swim", Status: activity.StatusOpen},       // spots freed
			{ID: 4, Name: "Run", Status: activity.StatusOpen},        // new
		},
		map[int64]projections.Status{
			1: {IsRegistered: true},
			2: {},
			3: {},
			4: {},
		},
	)

	changes := DiffSnapshots(prev, curr)
	if len(changes) != 3 {
		t.Fatalf("expected 3 changes, got %d: %+v", len(changes), changes)
	}

	byID := make(map[int64]StatusChange, len(changes))
	for _, c := range changes {
		byID[c.Activity.ID] = c
	}

	if c := byID[1]; c.WasStatus != activity.StatusOpen || c.NowStatus != activity.StatusClosed || !c.Registered {
		t.Errorf("change for activity 1 = %+v", c)
	}
	if c := byID[3]; !c.WasFull || c.NowFull {
		t.Errorf("change for activity 3 = %+v", c)
	}
	if c := byID[4]; !c.New {
		t.Errorf("activity 4 should be reported as new, got %+v", c)
	}
	if _, ok := byID[2]; ok {
		t.Error("unchanged activity 2 must not be reported")
	}
}

// TestDiffSnapshots_Disappeared tests that activities dropped from the list
// are not reported.
func TestDiffSnapshots_Disappeared(t *testing.T) {
	prev := snapshotWith([]activity.Activity{{ID: 1, Name: "Gone", Status: activity.StatusOpen}}, map[int64]projections.Status{1: {}})
	curr := snapshotWith(nil, nil)

	if changes := DiffSnapshots(prev, curr); len(changes) != 0 {
		t.Errorf("disappeared activities must not be reported, got %+v", changes)
	}
}

// TestExecuteSendStatusDigest tests rendering and delivery.
func TestExecuteSendStatusDigest(t *testing.T) {
	sender := &mockSender{}
	changes := []StatusChange{
		{
			Activity:   activity.Activity{ID: 1, Name: "Football <Indoor>", Description: "Bring **boots**."},
			WasStatus:  activity.StatusOpen,
			NowStatus:  activity.StatusClosed,
			Registered: true,
		},
	}

	err := ExecuteSendStatusDigest(context.Background(), changes, DigestDeps{
		Sender: sender,
		To:     "alex@example.com",
	})
	if err != nil {
		t.Fatalf("ExecuteSendStatusDigest() error = %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one send, got %d", len(sender.sent))
	}

	msg := sender.sent[0]
	if msg.To[0] != "alex@example.com" {
		t.Errorf("recipient = %v", msg.To)
	}
	if !strings.Contains(msg.HTML, "Football &lt;Indoor&gt;") {
		t.Error("activity name must be HTML-escaped")
	}
	if !strings.Contains(msg.HTML, "<strong>boots</strong>") {
		t.Error("markdown description should render to HTML")
	}
	if !strings.Contains(msg.HTML, "you are registered") {
		t.Error("registered marker missing")
	}
}

// TestExecuteSendStatusDigest_NoChanges tests the no-op paths.
func TestExecuteSendStatusDigest_NoChanges(t *testing.T) {
	sender := &mockSender{}

	if err := ExecuteSendStatusDigest(context.Background(), nil, DigestDeps{Sender: sender, To: "a@b.c"}); err != nil {
		t.Fatalf("empty change set should be a no-op, got %v", err)
	}
	changes := []StatusChange{{Activity: activity.Activity{ID: 1, Name: "x"}, New: true}}
	if err := ExecuteSendStatusDigest(context.Background(), changes, DigestDeps{Sender: sender}); err != nil {
		t.Fatalf("missing recipient should be a logged no-op, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("no sends expected, got %d", len(sender.sent))
	}
}
