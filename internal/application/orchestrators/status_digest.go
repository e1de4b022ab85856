package orchestrators

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/betterpursue/sproom/internal/adapters/email"
	appsync "github.com/betterpursue/sproom/internal/application/sync"
	"github.com/betterpursue/sproom/internal/domain/activity"
)

// StatusChange records how one activity moved between two snapshots.
type StatusChange struct {
	Activity   activity.Activity
	WasFull    bool
	NowFull    bool
	WasStatus  string
	NowStatus  string
	Registered bool // whether the user holds a registration now
	New        bool // activity appeared since the previous snapshot
}

func (c StatusChange) describe() string {
	switch {
	case c.New:
		return "newly listed"
	case c.WasStatus != c.NowStatus:
		return fmt.Sprintf("status changed from %s to %s", c.WasStatus, c.NowStatus)
	case !c.WasFull && c.NowFull:
		return "is now full"
	case c.WasFull && !c.NowFull:
		return "has spots again"
	default:
		return "updated"
	}
}

// DiffSnapshots reports the activities whose lifecycle status or fullness
// changed between prev and curr, plus activities that appeared in curr.
// Activities that disappeared are not reported; they are already hidden from
// every list.
func DiffSnapshots(prev, curr appsync.Snapshot) []StatusChange {
	prevByID := make(map[int64]activity.Activity, len(prev.Activities))
	for _, act := range prev.Activities {
		prevByID[act.ID] = act
	}

	var changes []StatusChange
	for _, act := range curr.Activities {
		st := curr.Statuses[act.ID]
		before, seen := prevByID[act.ID]
		if !seen {
			changes = append(changes, StatusChange{
				Activity:   act,
				NowFull:    st.IsFull,
				WasStatus:  act.Status,
				NowStatus:  act.Status,
				Registered: st.IsRegistered,
				New:        true,
			})
			continue
		}
		wasFull := prev.Statuses[act.ID].IsFull
		if before.Status == act.Status && wasFull == st.IsFull {
			continue
		}
		changes = append(changes, StatusChange{
			Activity:   act,
			WasFull:    wasFull,
			NowFull:    st.IsFull,
			WasStatus:  before.Status,
			NowStatus:  act.Status,
			Registered: st.IsRegistered,
		})
	}
	return changes
}

// DigestDeps holds dependencies for ExecuteSendStatusDigest.
type DigestDeps struct {
	Sender  email.Sender
	To      string
	Subject string // optional override
}

// ExecuteSendStatusDigest renders the given changes as an HTML digest and
// sends it. A nil or empty change set is a no-op.
// PRE: deps.To is a deliverable address when changes is non-empty
func ExecuteSendStatusDigest(ctx context.Context, changes []StatusChange, deps DigestDeps) error {
	if len(changes) == 0 {
		return nil
	}
	if deps.To == "" {
		slog.Warn("digest_skipped_no_recipient", "changes", len(changes))
		return nil
	}

	subject := deps.Subject
	if subject == "" {
		subject = fmt.Sprintf("Activity updates (%d)", len(changes))
	}

	body, err := renderDigest(changes)
	if err != nil {
		return fmt.Errorf("render digest: %w", err)
	}

	if _, err := deps.Sender.Send(ctx, email.Message{
		To:      []string{deps.To},
		Subject: subject,
		HTML:    body,
	}); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	slog.Info("digest_delivered", "to", deps.To, "changes", len(changes))
	return nil
}

// renderDigest builds the HTML body. Activity descriptions are authored as
// markdown, so they pass through goldmark before being embedded.
func renderDigest(changes []StatusChange) (string, error) {
	var buf strings.Builder
	buf.WriteString("<h2>Activity updates</h2>\n")
	for _, c := range changes {
		buf.WriteString("<h3>")
		buf.WriteString(html.EscapeString(c.Activity.Name))
		buf.WriteString("</h3>\n<p><strong>")
		buf.WriteString(html.EscapeString(c.describe()))
		buf.WriteString("</strong>")
		if c.Registered {
			buf.WriteString(" (you are registered)")
		}
		buf.WriteString("</p>\n")
		if c.Activity.Description != "" {
			var md bytes.Buffer
			if err := goldmark.Convert([]byte(c.Activity.Description), &md); err != nil {
				return "", fmt.Errorf("convert description for activity %d: %w", c.Activity.ID, err)
			}
			buf.Write(md.Bytes())
		}
	}
	return buf.String(), nil
}
