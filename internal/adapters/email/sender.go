// Package email delivers status digest notifications through an external
// provider.
package email

import (
	"context"
	"time"
)

// Message is a single outbound email.
type Message struct {
	To      []string
	From    string // falls back to the sender's configured address when empty
	Subject string
	HTML    string
}

// Receipt is the provider's acknowledgement of an accepted send.
type Receipt struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers a message via an external provider.
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}
