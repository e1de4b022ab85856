package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// NoopSender logs digest sends without delivering them. Used when no email
// provider is configured.
type NoopSender struct{}

func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs the message but does not deliver it.
func (s *NoopSender) Send(_ context.Context, msg Message) (Receipt, error) {
	slog.Info("noop_digest_send", "to", msg.To, "subject", msg.Subject)
	return Receipt{
		MessageID: fmt.Sprintf("noop-%d", time.Now().UnixNano()),
		SentAt:    time.Now(),
	}, nil
}
