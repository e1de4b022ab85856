package notify

import "log/slog"

// Noop logs notifications instead of displaying them. Used by the watch
// daemon, where there is no interactive session.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (Noop) Success(msg string) { slog.Info("notify_success", "message", msg) }
func (Noop) Info(msg string)    { slog.Info("notify_info", "message", msg) }
func (Noop) Error(msg string)   { slog.Warn("notify_error", "message", msg) }

// AutoConfirm approves every prompt. Backs the -y flags for scripted use.
type AutoConfirm struct{}

func (AutoConfirm) Confirm(string) bool { return true }
