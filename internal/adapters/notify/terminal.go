// Package notify surfaces user-facing feedback and confirmation prompts.
// Orchestrators report outcomes through a Notifier and gate destructive
// actions behind a Confirmer; this package provides terminal-backed and
// silent implementations.
package notify

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Terminal writes notifications to a writer and reads confirmations from a
// reader, typically stdout and stdin.
type Terminal struct {
	out io.Writer
	in  *bufio.Reader
}

func NewTerminal(out io.Writer, in io.Reader) *Terminal {
	return &Terminal{out: out, in: bufio.NewReader(in)}
}

func (t *Terminal) Success(msg string) { fmt.Fprintf(t.out, "ok: %s\n", msg) }
func (t *Terminal) Info(msg string)    { fmt.Fprintf(t.out, "-- %s\n", msg) }
func (t *Terminal) Error(msg string)   { fmt.Fprintf(t.out, "error: %s\n", msg) }

// Confirm prompts and accepts y/yes (case-insensitive). Anything else,
// including a read error, declines.
func (t *Terminal) Confirm(prompt string) bool {
	fmt.Fprintf(t.out, "%s [y/N] ", prompt)
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
