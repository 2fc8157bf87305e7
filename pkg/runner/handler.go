package runner

import (
	"context"

	"github.com/aretw0/genie/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents a snapshot. Handlers render only what changed since
	// the previous call and must cope with a transcript that restarted.
	Output(ctx context.Context, snap domain.Snapshot) error

	// Input reads a response from the user.
	Input(ctx context.Context) (string, error)

	// Signal notifies the handler of an event (e.g. "navigate").
	Signal(ctx context.Context, name string, args map[string]any) error

	// SystemOutput presents a meta-message to the user (e.g. a rejected action).
	// This is distinct from content rendering.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)
