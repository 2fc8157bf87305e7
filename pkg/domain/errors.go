package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("invalid script")

	// ErrNotFound is matched by every *NotFoundError.
	ErrNotFound = errors.New("step not found")

	// ErrIllegalAction is matched by every *IllegalActionError.
	ErrIllegalAction = errors.New("illegal action")

	// ErrSessionNotFound is returned when a session ID is unknown to a registry.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionClosed is returned when a closed session is used again.
	ErrSessionClosed = errors.New("session closed")
)

// Problem is a single defect found while validating a script.
type Problem struct {
	StepID string // Empty for script-level problems
	Reason string
}

func (p Problem) String() string {
	if p.StepID == "" {
		return p.Reason
	}
	return fmt.Sprintf("step %q: %s", p.StepID, p.Reason)
}

// ValidationError aggregates every problem found in a script definition.
// It is fatal to startup.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid script: " + e.Problems[0].String()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "invalid script: %d problems:\n", len(e.Problems))
	for i, p := range e.Problems {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, p)
	}
	return sb.String()
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError is returned when a step identifier is unknown to the store.
type NotFoundError struct {
	StepID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("step %q not found", e.StepID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Reasons an action may be rejected.
const (
	ReasonBusy          = "busy"
	ReasonUnknownAction = "unknown_action"
	ReasonUninitialized = "uninitialized"
	ReasonClosed        = "closed"
)

// IllegalActionError is returned when an action is submitted that the session cannot accept.
// The session is left exactly as it was.
type IllegalActionError struct {
	ActionID string
	StepID   string
	Reason   string
}

func (e *IllegalActionError) Error() string {
	switch e.Reason {
	case ReasonBusy:
		return fmt.Sprintf("illegal action %q: a response is still pending", e.ActionID)
	case ReasonUninitialized:
		return fmt.Sprintf("illegal action %q: session is not initialized", e.ActionID)
	case ReasonClosed:
		return fmt.Sprintf("illegal action %q: session is closed", e.ActionID)
	default:
		return fmt.Sprintf("illegal action %q: not offered by step %q", e.ActionID, e.StepID)
	}
}

func (e *IllegalActionError) Is(target error) bool {
	if target == ErrIllegalAction {
		return true
	}
	return e.Reason == ReasonClosed && target == ErrSessionClosed
}
