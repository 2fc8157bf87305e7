package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter      EventType = "step_enter"
	EventEntryAppended  EventType = "entry_appended"
	EventActionRejected EventType = "action_rejected"
	EventNavigate       EventType = "navigate"
	EventReset          EventType = "reset"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// StepEvent is emitted when the session enters a step.
type StepEvent struct {
	EventBase
	StepID   string `json:"step_id"`
	ActionID string `json:"action_id,omitempty"` // Empty for the initial step
}

// EntryEvent is emitted for every transcript append.
type EntryEvent struct {
	EventBase
	Entry Entry `json:"entry"`
	// Latency is the scheduled delay that preceded an assistant entry.
	Latency time.Duration `json:"latency,omitempty"`
}

// RejectEvent is emitted when Submit refuses an action.
type RejectEvent struct {
	EventBase
	ActionID string `json:"action_id"`
	StepID   string `json:"step_id"`
	Reason   string `json:"reason"`
}

// NavigateEvent is emitted when a terminal step fires.
type NavigateEvent struct {
	EventBase
	Navigation Navigation `json:"navigation"`
}

// LifecycleHooks defines callbacks for engine observability.
// Every field is optional.
type LifecycleHooks struct {
	OnStepEnter      func(context.Context, *StepEvent)
	OnEntryAppended  func(context.Context, *EntryEvent)
	OnActionRejected func(context.Context, *RejectEvent)
	OnNavigate       func(context.Context, *NavigateEvent)
	OnReset          func(context.Context, *EventBase)
}
