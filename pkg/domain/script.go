package domain

import "time"

// InitialPredecessor is the reserved predecessor keyword that marks a step as
// reachable from an empty session.
const InitialPredecessor = "initial"

// DefaultInitialStep is the step a script starts from when it does not name one.
const DefaultInitialStep = "initial"

// Script is the full, ordered definition of a dialogue.
type Script struct {
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Initial string `json:"initial,omitempty" yaml:"initial,omitempty"`
	Steps   []Step `json:"steps" yaml:"steps"`
}

// InitialStepID returns the configured initial step, falling back to DefaultInitialStep.
func (s Script) InitialStepID() string {
	if s.Initial == "" {
		return DefaultInitialStep
	}
	return s.Initial
}

// Step represents one assistant turn in the script.
type Step struct {
	ID string `json:"id" yaml:"id"`

	// Predecessors lists the steps an action may come from to land here.
	// InitialPredecessor marks the entry step. Empty means any step may lead here.
	Predecessors []string `json:"predecessors,omitempty" yaml:"predecessors,omitempty"`

	// Responses are appended in order, each after its own simulated latency.
	Responses []Response `json:"responses,omitempty" yaml:"responses,omitempty"`

	// Actions are the follow-ups offered once every response has been delivered.
	Actions []Action `json:"actions,omitempty" yaml:"actions,omitempty"`

	// Navigate marks the step as terminal: entering it emits a navigation
	// signal carrying this view identifier instead of a response.
	Navigate string `json:"navigate,omitempty" yaml:"navigate,omitempty"`
}

// IsTerminal reports whether entering the step hands control to the shell.
func (s Step) IsTerminal() bool {
	return s.Navigate != ""
}

// AllowsFrom reports whether the step may be entered from the given predecessor.
// Use InitialPredecessor for the very first step of a session.
func (s Step) AllowsFrom(prev string) bool {
	if len(s.Predecessors) == 0 {
		return true
	}
	for _, p := range s.Predecessors {
		if p == prev {
			return true
		}
	}
	return false
}

// Action is a follow-up offered to the user.
type Action struct {
	ID     string `json:"id" yaml:"id"`
	Label  string `json:"label" yaml:"label"`
	Target string `json:"target" yaml:"target"`
}

// Response is a single assistant message of a step.
type Response struct {
	// Delay is the simulated "thinking" time before the message appears.
	Delay      time.Duration `json:"delay,omitempty" yaml:"delay,omitempty"`
	Text       string        `json:"text" yaml:"text"`
	Attachment *Attachment   `json:"attachment,omitempty" yaml:"attachment,omitempty"`
}

// Clone returns a deep copy of the script.
func (s Script) Clone() Script {
	out := s
	if s.Steps != nil {
		out.Steps = make([]Step, len(s.Steps))
		for i, step := range s.Steps {
			out.Steps[i] = step.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the step.
func (s Step) Clone() Step {
	out := s
	out.Predecessors = append([]string(nil), s.Predecessors...)
	out.Actions = append([]Action(nil), s.Actions...)
	if s.Responses != nil {
		out.Responses = make([]Response, len(s.Responses))
		for i, r := range s.Responses {
			r.Attachment = r.Attachment.Clone()
			out.Responses[i] = r
		}
	}
	return out
}
