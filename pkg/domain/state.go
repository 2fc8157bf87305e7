package domain

// Phase defines the mode of the session state machine.
type Phase string

const (
	PhaseUninitialized Phase = "uninitialized" // Before Initialize or after Reset
	PhaseIdle          Phase = "idle"          // Waiting for the user to pick an action
	PhaseBusy          Phase = "busy"          // A simulated response is pending
)

// NoStep is the current step identifier of an uninitialized session.
const NoStep = ""

// Snapshot is the immutable view of a session handed to presentation adapters.
// Adapters never receive a pointer into live session memory.
type Snapshot struct {
	// Revision counts the transitions of the session. It is not part of the
	// JSON form so a replayed dialogue serializes like a fresh one.
	Revision   uint64   `json:"-"`
	SessionID  string   `json:"session_id"`
	Phase      Phase    `json:"phase"`
	StepID     string   `json:"step_id,omitempty"`
	Busy       bool     `json:"busy"`
	Transcript []Entry  `json:"transcript"`
	Actions    []Action `json:"actions"`
}

// NewSnapshot creates the snapshot of an uninitialized session.
func NewSnapshot(sessionID string) Snapshot {
	return Snapshot{
		SessionID:  sessionID,
		Phase:      PhaseUninitialized,
		StepID:     NoStep,
		Transcript: []Entry{},
		Actions:    []Action{},
	}
}

// Clone returns a deep copy so callers can keep it across transitions.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Transcript = make([]Entry, len(s.Transcript))
	for i, e := range s.Transcript {
		e.Attachment = e.Attachment.Clone()
		out.Transcript[i] = e
	}
	out.Actions = append([]Action{}, s.Actions...)
	return out
}

// HasAction reports whether the action is currently offered.
func (s Snapshot) HasAction(actionID string) bool {
	for _, a := range s.Actions {
		if a.ID == actionID {
			return true
		}
	}
	return false
}

// Navigation is the signal emitted when a terminal step is entered.
type Navigation struct {
	SessionID string `json:"session_id"`
	ActionID  string `json:"action_id"`
	StepID    string `json:"step_id"`
	View      string `json:"view"`
}
