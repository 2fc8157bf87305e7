package domain

// SnapshotDiff represents the changes between two snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type SnapshotDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	StepID *string `json:"step_id,omitempty"`
	Phase  *Phase  `json:"phase,omitempty"`

	// Appended contains the entries added since the old snapshot.
	Appended []Entry `json:"appended,omitempty"`

	// Actions is the full replacement action set, present only when it changed.
	Actions *[]Action `json:"actions,omitempty"`

	// Reset is true when the transcript was cleared; clients drop their local copy
	// before applying Appended.
	Reset bool `json:"reset,omitempty"`
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, it returns a diff representing the entire newSnap (initial load).
// It returns nil when nothing changed.
func Diff(oldSnap, newSnap *Snapshot) *SnapshotDiff {
	if newSnap == nil {
		return nil
	}

	diff := &SnapshotDiff{
		SessionID: newSnap.SessionID,
	}

	if oldSnap == nil || oldSnap.StepID != newSnap.StepID {
		diff.StepID = &newSnap.StepID
	}
	if oldSnap == nil || oldSnap.Phase != newSnap.Phase {
		diff.Phase = &newSnap.Phase
	}

	diff.Appended, diff.Reset = diffTranscript(oldSnap, newSnap)

	if oldSnap == nil || !sameActions(oldSnap.Actions, newSnap.Actions) {
		actions := append([]Action{}, newSnap.Actions...)
		diff.Actions = &actions
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// diffTranscript assumes append-only behavior, except across a reset where the
// new transcript is shorter or its prefix no longer matches.
func diffTranscript(old, new *Snapshot) ([]Entry, bool) {
	if old == nil {
		if len(new.Transcript) == 0 {
			return nil, false
		}
		return append([]Entry{}, new.Transcript...), false
	}

	oldLen := len(old.Transcript)
	newLen := len(new.Transcript)

	if newLen < oldLen || !samePrefix(old.Transcript, new.Transcript) {
		return append([]Entry{}, new.Transcript...), true
	}
	if newLen == oldLen {
		return nil, false
	}
	return append([]Entry{}, new.Transcript[oldLen:]...), false
}

func samePrefix(old, new []Entry) bool {
	for i := range old {
		if old[i].Seq != new[i].Seq || old[i].Author != new[i].Author || old[i].Text != new[i].Text {
			return false
		}
	}
	return true
}

func sameActions(a, b []Action) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return d.StepID == nil &&
		d.Phase == nil &&
		len(d.Appended) == 0 &&
		d.Actions == nil &&
		!d.Reset
}
