package session

import (
	"encoding/json"

	"github.com/aretw0/genie/pkg/domain"
)

// Message types published for every session.
const (
	MessageDiff     = "diff"
	MessageNavigate = "navigate"
)

// Message is the envelope written to the publisher.
type Message struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	// Revision is the session revision the message was produced at.
	Revision   uint64               `json:"revision,omitempty"`
	Diff       *domain.SnapshotDiff `json:"diff,omitempty"`
	Navigation *domain.Navigation   `json:"navigation,omitempty"`
}

// DecodeMessage parses a published payload.
func DecodeMessage(payload []byte) (Message, error) {
	var m Message
	err := json.Unmarshal(payload, &m)
	return m, err
}
