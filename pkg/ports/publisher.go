package ports

import "context"

// Publisher fans out serialized session updates (snapshot diffs, navigation
// events) to every subscriber of a session, possibly across processes.
type Publisher interface {
	// Publish delivers the payload to current subscribers of the session.
	// Delivery is best effort: slow subscribers may miss messages.
	Publish(ctx context.Context, sessionID string, payload []byte) error

	// Subscribe returns a channel of payloads for the session.
	// The channel is closed when ctx is cancelled.
	Subscribe(ctx context.Context, sessionID string) (<-chan []byte, error)
}
