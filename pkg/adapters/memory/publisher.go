package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/genie/internal/logging"
)

const subscriberBuffer = 16

// Publisher fans out payloads to in-process subscribers.
// Safe for concurrent use.
type Publisher struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan []byte]struct{} // SessionID -> Set of Channels
	logger      *slog.Logger
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithLogger sets the logger used to report dropped messages.
func WithLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher creates an empty Publisher.
func NewPublisher(opts ...PublisherOption) *Publisher {
	p := &Publisher{
		subscribers: make(map[string]map[chan []byte]struct{}),
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Subscribe registers a channel until ctx is cancelled.
func (p *Publisher) Subscribe(ctx context.Context, sessionID string) (<-chan []byte, error) {
	ch := make(chan []byte, subscriberBuffer)

	p.mu.Lock()
	if _, ok := p.subscribers[sessionID]; !ok {
		p.subscribers[sessionID] = make(map[chan []byte]struct{})
	}
	p.subscribers[sessionID][ch] = struct{}{}
	p.mu.Unlock()

	go func() {
		<-ctx.Done()
		p.mu.Lock()
		defer p.mu.Unlock()
		if subs, ok := p.subscribers[sessionID]; ok {
			delete(subs, ch)
			if len(subs) == 0 {
				delete(p.subscribers, sessionID)
			}
		}
		close(ch)
	}()

	return ch, nil
}

// Publish delivers the payload to every subscriber of the session.
// Slow subscribers drop the message instead of blocking the publisher.
func (p *Publisher) Publish(ctx context.Context, sessionID string, payload []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for ch := range p.subscribers[sessionID] {
		select {
		case ch <- payload:
		default:
			p.logger.Warn("subscriber buffer full, dropping message", "session_id", sessionID)
		}
	}
	return nil
}

// Subscribers returns the number of live subscriptions for the session.
func (p *Publisher) Subscribers(sessionID string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subscribers[sessionID])
}
