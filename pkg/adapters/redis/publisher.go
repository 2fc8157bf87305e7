package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/genie/internal/logging"
	backend "github.com/redis/go-redis/v9"
)

const subscriberBuffer = 16

// Publisher implements ports.Publisher over Redis pub/sub, so every server
// replica streams the updates of a session regardless of where it lives.
type Publisher struct {
	client *backend.Client
	prefix string
	logger *slog.Logger
}

type Option func(*Publisher)

// WithPrefix sets the channel prefix for sessions.
func WithPrefix(prefix string) Option {
	return func(p *Publisher) {
		p.prefix = prefix
	}
}

// WithLogger sets the logger used for delivery problems.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// New creates a new Redis publisher with options.
func New(address, password string, db int, opts ...Option) *Publisher {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis publisher from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Publisher {
	p := &Publisher{
		client: client,
		prefix: "genie:session:",
		logger: logging.NewNop(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *Publisher) channel(sessionID string) string {
	return p.prefix + sessionID
}

// Ping checks connectivity, used at startup.
func (p *Publisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Publish sends the payload to the session channel.
func (p *Publisher) Publish(ctx context.Context, sessionID string, payload []byte) error {
	if err := p.client.Publish(ctx, p.channel(sessionID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", sessionID, err)
	}
	return nil
}

// Subscribe listens on the session channel until ctx is cancelled.
// It returns once the subscription is confirmed by the server.
func (p *Publisher) Subscribe(ctx context.Context, sessionID string) (<-chan []byte, error) {
	ps := p.client.Subscribe(ctx, p.channel(sessionID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", sessionID, err)
	}

	out := make(chan []byte, subscriberBuffer)
	go func() {
		defer close(out)
		defer ps.Close()

		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				default:
					p.logger.Warn("subscriber buffer full, dropping message", "session_id", sessionID)
				}
			}
		}
	}()

	return out, nil
}

// Close releases the underlying client.
func (p *Publisher) Close() error {
	return p.client.Close()
}
