package runtime

import (
	"log/slog"

	"github.com/aretw0/genie/pkg/domain"
	"github.com/aretw0/genie/pkg/ports"
)

// Option configures a Session.
type Option func(*Session)

// WithScheduler overrides the wall-clock scheduler (tests use a virtual clock).
func WithScheduler(s ports.Scheduler) Option {
	return func(sess *Session) {
		sess.scheduler = s
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(sess *Session) {
		sess.logger = logger
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(sess *Session) {
		sess.hooks = hooks
	}
}

// WithOnChange registers the state-changed listener.
// It receives a snapshot after every transition, in transition order, with no
// session lock held. Calls made by the listener into the session are delivered
// after the current one returns.
func WithOnChange(fn func(domain.Snapshot)) Option {
	return func(sess *Session) {
		sess.onChange = fn
	}
}

// WithOnNavigate registers the listener for terminal steps.
func WithOnNavigate(fn func(domain.Navigation)) Option {
	return func(sess *Session) {
		sess.onNavigate = fn
	}
}

// WithLatencyScale multiplies every response delay. 0 resolves responses on the next scheduler tick.
func WithLatencyScale(f float64) Option {
	return func(sess *Session) {
		if f >= 0 {
			sess.latencyScale = f
		}
	}
}
