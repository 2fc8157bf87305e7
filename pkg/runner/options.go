package runner

import (
	"log/slog"

	"github.com/aretw0/genie"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithHeadless suppresses the greeting and farewell lines.
func WithHeadless(headless bool) Option {
	return func(r *Runner) {
		r.Headless = headless
	}
}

// WithRenderer configures the content renderer of the default text handler.
func WithRenderer(renderer ContentRenderer) Option {
	return func(r *Runner) {
		r.Renderer = renderer
	}
}

// WithSessionOptions adds options to the session the runner creates.
func WithSessionOptions(opts ...genie.SessionOption) Option {
	return func(r *Runner) {
		r.SessionOptions = append(r.SessionOptions, opts...)
	}
}
