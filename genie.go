package genie

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/genie/internal/logging"
	"github.com/aretw0/genie/internal/runtime"
	"github.com/aretw0/genie/pkg/adapters/file"
	loamAdapter "github.com/aretw0/genie/pkg/adapters/loam"
	"github.com/aretw0/genie/pkg/adapters/memory"
	"github.com/aretw0/genie/pkg/domain"
	"github.com/aretw0/genie/pkg/ports"
	"github.com/aretw0/genie/pkg/script"
	"github.com/aretw0/genie/pkg/scripts"
)

// Session is a single dialogue instance created by the Engine.
type Session = runtime.Session

// SessionOption configures one Session.
type SessionOption = runtime.Option

// Engine is the high-level entry point for the Genie library.
// It owns a validated script and creates sessions over it.
type Engine struct {
	store        *script.Store
	loader       ports.ScriptLoader
	scheduler    ports.Scheduler
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	latencyScale float64
	Name         string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLoader injects a custom ScriptLoader, bypassing path based loading.
func WithLoader(l ports.ScriptLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks on every session.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithScheduler replaces the wall-clock scheduler, e.g. with a virtual clock in tests.
func WithScheduler(s ports.Scheduler) Option {
	return func(e *Engine) {
		e.scheduler = s
	}
}

// WithLatencyScale multiplies every simulated response delay.
func WithLatencyScale(f float64) Option {
	return func(e *Engine) {
		e.latencyScale = f
	}
}

// New initializes a new Genie Engine.
//
// The script is resolved from path: empty selects the built-in quality investigation,
// a directory is read as a loam repository (one markdown document per step)
// and any other path is decoded as a YAML or JSON script file.
// If WithLoader is provided, path is only used as a descriptive name.
func New(path string, opts ...Option) (*Engine, error) {
	eng := &Engine{latencyScale: 1}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.loader == nil {
		loader, name, err := resolveLoader(path)
		if err != nil {
			return nil, err
		}
		eng.loader = loader
		eng.Name = name
	} else if path != "" {
		eng.Name = filepath.Base(path)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	store, err := script.LoadFrom(context.Background(), eng.loader)
	if err != nil {
		return nil, err
	}
	eng.store = store
	if eng.Name == "" {
		eng.Name = store.Name()
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("script", eng.Name)
	}
	eng.logger.Debug("script loaded", "steps", len(store.Steps()), "initial", store.Initial().ID)

	return eng, nil
}

func resolveLoader(path string) (ports.ScriptLoader, string, error) {
	if path == "" {
		return memory.NewLoader(scripts.Quality()), "", nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open script: %w", err)
	}
	if info.IsDir() {
		loader, err := loamAdapter.Open(absPath)
		if err != nil {
			return nil, "", err
		}
		return loader, loader.Name, nil
	}
	return file.New(absPath), "", nil
}

// NewSession creates an uninitialized session. Call Initialize to start it.
// Per-session options are applied after the engine's defaults.
func (e *Engine) NewSession(id string, opts ...SessionOption) *Session {
	base := []runtime.Option{
		runtime.WithLogger(e.logger),
		runtime.WithLifecycleHooks(e.hooks),
		runtime.WithLatencyScale(e.latencyScale),
	}
	if e.scheduler != nil {
		base = append(base, runtime.WithScheduler(e.scheduler))
	}
	return runtime.NewSession(id, e.store, append(base, opts...)...)
}

// SessionOptions returns the engine's defaults as runtime options, for adapters
// that build sessions through a registry.
func (e *Engine) SessionOptions() []SessionOption {
	opts := []runtime.Option{
		runtime.WithLifecycleHooks(e.hooks),
		runtime.WithLatencyScale(e.latencyScale),
	}
	if e.scheduler != nil {
		opts = append(opts, runtime.WithScheduler(e.scheduler))
	}
	return opts
}

// WithOnChange registers a listener for every state transition of a session.
func WithOnChange(fn func(domain.Snapshot)) SessionOption {
	return runtime.WithOnChange(fn)
}

// WithOnNavigate registers a listener for the navigation signal of a session.
func WithOnNavigate(fn func(domain.Navigation)) SessionOption {
	return runtime.WithOnNavigate(fn)
}

// Store returns the validated script.
func (e *Engine) Store() *script.Store {
	return e.store
}

// Loader returns the ScriptLoader used by the engine.
func (e *Engine) Loader() ports.ScriptLoader {
	return e.loader
}

// Logger returns the engine logger, enriched with the script name.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}
