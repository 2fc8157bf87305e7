package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/genie"
	"github.com/aretw0/genie/internal/config"
	"github.com/aretw0/genie/internal/metrics"
	"github.com/aretw0/genie/pkg/adapters/memory"
	"github.com/aretw0/genie/pkg/adapters/redis"
	"github.com/aretw0/genie/pkg/domain"
	"github.com/aretw0/genie/pkg/ports"
	"github.com/aretw0/genie/pkg/session"
)

const redisPingTimeout = 3 * time.Second

// Deps bundles the engine with the infrastructure a command needs.
type Deps struct {
	Engine    *genie.Engine
	Metrics   *metrics.Collector
	Publisher ports.Publisher
	Logger    *slog.Logger

	closers []func() error
}

// Build loads the script and wires metrics and the session publisher.
// A Redis publisher is used when an address is configured; otherwise
// updates stay in process.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Deps, error) {
	collector := metrics.New()

	engine, err := genie.New(cfg.Script,
		genie.WithLogger(logger),
		genie.WithLatencyScale(cfg.LatencyScale),
		genie.WithLifecycleHooks(collector.Hooks(debugHooks(logger))),
	)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}

	d := &Deps{Engine: engine, Metrics: collector, Logger: engine.Logger()}

	if cfg.Redis.Addr == "" {
		d.Publisher = memory.NewPublisher(memory.WithLogger(logger))
		return d, nil
	}

	pub := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
		redis.WithPrefix(cfg.Redis.ChannelPrefix),
		redis.WithLogger(logger),
	)
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := pub.Ping(pingCtx); err != nil {
		_ = pub.Close()
		return nil, fmt.Errorf("redis unreachable at %s: %w", cfg.Redis.Addr, err)
	}
	logger.Info("publishing session updates to redis", "addr", cfg.Redis.Addr, "prefix", cfg.Redis.ChannelPrefix)
	d.Publisher = pub
	d.closers = append(d.closers, pub.Close)
	return d, nil
}

// NewManager creates a session manager over the engine's script.
func (d *Deps) NewManager() *session.Manager {
	return session.NewManager(d.Engine.Store(),
		session.WithLogger(d.Logger),
		session.WithPublisher(d.Publisher),
		session.WithSessionOptions(d.Engine.SessionOptions()...),
	)
}

// Close releases the infrastructure.
func (d *Deps) Close() error {
	var errs []error
	for _, c := range d.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func debugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "enter step", "session_id", e.SessionID, "step_id", e.StepID, "action_id", e.ActionID)
		},
		OnEntryAppended: func(ctx context.Context, e *domain.EntryEvent) {
			logger.DebugContext(ctx, "entry appended", "session_id", e.SessionID, "seq", e.Entry.Seq, "author", e.Entry.Author, "latency", e.Latency)
		},
		OnActionRejected: func(ctx context.Context, e *domain.RejectEvent) {
			logger.DebugContext(ctx, "action rejected", "session_id", e.SessionID, "action_id", e.ActionID, "reason", e.Reason)
		},
		OnNavigate: func(ctx context.Context, e *domain.NavigateEvent) {
			logger.DebugContext(ctx, "navigate", "session_id", e.SessionID, "view", e.Navigation.View)
		},
	}
}
