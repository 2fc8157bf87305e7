package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/aretw0/genie"
	"github.com/aretw0/genie/internal/logging"
	"github.com/aretw0/genie/pkg/domain"
)

// SignalNavigate is sent to the handler when the session hands control to a view.
const SignalNavigate = "navigate"

// errExit ends the chat without an error.
var errExit = errors.New("exit requested")

// Runner drives one session from a terminal or a pipe.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler over Input/Output is used.
	Handler IOHandler

	// Logger is used for internal debug logging.
	Logger *slog.Logger

	// SessionOptions are applied to the session the runner creates.
	SessionOptions []genie.SessionOption

	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer
}

// NewRunner creates a new Runner with default Stdin/Stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Input:  os.Stdin,
		Output: os.Stdout,
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the chat until the session navigates, the user exits or the
// process is interrupted. It returns the navigation signal, or nil when the
// chat ended without one.
func (r *Runner) Run(ctx context.Context, engine *genie.Engine, sessionID string) (*domain.Navigation, error) {
	handler := r.resolveHandler()
	box := newMailbox()

	opts := append([]genie.SessionOption{}, r.SessionOptions...)
	opts = append(opts, genie.WithOnChange(box.putSnapshot), genie.WithOnNavigate(box.putNavigation))
	sess := engine.NewSession(sessionID, opts...)
	defer sess.Close()

	signals := NewSignalManager(ctx)
	defer signals.Stop()

	if _, err := sess.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}

	for {
		sctx := signals.Context()

		select {
		case <-sctx.Done():
			r.Logger.Debug("chat interrupted", "session_id", sessionID)
			r.farewell()
			return nil, nil
		case <-box.notify:
		}

		snaps, nav := box.take()
		var snap *domain.Snapshot
		for i := range snaps {
			snap = &snaps[i]
			if err := handler.Output(sctx, *snap); err != nil {
				return nil, fmt.Errorf("output error: %w", err)
			}
		}
		if nav != nil {
			if err := handler.Signal(sctx, SignalNavigate, map[string]any{"view": nav.View, "step_id": nav.StepID, "action_id": nav.ActionID}); err != nil {
				return nil, fmt.Errorf("output error: %w", err)
			}
			r.Logger.Info("chat navigated", "session_id", sessionID, "view", nav.View)
			return nav, nil
		}
		if snap == nil || snap.Phase != domain.PhaseIdle || len(snap.Actions) == 0 {
			continue
		}

		err := r.prompt(sctx, sess, handler, signals, *snap)
		if errors.Is(err, errExit) {
			r.farewell()
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// prompt reads lines until one changes the session.
func (r *Runner) prompt(ctx context.Context, sess *genie.Session, handler IOHandler, signals *SignalManager, snap domain.Snapshot) error {
	for {
		line, err := handler.Input(ctx)
		if err != nil {
			signals.CheckRace()
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return errExit
			}
			return fmt.Errorf("input error: %w", err)
		}

		switch ParseCommand(line) {
		case CommandExit:
			return errExit
		case CommandReset:
			if _, err := sess.Reset(ctx); err != nil {
				return err
			}
			_, err := sess.Initialize(ctx)
			return err
		}

		action, ok := ResolveAction(snap.Actions, line)
		if !ok {
			_ = handler.SystemOutput(ctx, fmt.Sprintf("Unknown action %q. Pick a number from the list, or type reset or exit.", line))
			continue
		}

		_, err = sess.Submit(ctx, action.ID)
		var illegal *domain.IllegalActionError
		if errors.As(err, &illegal) {
			_ = handler.SystemOutput(ctx, fmt.Sprintf("Action %q is not available right now (%s).", action.ID, illegal.Reason))
			continue
		}
		return err
	}
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler != nil {
		return r.Handler
	}
	th := NewTextHandler(r.Input, r.Output, WithTextHandlerRenderer(r.Renderer))
	if !r.Headless && r.Output != nil {
		fmt.Fprintln(r.Output, "--- Genie (type a number, reset or exit) ---")
	}
	r.Handler = th
	return th
}

func (r *Runner) farewell() {
	if !r.Headless && r.Output != nil {
		fmt.Fprintln(r.Output, "\nGoodbye.")
	}
}

// mailbox keeps the latest snapshot and navigation so session listeners never block.
// Snapshots coalesce, except a reset snapshot, which is kept so the handler
// sees the restart even when the replayed state has already replaced it.
type mailbox struct {
	mu     sync.Mutex
	snaps  []domain.Snapshot
	nav    *domain.Navigation
	notify chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{notify: make(chan struct{}, 1)}
}

func (m *mailbox) putSnapshot(s domain.Snapshot) {
	m.mu.Lock()
	if n := len(m.snaps); n > 0 && m.snaps[n-1].Phase != domain.PhaseUninitialized {
		m.snaps[n-1] = s
	} else {
		m.snaps = append(m.snaps, s)
	}
	m.mu.Unlock()
	m.signal()
}

func (m *mailbox) putNavigation(n domain.Navigation) {
	m.mu.Lock()
	m.nav = &n
	m.mu.Unlock()
	m.signal()
}

func (m *mailbox) signal() {
	select {
	case m.notify <- struct{}{}:
	default:
	}
}

func (m *mailbox) take() ([]domain.Snapshot, *domain.Navigation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snaps, nav := m.snaps, m.nav
	m.snaps, m.nav = nil, nil
	return snaps, nav
}
