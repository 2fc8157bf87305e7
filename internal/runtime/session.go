package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/genie/internal/logging"
	"github.com/aretw0/genie/pkg/domain"
	"github.com/aretw0/genie/pkg/ports"
	"github.com/aretw0/genie/pkg/script"
)

// Session is one dialogue instance. It is safe for concurrent use.
type Session struct {
	id           string
	store        *script.Store
	scheduler    ports.Scheduler
	logger       *slog.Logger
	hooks        domain.LifecycleHooks
	onChange     func(domain.Snapshot)
	onNavigate   func(domain.Navigation)
	latencyScale float64

	mu         sync.Mutex
	phase      domain.Phase
	stepID     string
	transcript []domain.Entry
	actions    []domain.Action
	seq        int
	revision   uint64
	generation uint64
	cancel     ports.CancelFunc
	closed     bool

	// outMu guards the outbox of listener calls. Transitions enqueue under mu;
	// a single drainer delivers them in order with no lock held, so listeners
	// may read the session or submit to it.
	outMu    sync.Mutex
	outbox   []emission
	draining bool
}

type emission struct {
	snap   domain.Snapshot
	notify func()
}

// NewSession creates an uninitialized session over a validated store.
func NewSession(id string, store *script.Store, opts ...Option) *Session {
	s := &Session{
		id:           id,
		store:        store,
		scheduler:    TimerScheduler{},
		logger:       logging.NewNop(),
		latencyScale: 1,
		phase:        domain.PhaseUninitialized,
		stepID:       domain.NoStep,
		transcript:   []domain.Entry{},
		actions:      []domain.Action{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session_id", id)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Snapshot returns a deep copy of the current state.
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Initialize enters the initial step and schedules its responses.
// On an already initialized session it returns the current state unchanged.
func (s *Session) Initialize(ctx context.Context) (domain.Snapshot, error) {
	s.mu.Lock()
	if s.closed {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, domain.ErrSessionClosed
	}
	if s.phase != domain.PhaseUninitialized {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, nil
	}

	step := s.store.Initial()
	s.enterLocked(step)
	gen := s.generation
	s.scheduleLocked(gen, step, 0)
	s.logger.InfoContext(ctx, "session initialized", "step_id", step.ID, "generation", gen)

	snap := s.transitionLocked()
	s.unlockAndEmit(snap, func() {
		s.fireStepEnter(ctx, step.ID, "")
	})
	return snap, nil
}

// Submit applies a user action. Illegal submissions return an
// *domain.IllegalActionError and leave the session untouched.
func (s *Session) Submit(ctx context.Context, actionID string) (domain.Snapshot, error) {
	s.mu.Lock()
	if reason := s.rejectReasonLocked(actionID); reason != "" {
		snap := s.snapshotLocked()
		stepID := s.stepID
		s.mu.Unlock()
		return snap, s.reject(ctx, actionID, stepID, reason)
	}

	action := s.findActionLocked(actionID)
	target, err := s.store.Get(action.Target)
	if err != nil {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, err
	}
	from := s.stepID

	if target.IsTerminal() {
		s.enterTerminalLocked(target)
		s.logger.InfoContext(ctx, "navigating", "action_id", actionID, "step_id", target.ID, "view", target.Navigate)

		nav := domain.Navigation{SessionID: s.id, ActionID: actionID, StepID: target.ID, View: target.Navigate}
		snap := s.transitionLocked()
		s.unlockAndEmit(snap, func() {
			s.fireStepEnter(ctx, target.ID, actionID)
			if s.hooks.OnNavigate != nil {
				s.hooks.OnNavigate(ctx, &domain.NavigateEvent{EventBase: s.event(domain.EventNavigate), Navigation: nav})
			}
			if s.onNavigate != nil {
				s.onNavigate(nav)
			}
		})
		return snap, nil
	}

	echo := s.appendLocked(domain.AuthorUser, target.ID, action.Label, nil)
	s.enterLocked(target)
	gen := s.generation
	s.scheduleLocked(gen, target, 0)
	s.logger.DebugContext(ctx, "action accepted", "action_id", actionID, "step_id", target.ID, "from", from, "seq", echo.Seq)

	snap := s.transitionLocked()
	s.unlockAndEmit(snap, func() {
		s.fireEntry(ctx, echo, 0)
		s.fireStepEnter(ctx, target.ID, actionID)
	})
	return snap, nil
}

// Reset discards the transcript and returns to the uninitialized state.
// Any pending response is cancelled and can no longer mutate the session.
func (s *Session) Reset(ctx context.Context) (domain.Snapshot, error) {
	s.mu.Lock()
	if s.closed {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, domain.ErrSessionClosed
	}

	s.invalidateLocked()
	s.phase = domain.PhaseUninitialized
	s.stepID = domain.NoStep
	s.transcript = []domain.Entry{}
	s.actions = []domain.Action{}
	s.seq = 0
	s.logger.InfoContext(ctx, "session reset", "generation", s.generation)

	snap := s.transitionLocked()
	s.unlockAndEmit(snap, func() {
		if s.hooks.OnReset != nil {
			base := s.event(domain.EventReset)
			s.hooks.OnReset(ctx, &base)
		}
	})
	return snap, nil
}

// Close cancels pending work. Every later call fails with domain.ErrSessionClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.invalidateLocked()
	s.logger.Info("session closed")
	return nil
}

// resolve delivers response idx of step if the callback is still current.
func (s *Session) resolve(gen uint64, step domain.Step, idx int, latency time.Duration) {
	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		s.logger.Debug("stale response ignored", "step_id", step.ID, "generation", gen)
		return
	}

	resp := step.Responses[idx]
	entry := s.appendLocked(domain.AuthorAssistant, step.ID, resp.Text, resp.Attachment)
	if idx+1 < len(step.Responses) {
		s.scheduleLocked(gen, step, idx+1)
	} else {
		s.cancel = nil
		s.phase = domain.PhaseIdle
		s.actions = append([]domain.Action{}, step.Actions...)
	}
	s.logger.Debug("response resolved", "step_id", step.ID, "seq", entry.Seq, "generation", gen)

	snap := s.transitionLocked()
	s.unlockAndEmit(snap, func() {
		s.fireEntry(context.Background(), entry, latency)
	})
}

func (s *Session) rejectReasonLocked(actionID string) string {
	switch {
	case s.closed:
		return domain.ReasonClosed
	case s.phase == domain.PhaseUninitialized:
		return domain.ReasonUninitialized
	case s.phase == domain.PhaseBusy:
		return domain.ReasonBusy
	case s.findActionLocked(actionID) == nil:
		return domain.ReasonUnknownAction
	}
	return ""
}

func (s *Session) reject(ctx context.Context, actionID, stepID, reason string) error {
	s.logger.WarnContext(ctx, "action rejected", "action_id", actionID, "step_id", stepID, "reason", reason)
	if s.hooks.OnActionRejected != nil {
		s.hooks.OnActionRejected(ctx, &domain.RejectEvent{
			EventBase: s.event(domain.EventActionRejected),
			ActionID:  actionID,
			StepID:    stepID,
			Reason:    reason,
		})
	}
	return &domain.IllegalActionError{ActionID: actionID, StepID: stepID, Reason: reason}
}

func (s *Session) findActionLocked(actionID string) *domain.Action {
	for i := range s.actions {
		if s.actions[i].ID == actionID {
			return &s.actions[i]
		}
	}
	return nil
}

func (s *Session) enterLocked(step domain.Step) {
	s.phase = domain.PhaseBusy
	s.stepID = step.ID
	s.actions = []domain.Action{}
}

func (s *Session) enterTerminalLocked(step domain.Step) {
	s.phase = domain.PhaseIdle
	s.stepID = step.ID
	s.actions = []domain.Action{}
}

func (s *Session) appendLocked(author domain.Author, stepID, text string, att *domain.Attachment) domain.Entry {
	s.seq++
	entry := domain.Entry{
		Seq:        s.seq,
		Author:     author,
		StepID:     stepID,
		Text:       text,
		Attachment: att.Clone(),
	}
	s.transcript = append(s.transcript, entry)
	return entry
}

// scheduleLocked arms the single outstanding resolution of the session.
func (s *Session) scheduleLocked(gen uint64, step domain.Step, idx int) {
	delay := time.Duration(float64(step.Responses[idx].Delay) * s.latencyScale)
	s.cancel = s.scheduler.AfterFunc(delay, func() {
		s.resolve(gen, step, idx, delay)
	})
}

func (s *Session) invalidateLocked() {
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// transitionLocked counts a state change and returns its snapshot.
func (s *Session) transitionLocked() domain.Snapshot {
	s.revision++
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{
		Revision:   s.revision,
		SessionID:  s.id,
		Phase:      s.phase,
		StepID:     s.stepID,
		Busy:       s.phase == domain.PhaseBusy,
		Transcript: s.transcript,
		Actions:    s.actions,
	}
	return snap.Clone()
}

// unlockAndEmit queues the listener calls of a transition, releases mu and
// delivers the outbox. The snapshot listener runs before hooks and navigation.
// It must be called with mu held.
func (s *Session) unlockAndEmit(snap domain.Snapshot, notify func()) {
	s.outMu.Lock()
	s.outbox = append(s.outbox, emission{snap: snap, notify: notify})
	s.outMu.Unlock()
	s.mu.Unlock()
	s.drain()
}

// drain delivers queued emissions until the outbox is empty. When another
// goroutine is already draining it returns at once; that goroutine picks up
// the queued calls.
func (s *Session) drain() {
	s.outMu.Lock()
	if s.draining {
		s.outMu.Unlock()
		return
	}
	s.draining = true
	for len(s.outbox) > 0 {
		e := s.outbox[0]
		s.outbox[0] = emission{}
		s.outbox = s.outbox[1:]
		s.outMu.Unlock()

		if s.onChange != nil {
			s.onChange(e.snap)
		}
		if e.notify != nil {
			e.notify()
		}

		s.outMu.Lock()
	}
	s.draining = false
	s.outMu.Unlock()
}

func (s *Session) fireStepEnter(ctx context.Context, stepID, actionID string) {
	if s.hooks.OnStepEnter == nil {
		return
	}
	s.hooks.OnStepEnter(ctx, &domain.StepEvent{
		EventBase: s.event(domain.EventStepEnter),
		StepID:    stepID,
		ActionID:  actionID,
	})
}

func (s *Session) fireEntry(ctx context.Context, entry domain.Entry, latency time.Duration) {
	if s.hooks.OnEntryAppended == nil {
		return
	}
	s.hooks.OnEntryAppended(ctx, &domain.EntryEvent{
		EventBase: s.event(domain.EventEntryAppended),
		Entry:     entry,
		Latency:   latency,
	})
}

func (s *Session) event(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, SessionID: s.id}
}
