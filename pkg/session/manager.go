package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/aretw0/genie/internal/logging"
	"github.com/aretw0/genie/internal/runtime"
	"github.com/aretw0/genie/pkg/adapters/memory"
	"github.com/aretw0/genie/pkg/domain"
	"github.com/aretw0/genie/pkg/ports"
	"github.com/aretw0/genie/pkg/script"
	"github.com/google/uuid"
)

// entry tracks the last emitted snapshot so transitions can be diffed.
type entry struct {
	session *runtime.Session
	last    *domain.Snapshot // guarded by the session's emission order
}

// Manager owns the sessions opened by an adapter.
type Manager struct {
	store       *script.Store
	publisher   ports.Publisher
	logger      *slog.Logger
	newID       func() string
	sessionOpts []runtime.Option

	mu       sync.RWMutex
	sessions map[string]*entry
}

// Option configures the Manager.
type Option func(*Manager)

// WithPublisher sets where diffs and navigation events are sent.
func WithPublisher(p ports.Publisher) Option {
	return func(m *Manager) {
		m.publisher = p
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithIDGenerator overrides the random session identifiers.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		m.newID = fn
	}
}

// WithSessionOptions applies runtime options (scheduler, hooks, latency) to every session.
func WithSessionOptions(opts ...runtime.Option) Option {
	return func(m *Manager) {
		m.sessionOpts = append(m.sessionOpts, opts...)
	}
}

// NewManager creates a Manager over a validated script.
func NewManager(store *script.Store, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		logger:   logging.NewNop(),
		newID:    uuid.NewString,
		sessions: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.publisher == nil {
		m.publisher = memory.NewPublisher(memory.WithLogger(m.logger))
	}
	return m
}

// Open creates and initializes a new session.
func (m *Manager) Open(ctx context.Context) (*runtime.Session, domain.Snapshot, error) {
	id := m.newID()
	e := &entry{}

	opts := append([]runtime.Option{runtime.WithLogger(m.logger)}, m.sessionOpts...)
	opts = append(opts,
		runtime.WithOnChange(func(snap domain.Snapshot) { m.onChange(e, snap) }),
		runtime.WithOnNavigate(func(nav domain.Navigation) { m.onNavigate(e, nav) }),
	)
	e.session = runtime.NewSession(id, m.store, opts...)

	m.mu.Lock()
	if _, exists := m.sessions[id]; exists {
		m.mu.Unlock()
		return nil, domain.Snapshot{}, fmt.Errorf("session id collision: %s", id)
	}
	m.sessions[id] = e
	m.mu.Unlock()

	snap, err := e.session.Initialize(ctx)
	if err != nil {
		_ = m.Close(id)
		return nil, domain.Snapshot{}, err
	}
	m.logger.InfoContext(ctx, "session opened", "session_id", id)
	return e.session, snap, nil
}

// Get returns a live session or domain.ErrSessionNotFound.
func (m *Manager) Get(sessionID string) (*runtime.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	return e.session, nil
}

// Restart resets the session and replays its initial step.
func (m *Manager) Restart(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	sess, err := m.Get(sessionID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if _, err := sess.Reset(ctx); err != nil {
		return domain.Snapshot{}, err
	}
	return sess.Initialize(ctx)
}

// Close discards the session.
func (m *Manager) Close(sessionID string) error {
	m.mu.Lock()
	e, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	return e.session.Close()
}

// CloseAll discards every session, e.g. on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*entry)
	m.mu.Unlock()

	for _, e := range sessions {
		_ = e.session.Close()
	}
}

// List returns the live session identifiers in sorted order.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Store returns the script the sessions run.
func (m *Manager) Store() *script.Store {
	return m.store
}

// Publisher returns the fan-out transport.
func (m *Manager) Publisher() ports.Publisher {
	return m.publisher
}

func (m *Manager) onChange(e *entry, snap domain.Snapshot) {
	diff := domain.Diff(e.last, &snap)
	e.last = &snap
	if diff == nil {
		return
	}
	m.publish(Message{Type: MessageDiff, SessionID: snap.SessionID, Revision: snap.Revision, Diff: diff})
}

func (m *Manager) onNavigate(e *entry, nav domain.Navigation) {
	var rev uint64
	if e.last != nil {
		rev = e.last.Revision
	}
	m.publish(Message{Type: MessageNavigate, SessionID: nav.SessionID, Revision: rev, Navigation: &nav})
}

func (m *Manager) publish(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		m.logger.Error("failed to encode session message", "session_id", msg.SessionID, "error", err)
		return
	}
	if err := m.publisher.Publish(context.Background(), msg.SessionID, payload); err != nil {
		m.logger.Warn("failed to publish session message", "session_id", msg.SessionID, "error", err)
	}
}
