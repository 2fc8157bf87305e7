package shell

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/genie/internal/logging"
	"github.com/aretw0/genie/pkg/domain"
)

// View identifies a dashboard screen.
type View string

const (
	ViewExecutive View = "executive"
	ViewEngineer  View = "engineer"
)

// ToastLifetime is how long a toast stays visible.
const ToastLifetime = 4 * time.Second

var (
	// ErrUnknownView is returned when navigating to a view the shell does not have.
	ErrUnknownView = errors.New("unknown view")
	// ErrUnknownAlert is returned when opening the panel on an alert that does not exist.
	ErrUnknownAlert = errors.New("unknown alert")
	// ErrUnknownAction is returned for engineer actions the shell does not handle.
	ErrUnknownAction = errors.New("unknown shell action")
)

// Shell is the dashboard state. It is safe for concurrent use.
type Shell struct {
	now    func() time.Time
	logger *slog.Logger
	alerts []Alert

	mu        sync.Mutex
	view      View
	panelOpen bool
	alert     *Alert
	toast     *Toast
	verdict   *bool
}

// Option configures the Shell.
type Option func(*Shell)

// WithClock injects the time source used for toast expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Shell) {
		s.now = now
	}
}

// WithLogger configures a logger for the Shell.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Shell) {
		s.logger = logger
	}
}

// WithAlerts replaces the built-in alert feed.
func WithAlerts(alerts ...Alert) Option {
	return func(s *Shell) {
		s.alerts = append([]Alert(nil), alerts...)
	}
}

// New creates a shell on the executive view with the panel closed.
func New(opts ...Option) *Shell {
	s := &Shell{
		now:    time.Now,
		logger: logging.NewNop(),
		alerts: DefaultAlerts(),
		view:   ViewExecutive,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Navigate switches the active view.
func (s *Shell) Navigate(view View) error {
	if view != ViewExecutive && view != ViewEngineer {
		return fmt.Errorf("%w: %q", ErrUnknownView, view)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = view
	s.logger.Info("view changed", "view", view)
	return nil
}

// HandleNavigation applies a session's navigation signal: the panel closes
// and the target view becomes active.
func (s *Shell) HandleNavigation(nav domain.Navigation) error {
	if err := s.Navigate(View(nav.View)); err != nil {
		return err
	}
	s.ClosePanel()
	return nil
}

// OpenPanel selects an alert and opens the assistant panel on it.
func (s *Shell) OpenPanel(alertID int) error {
	for i := range s.alerts {
		if s.alerts[i].ID == alertID {
			a := s.alerts[i]
			s.mu.Lock()
			s.alert = &a
			s.panelOpen = true
			s.mu.Unlock()
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrUnknownAlert, alertID)
}

// ClosePanel hides the assistant panel, keeping the selected alert.
func (s *Shell) ClosePanel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panelOpen = false
}

// Act runs an engineer action and raises its toast.
func (s *Shell) Act(action string) (Toast, error) {
	tmpl, ok := actionToasts[action]
	if !ok {
		return Toast{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	toast := tmpl
	toast.Action = action
	toast.ExpiresAt = s.now().Add(ToastLifetime)

	s.mu.Lock()
	s.toast = &toast
	s.mu.Unlock()

	s.logger.Info("shell action", "action", action, "kind", toast.Kind)
	return toast, nil
}

// SetRootCause records the engineer's verdict on the proposed root cause.
func (s *Shell) SetRootCause(confirmed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verdict = &confirmed
}

// State returns a copy of the shell state. Expired toasts are dropped.
func (s *Shell) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.toast != nil && !s.now().Before(s.toast.ExpiresAt) {
		s.toast = nil
	}

	st := State{View: s.view, PanelOpen: s.panelOpen}
	if s.alert != nil {
		a := *s.alert
		st.Alert = &a
	}
	if s.toast != nil {
		t := *s.toast
		st.Toast = &t
	}
	if s.verdict != nil {
		v := *s.verdict
		st.RootCauseConfirmed = &v
	}
	return st
}

// Alerts returns the alert feed shown on the executive view.
func (s *Shell) Alerts() []Alert {
	return append([]Alert(nil), s.alerts...)
}
