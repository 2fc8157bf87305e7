package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aretw0/genie/internal/runtime"
	"github.com/aretw0/genie/pkg/domain"
	"github.com/aretw0/genie/pkg/runner"
	"github.com/aretw0/genie/pkg/shell"
	"github.com/go-chi/chi/v5"
)

type actionRequest struct {
	Action string `json:"action"`
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.List())
}

// OpenSession handles POST /sessions.
func (s *Server) OpenSession(w http.ResponseWriter, r *http.Request) {
	_, snap, err := s.manager.Open(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/sessions/"+snap.SessionID)
	writeJSON(w, http.StatusCreated, snap)
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// CloseSession handles DELETE /sessions/{id}.
func (s *Server) CloseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.manager.Close(id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.mu.Lock()
	delete(s.shells, id)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// SubmitAction handles POST /sessions/{id}/actions.
func (s *Server) SubmitAction(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	action, ok := s.decodeAction(w, r)
	if !ok {
		return
	}

	snap, err := sess.Submit(r.Context(), action)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.followNavigation(snap, action)
	writeJSON(w, http.StatusOK, snap)
}

// ResetSession handles POST /sessions/{id}/reset.
func (s *Server) ResetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.manager.Restart(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// GetShell handles GET /sessions/{id}/shell.
func (s *Server) GetShell(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.shellFor(sess.ID()).State())
}

// SubmitShellAction handles POST /sessions/{id}/shell/actions.
func (s *Server) SubmitShellAction(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	action, ok := s.decodeAction(w, r)
	if !ok {
		return
	}

	toast, err := s.shellFor(sess.ID()).Act(action)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toast)
}

// SetShellView handles POST /sessions/{id}/shell/view.
func (s *Server) SetShellView(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body struct {
		View string `json:"view"`
	}
	if !s.decode(w, r, &body) {
		return
	}

	sh := s.shellFor(sess.ID())
	if err := sh.Navigate(shell.View(body.View)); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sh.State())
}

// OpenShellPanel handles POST /sessions/{id}/shell/panel.
func (s *Server) OpenShellPanel(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body struct {
		AlertID int `json:"alert_id"`
	}
	if !s.decode(w, r, &body) {
		return
	}

	sh := s.shellFor(sess.ID())
	if err := sh.OpenPanel(body.AlertID); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sh.State())
}

// CloseShellPanel handles DELETE /sessions/{id}/shell/panel.
func (s *Server) CloseShellPanel(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sh := s.shellFor(sess.ID())
	sh.ClosePanel()
	writeJSON(w, http.StatusOK, sh.State())
}

// SetRootCause handles POST /sessions/{id}/shell/root-cause.
func (s *Server) SetRootCause(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Confirmed *bool `json:"confirmed"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	if body.Confirmed == nil {
		writeError(w, http.StatusBadRequest, "confirmed is required", "")
		return
	}

	sh := s.shellFor(sess.ID())
	sh.SetRootCause(*body.Confirmed)
	writeJSON(w, http.StatusOK, sh.State())
}

// ListAlerts handles GET /alerts.
func (s *Server) ListAlerts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, shell.New(s.shellOpts...).Alerts())
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*runtime.Session, bool) {
	sess, err := s.manager.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) decodeAction(w http.ResponseWriter, r *http.Request) (string, bool) {
	var body actionRequest
	if !s.decode(w, r, &body) {
		return "", false
	}
	clean, err := runner.SanitizeInput(body.Action)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid input: %v", err), "")
		s.logger.Warn("input rejected", "error", err, "size", len(body.Action))
		return "", false
	}
	return clean, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		s.logger.Warn("invalid request body", "path", r.URL.Path, "error", err)
		return false
	}
	return true
}

func (s *Server) shellFor(sessionID string) *shell.Shell {
	s.mu.Lock()
	defer s.mu.Unlock()

	sh, ok := s.shells[sessionID]
	if !ok {
		opts := append([]shell.Option{shell.WithLogger(s.logger)}, s.shellOpts...)
		sh = shell.New(opts...)
		s.shells[sessionID] = sh
	}
	return sh
}

// followNavigation hands a terminal step's view to the session's shell.
func (s *Server) followNavigation(snap domain.Snapshot, actionID string) {
	step, err := s.manager.Store().Get(snap.StepID)
	if err != nil || !step.IsTerminal() {
		return
	}
	nav := domain.Navigation{SessionID: snap.SessionID, ActionID: actionID, StepID: step.ID, View: step.Navigate}
	if err := s.shellFor(snap.SessionID).HandleNavigation(nav); err != nil {
		s.logger.Warn("navigation not applied", "session_id", snap.SessionID, "view", nav.View, "error", err)
	}
}
