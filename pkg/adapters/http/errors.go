package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/genie/pkg/domain"
	"github.com/aretw0/genie/pkg/shell"
)

type errorBody struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) (int, string) {
	var illegal *domain.IllegalActionError
	switch {
	case errors.As(err, &illegal):
		return http.StatusConflict, illegal.Reason
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, ""
	case errors.Is(err, domain.ErrSessionClosed):
		return http.StatusGone, domain.ReasonClosed
	case errors.Is(err, shell.ErrUnknownAction), errors.Is(err, shell.ErrUnknownView),
		errors.Is(err, shell.ErrUnknownAlert):
		return http.StatusBadRequest, ""
	}
	return http.StatusInternalServerError, ""
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, reason := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.DebugContext(r.Context(), "request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, status, err.Error(), reason)
}

func writeError(w http.ResponseWriter, status int, msg, reason string) {
	writeJSON(w, status, errorBody{Error: msg, Reason: reason})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}
