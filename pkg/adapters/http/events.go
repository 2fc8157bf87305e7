package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aretw0/genie/pkg/session"
	"github.com/oapi-codegen/runtime"
)

// SubscribeEvents handles GET /sessions/{id}/events (SSE).
// The stream opens with a ping and the current snapshot, then forwards every
// diff and navigate message published for the session.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var watch *string
	if err := runtime.BindQueryParameter("form", true, false, "watch", r.URL.Query(), &watch); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid format for parameter watch: %v", err), "")
		return
	}
	var watchList []string
	if watch != nil && *watch != "" {
		watchList = strings.Split(*watch, ",")
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("streaming not supported")
		return
	}

	// Subscribe before snapshotting so no transition falls between the two.
	// Messages already covered by the snapshot revision are skipped.
	ch, err := s.manager.Publisher().Subscribe(r.Context(), sess.ID())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	snap := sess.Snapshot()
	if payload, err := json.Marshal(snap); err == nil {
		fmt.Fprintf(w, "id: %d\nevent: snapshot\ndata: %s\n\n", snap.Revision, payload)
	}
	flusher.Flush()
	s.logger.Info("sse client subscribed", "session_id", sess.ID())

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("sse client disconnected", "session_id", sess.ID())
			return
		case payload, ok := <-ch:
			if !ok {
				return
			}
			msg, err := session.DecodeMessage(payload)
			if err == nil && msg.Revision != 0 && msg.Revision <= snap.Revision {
				continue
			}
			if len(watchList) > 0 && !watched(msg, err, watchList) {
				continue
			}
			if err == nil && msg.Revision != 0 {
				fmt.Fprintf(w, "id: %d\n", msg.Revision)
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// watched reports whether a published message touches any watched field.
// Undecodable payloads are always forwarded.
func watched(msg session.Message, decodeErr error, fields []string) bool {
	if decodeErr != nil {
		return true
	}
	for _, field := range fields {
		switch strings.TrimSpace(field) {
		case "navigation":
			if msg.Navigation != nil {
				return true
			}
		case "transcript":
			if msg.Diff != nil && (len(msg.Diff.Appended) > 0 || msg.Diff.Reset) {
				return true
			}
		case "actions":
			if msg.Diff != nil && msg.Diff.Actions != nil {
				return true
			}
		case "phase":
			if msg.Diff != nil && msg.Diff.Phase != nil {
				return true
			}
		case "step":
			if msg.Diff != nil && msg.Diff.StepID != nil {
				return true
			}
		}
	}
	return false
}
