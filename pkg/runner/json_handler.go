package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/aretw0/genie/pkg/domain"
)

// Event is one JSON line written by the JSONHandler.
type Event struct {
	Type     string           `json:"type"`
	Snapshot *domain.Snapshot `json:"snapshot,omitempty"`
	Args     map[string]any   `json:"args,omitempty"`
	Message  string           `json:"message,omitempty"`
}

// Event types.
const (
	EventSnapshot = "snapshot"
	EventSystem   = "system"
)

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

// Output emits the full snapshot as a single JSON line.
func (h *JSONHandler) Output(ctx context.Context, snap domain.Snapshot) error {
	return h.Encoder.Encode(Event{Type: EventSnapshot, Snapshot: &snap})
}

// Input accepts {"action":"id"}, {"command":"reset"}, a JSON string or raw text.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	for {
		text, err := h.Reader.ReadString('\n')
		text = strings.TrimSpace(text)
		if text == "" {
			if err != nil {
				return "", err
			}
			continue
		}
		return SanitizeInput(decodeInput(text))
	}
}

func decodeInput(text string) string {
	var req struct {
		Action  string `json:"action"`
		Command string `json:"command"`
	}
	if err := json.Unmarshal([]byte(text), &req); err == nil {
		if req.Command != "" {
			return req.Command
		}
		return req.Action
	}

	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		return val
	}
	// Fallback: plain text
	return text
}

func (h *JSONHandler) Signal(ctx context.Context, name string, args map[string]any) error {
	return h.Encoder.Encode(Event{Type: name, Args: args})
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(Event{Type: EventSystem, Message: msg})
}
