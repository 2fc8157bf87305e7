package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/genie/internal/presentation/tui"
	"github.com/aretw0/genie/pkg/domain"
)

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer

	rendered int  // transcript entries already printed
	thinking bool // busy indicator shown for the current response

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

// pump reads lines in the background so Input can honour cancellation.
func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				h.inputChan <- inputResult{err: err}
			}
			close(h.inputChan)
			return
		}
	}
}

// Output prints the entries appended since the last call, a busy indicator
// while a response is pending and the numbered actions once idle.
func (h *TextHandler) Output(ctx context.Context, snap domain.Snapshot) error {
	if h.rendered > 0 && (snap.Phase == domain.PhaseUninitialized || len(snap.Transcript) < h.rendered) {
		h.rendered = 0
		fmt.Fprintln(h.Writer, "\n--- conversation restarted ---")
	}

	for _, e := range snap.Transcript[h.rendered:] {
		output := tui.EntryMarkdown(e)
		if h.Renderer != nil {
			if rendered, err := h.Renderer(output); err == nil {
				output = rendered
			}
		}
		fmt.Fprintln(h.Writer, strings.TrimRight(output, "\n"))
		h.thinking = false
	}
	h.rendered = len(snap.Transcript)

	switch snap.Phase {
	case domain.PhaseBusy:
		if !h.thinking {
			fmt.Fprintln(h.Writer, "…")
			h.thinking = true
		}
	case domain.PhaseIdle:
		h.thinking = false
		if len(snap.Actions) > 0 {
			fmt.Fprintln(h.Writer)
			for i, a := range snap.Actions {
				fmt.Fprintf(h.Writer, "  %d) %s [%s]\n", i+1, a.Label, a.ID)
			}
		}
	}
	return nil
}

func (h *TextHandler) Input(ctx context.Context) (string, error) {
	h.initPump()

	for {
		// Only show prompt if context is not yet done
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
			fmt.Fprint(h.Writer, "> ")
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}

			clean, err := SanitizeInput(strings.TrimSpace(res.text))
			if err != nil {
				fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
				continue
			}
			if clean == "" {
				continue
			}
			return clean, nil
		}
	}
}

func (h *TextHandler) Signal(ctx context.Context, name string, args map[string]any) error {
	switch name {
	case SignalNavigate:
		fmt.Fprintf(h.Writer, "\n➜ Opening the %v view\n", args["view"])
	default:
		fmt.Fprintf(h.Writer, "[%s]\n", name)
	}
	return nil
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	fmt.Fprintf(h.Writer, "[System] %s\n", msg)
	return nil
}
