package runner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/genie/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextHandler_Output(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), out, WithTextHandlerRenderer(func(s string) (string, error) {
		return "Rendered: " + s, nil
	}))
	ctx := context.Background()

	busy := domain.Snapshot{Phase: domain.PhaseBusy, StepID: "initial"}
	require.NoError(t, handler.Output(ctx, busy))
	require.NoError(t, handler.Output(ctx, busy))
	assert.Equal(t, 1, strings.Count(out.String(), "…"))

	idle := domain.Snapshot{
		Phase:      domain.PhaseIdle,
		StepID:     "initial",
		Transcript: []domain.Entry{{Seq: 1, Author: domain.AuthorAssistant, Text: "Hello"}},
		Actions:    []domain.Action{{ID: "go", Label: "Go on", Target: "next"}},
	}
	require.NoError(t, handler.Output(ctx, idle))
	assert.Contains(t, out.String(), "Rendered: Hello")
	assert.Contains(t, out.String(), "  1) Go on [go]")

	out.Reset()
	require.NoError(t, handler.Output(ctx, idle))
	assert.NotContains(t, out.String(), "Hello", "entries are printed once")

	out.Reset()
	require.NoError(t, handler.Output(ctx, domain.Snapshot{Phase: domain.PhaseUninitialized}))
	assert.Contains(t, out.String(), "conversation restarted")
}

func TestTextHandler_OutputRestartWithSameTranscriptLength(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), out)
	ctx := context.Background()

	opening := domain.Snapshot{
		Phase:      domain.PhaseIdle,
		StepID:     "initial",
		Transcript: []domain.Entry{{Seq: 1, Author: domain.AuthorAssistant, Text: "Opening"}},
	}
	require.NoError(t, handler.Output(ctx, opening))
	require.NoError(t, handler.Output(ctx, domain.Snapshot{Phase: domain.PhaseUninitialized, StepID: domain.NoStep}))
	require.NoError(t, handler.Output(ctx, opening))

	assert.Equal(t, 2, strings.Count(out.String(), "Opening"), out.String())
	assert.Equal(t, 1, strings.Count(out.String(), "conversation restarted"))
}

func TestMailbox_KeepsResetSnapshot(t *testing.T) {
	box := newMailbox()
	opening := domain.Snapshot{Phase: domain.PhaseIdle, StepID: "initial", Transcript: []domain.Entry{{Seq: 1}}}

	box.putSnapshot(domain.Snapshot{Phase: domain.PhaseBusy, StepID: "initial"})
	box.putSnapshot(opening)
	box.putSnapshot(domain.Snapshot{Phase: domain.PhaseUninitialized, StepID: domain.NoStep})
	box.putSnapshot(domain.Snapshot{Phase: domain.PhaseBusy, StepID: "initial"})
	box.putSnapshot(opening)

	snaps, nav := box.take()
	assert.Nil(t, nav)
	require.Len(t, snaps, 3)
	assert.Equal(t, domain.PhaseIdle, snaps[0].Phase)
	assert.Equal(t, domain.PhaseUninitialized, snaps[1].Phase)
	assert.Equal(t, opening, snaps[2])

	snaps, _ = box.take()
	assert.Empty(t, snaps)
}

func TestTextHandler_Input(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("\n  my input  \n\x1b[0m2\n"), out)
	ctx := context.Background()

	val, err := handler.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "my input", val)

	val, err = handler.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2", val)

	_, err = handler.Input(ctx)
	assert.ErrorIs(t, err, io.EOF)
	assert.True(t, strings.HasPrefix(out.String(), "> "))
}

func TestTextHandler_InputCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	handler := NewTextHandler(pr, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := handler.Input(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTextHandler_Signal(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), out)
	require.NoError(t, handler.Signal(context.Background(), SignalNavigate, map[string]any{"view": "engineer"}))
	require.NoError(t, handler.SystemOutput(context.Background(), "hi"))
	assert.Contains(t, out.String(), "Opening the engineer view")
	assert.Contains(t, out.String(), "[System] hi")
}
