package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/genie"
	"github.com/aretw0/genie/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *genie.Engine {
	t.Helper()
	eng, err := genie.New("", genie.WithLatencyScale(0))
	require.NoError(t, err)
	return eng
}

type runResult struct {
	nav *domain.Navigation
	err error
}

func runAsync(t *testing.T, r *Runner, eng *genie.Engine) runResult {
	t.Helper()
	done := make(chan runResult, 1)
	go func() {
		nav, err := r.Run(t.Context(), eng, "chat")
		done <- runResult{nav, err}
	}()

	select {
	case res := <-done:
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("runner timed out")
		return runResult{}
	}
}

func TestRunner_Run_NavigatesToEngineer(t *testing.T) {
	in := strings.NewReader("1\nroot-cause\n")
	out := &bytes.Buffer{}
	r := NewRunner(WithInputHandler(NewTextHandler(in, out)), WithHeadless(true))

	res := runAsync(t, r, newEngine(t))
	require.NoError(t, res.err)
	require.NotNil(t, res.nav)
	assert.Equal(t, "engineer", res.nav.View)
	assert.Equal(t, "root-cause", res.nav.StepID)

	output := out.String()
	assert.Contains(t, output, "1) ")
	assert.Contains(t, output, "```sql")
	assert.Contains(t, output, "FINDING")
	assert.Contains(t, output, "Opening the engineer view")
}

func TestRunner_Run_ResolvesLabels(t *testing.T) {
	in := strings.NewReader("Compare Batches\nview hsi chart\nroot-cause\n")
	out := &bytes.Buffer{}
	r := NewRunner(WithInputHandler(NewTextHandler(in, out)), WithHeadless(true))

	res := runAsync(t, r, newEngine(t))
	require.NoError(t, res.err)
	require.NotNil(t, res.nav)
	assert.Contains(t, out.String(), "Hop Storage Index by Lot")
}

func TestRunner_Run_UnknownActionReprompts(t *testing.T) {
	in := strings.NewReader("launch\nexit\n")
	out := &bytes.Buffer{}
	r := NewRunner(WithInputHandler(NewTextHandler(in, out)), WithHeadless(true))

	res := runAsync(t, r, newEngine(t))
	require.NoError(t, res.err)
	assert.Nil(t, res.nav)
	assert.Contains(t, out.String(), `[System] Unknown action "launch"`)
}

func TestRunner_Run_Reset(t *testing.T) {
	in := strings.NewReader("1\nreset\nquit\n")
	out := &bytes.Buffer{}
	r := NewRunner(WithInputHandler(NewTextHandler(in, out)), WithHeadless(true))

	res := runAsync(t, r, newEngine(t))
	require.NoError(t, res.err)
	assert.Nil(t, res.nav)
	assert.Contains(t, out.String(), "conversation restarted")
}

func TestRunner_Run_EOFEndsChat(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewRunner(WithInputHandler(NewTextHandler(strings.NewReader(""), out)))

	res := runAsync(t, r, newEngine(t))
	require.NoError(t, res.err)
	assert.Nil(t, res.nav)
}

func TestRunner_Run_ContextCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunner(WithInputHandler(NewTextHandler(pr, io.Discard)), WithHeadless(true))

	done := make(chan error, 1)
	go func() {
		_, err := r.Run(ctx, newEngine(t), "cancel")
		done <- err
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner ignored cancellation")
	}
}

func TestRunner_Run_DefaultTextHandler(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewRunner()
	r.Input = strings.NewReader("exit\n")
	r.Output = out

	res := runAsync(t, r, newEngine(t))
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(out.String(), "--- Genie"))
	assert.Contains(t, out.String(), "Goodbye.")
}

func TestRunner_Run_JSONLines(t *testing.T) {
	in := strings.NewReader(`{"action":"check-genealogy"}` + "\n" + `"root-cause"` + "\n")
	out := &bytes.Buffer{}
	r := NewRunner(WithInputHandler(NewJSONHandler(in, out)))

	res := runAsync(t, r, newEngine(t))
	require.NoError(t, res.err)
	require.NotNil(t, res.nav)

	var last Event
	dec := json.NewDecoder(out)
	for dec.More() {
		require.NoError(t, dec.Decode(&last))
	}
	assert.Equal(t, SignalNavigate, last.Type)
	assert.Equal(t, "engineer", last.Args["view"])
}
