package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/genie/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runChat(t *testing.T, opts ChatOptions) string {
	t.Helper()
	deps, err := Build(context.Background(), fastConfig(), logging.NewNop())
	require.NoError(t, err)
	defer deps.Close()

	var out bytes.Buffer
	opts.Out = &out
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, RunChat(ctx, deps, opts))
	return out.String()
}

func TestRunChat_HandsOffToShell(t *testing.T) {
	out := runChat(t, ChatOptions{
		SessionID: "cli-1",
		In:        strings.NewReader("2\nroot-cause\n"),
	})

	assert.Contains(t, out, "Compare with control batches")
	assert.Contains(t, out, "Batch Comparison")
	assert.Contains(t, out, "[Dashboard] engineer view is now active")
	assert.Contains(t, out, "chargeback, quarantine, maintenance")
}

func TestRunChat_Exit(t *testing.T) {
	out := runChat(t, ChatOptions{Headless: true, In: strings.NewReader("exit\n")})
	assert.NotContains(t, out, "[Dashboard]")
}

func TestRunChat_JSON(t *testing.T) {
	out := runChat(t, ChatOptions{
		JSON: true,
		In:   strings.NewReader(`{"action":"compare-batches"}` + "\n" + `{"action":"root-cause"}` + "\n"),
	})

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.True(t, json.Valid([]byte(line)), line)
	}
	assert.NotContains(t, out, "[Dashboard]")
	assert.Contains(t, out, `"navigate"`)
}
