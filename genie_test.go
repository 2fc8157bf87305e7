package genie_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/genie"
	"github.com/aretw0/genie/internal/testutils"
	"github.com/aretw0/genie/pkg/adapters/memory"
	"github.com/aretw0/genie/pkg/domain"
	"github.com/aretw0/genie/pkg/scripts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_BuiltinScript(t *testing.T) {
	eng, err := genie.New("")
	require.NoError(t, err)

	assert.Equal(t, "quality-investigation", eng.Name)
	assert.Equal(t, "initial", eng.Store().Initial().ID)
}

func TestNew_ScriptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quality.yaml")
	require.NoError(t, os.WriteFile(path, scripts.QualityRaw(), 0o644))

	eng, err := genie.New(path)
	require.NoError(t, err)
	assert.Len(t, eng.Store().Steps(), len(scripts.Quality().Steps))
}

func TestNew_LoamDirectory(t *testing.T) {
	dir := t.TempDir()
	docs := map[string]string{
		"initial.md": "---\ninitial: true\norder: 1\npredecessors: [initial]\ndelay: 1s\nactions:\n  - {id: go, label: Go, target: done}\n---\nHello\n",
		"done.md":    "---\norder: 2\nnavigate: engineer\n---\n",
	}
	for name, content := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	eng, err := genie.New(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(dir), eng.Name)
	assert.Equal(t, "initial", eng.Store().Initial().ID)
}

func TestNew_Errors(t *testing.T) {
	_, err := genie.New(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	broken := memory.NewFromSteps(domain.Step{ID: "initial"})
	_, err = genie.New("", genie.WithLoader(broken))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestEngine_SessionLifecycle(t *testing.T) {
	clock := testutils.NewManualScheduler()
	var entered []string
	eng, err := genie.New("",
		genie.WithScheduler(clock),
		genie.WithLifecycleHooks(domain.LifecycleHooks{
			OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
				entered = append(entered, e.StepID)
			},
		}),
	)
	require.NoError(t, err)

	var nav domain.Navigation
	sess := eng.NewSession("s1", genie.WithOnNavigate(func(n domain.Navigation) { nav = n }))
	ctx := context.Background()

	_, err = sess.Initialize(ctx)
	require.NoError(t, err)
	clock.Advance(time.Second)

	_, err = sess.Submit(ctx, "check-genealogy")
	require.NoError(t, err)
	clock.RunAll()

	snap, err := sess.Submit(ctx, "root-cause")
	require.NoError(t, err)
	assert.Equal(t, "root-cause", snap.StepID)
	assert.Equal(t, "engineer", nav.View)
	assert.Equal(t, []string{"initial", "genealogy", "root-cause"}, entered)
}

func TestEngine_SessionsAreIsolated(t *testing.T) {
	clock := testutils.NewManualScheduler()
	eng, err := genie.New("", genie.WithScheduler(clock), genie.WithLatencyScale(0))
	require.NoError(t, err)

	ctx := context.Background()
	a := eng.NewSession("a")
	b := eng.NewSession("b")
	_, err = a.Initialize(ctx)
	require.NoError(t, err)
	_, err = b.Initialize(ctx)
	require.NoError(t, err)
	clock.RunAll()

	_, err = a.Reset(ctx)
	require.NoError(t, err)
	assert.Empty(t, a.Snapshot().Transcript)
	assert.Len(t, b.Snapshot().Transcript, 1)
}
