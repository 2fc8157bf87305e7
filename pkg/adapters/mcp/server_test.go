package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/genie/internal/runtime"
	"github.com/aretw0/genie/internal/testutils"
	"github.com/aretw0/genie/pkg/domain"
	"github.com/aretw0/genie/pkg/script"
	"github.com/aretw0/genie/pkg/scripts"
	"github.com/aretw0/genie/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts ...Option) (*Server, *testutils.ManualScheduler) {
	t.Helper()
	store, err := script.Load(scripts.Quality())
	require.NoError(t, err)

	clock := testutils.NewManualScheduler()
	mgr := session.NewManager(store, session.WithSessionOptions(runtime.WithScheduler(clock)))
	t.Cleanup(mgr.CloseAll)
	return NewServer(mgr, opts...), clock
}

func TestServer_OpenAndGet(t *testing.T) {
	s, clock := newTestServer(t)
	ctx := context.Background()

	opened, err := s.handleOpen(ctx, mcp.CallToolRequest{}, struct{}{})
	require.NoError(t, err)
	assert.True(t, opened.Snapshot.Busy)
	id := opened.Snapshot.SessionID
	require.NotEmpty(t, id)

	clock.RunAll()
	got, err := s.handleGet(ctx, mcp.CallToolRequest{}, SessionArgs{SessionID: id})
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseIdle, got.Snapshot.Phase)
	assert.Len(t, got.Snapshot.Actions, 2)

	_, err = s.handleGet(ctx, mcp.CallToolRequest{}, SessionArgs{SessionID: "missing"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestServer_Submit(t *testing.T) {
	s, clock := newTestServer(t)
	ctx := context.Background()

	opened, err := s.handleOpen(ctx, mcp.CallToolRequest{}, struct{}{})
	require.NoError(t, err)
	id := opened.Snapshot.SessionID

	_, err = s.handleSubmit(ctx, mcp.CallToolRequest{}, SubmitArgs{SessionID: id, Action: "check-genealogy"})
	assert.ErrorIs(t, err, domain.ErrIllegalAction)
	assert.Contains(t, err.Error(), "offered: none")

	clock.RunAll()
	resp, err := s.handleSubmit(ctx, mcp.CallToolRequest{}, SubmitArgs{SessionID: id, Action: "compare-batches"})
	require.NoError(t, err)
	assert.Equal(t, "comparison", resp.Snapshot.StepID)
	assert.True(t, resp.Snapshot.Busy)
	assert.Nil(t, resp.Navigation)

	_, err = s.handleSubmit(ctx, mcp.CallToolRequest{}, SubmitArgs{SessionID: id, Action: "bogus"})
	assert.ErrorIs(t, err, domain.ErrIllegalAction)

	clock.RunAll()
	resp, err = s.handleSubmit(ctx, mcp.CallToolRequest{}, SubmitArgs{SessionID: id, Action: "root-cause"})
	require.NoError(t, err)
	require.NotNil(t, resp.Navigation)
	assert.Equal(t, "engineer", resp.Navigation.View)
	assert.Equal(t, "root-cause", resp.Navigation.ActionID)
}

func TestServer_SubmitWait(t *testing.T) {
	s, clock := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opened, err := s.handleOpen(ctx, mcp.CallToolRequest{}, struct{}{})
	require.NoError(t, err)
	clock.RunAll()

	go func() {
		ticker := time.NewTicker(5 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				clock.RunAll()
			}
		}
	}()

	resp, err := s.handleSubmit(ctx, mcp.CallToolRequest{}, SubmitArgs{
		SessionID: opened.Snapshot.SessionID,
		Action:    "check-genealogy",
		Wait:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseIdle, resp.Snapshot.Phase)
	assert.Equal(t, "genealogy", resp.Snapshot.StepID)
	assert.NotEmpty(t, resp.Snapshot.Actions)
}

func TestServer_SubmitWaitTimeout(t *testing.T) {
	s, clock := newTestServer(t, WithWaitTimeout(20*time.Millisecond))
	ctx := context.Background()

	opened, err := s.handleOpen(ctx, mcp.CallToolRequest{}, struct{}{})
	require.NoError(t, err)
	clock.RunAll()

	resp, err := s.handleSubmit(ctx, mcp.CallToolRequest{}, SubmitArgs{
		SessionID: opened.Snapshot.SessionID,
		Action:    "check-genealogy",
		Wait:      true,
	})
	require.NoError(t, err)
	assert.True(t, resp.Snapshot.Busy, "the snapshot is returned as is when the wait expires")
}

func TestServer_Reset(t *testing.T) {
	s, clock := newTestServer(t)
	ctx := context.Background()

	opened, err := s.handleOpen(ctx, mcp.CallToolRequest{}, struct{}{})
	require.NoError(t, err)
	clock.RunAll()

	resp, err := s.handleReset(ctx, mcp.CallToolRequest{}, SessionArgs{SessionID: opened.Snapshot.SessionID})
	require.NoError(t, err)
	assert.Equal(t, "initial", resp.Snapshot.StepID)
	assert.Empty(t, resp.Snapshot.Transcript)

	_, err = s.handleReset(ctx, mcp.CallToolRequest{}, SessionArgs{SessionID: "missing"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestOffered(t *testing.T) {
	assert.Equal(t, "none", offered(domain.Snapshot{}))
	assert.Equal(t, "a, b", offered(domain.Snapshot{Actions: []domain.Action{{ID: "a"}, {ID: "b"}}}))
}
