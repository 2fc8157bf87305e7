package tests

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/genie/pkg/domain"
	"github.com/aretw0/genie/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ContractScript is the fixture every ScriptLoader adapter must be able to express.
// Adapter tests write it in their own format and hand the loader to ScriptLoaderContractTest.
//
//	initial -> alpha -> beta -> done
//	             \--------------^
func ContractScript() domain.Script {
	return domain.Script{
		Name:    "contract",
		Initial: "initial",
		Steps: []domain.Step{
			{
				ID:           "initial",
				Predecessors: []string{domain.InitialPredecessor},
				Responses:    []domain.Response{{Delay: 10 * time.Millisecond, Text: "Welcome"}},
				Actions:      []domain.Action{{ID: "go-alpha", Label: "Go to alpha", Target: "alpha"}},
			},
			{
				ID:           "alpha",
				Predecessors: []string{"initial"},
				Responses: []domain.Response{
					{
						Delay: 20 * time.Millisecond,
						Text:  "Alpha data",
						Attachment: &domain.Attachment{Table: &domain.Table{
							Query:   "SELECT lot, hsi FROM lots",
							Columns: []string{"lot", "hsi"},
							Rows:    []map[string]any{{"lot": "#1", "hsi": 0.5}},
						}},
					},
					{Delay: 30 * time.Millisecond, Text: "Alpha done"},
				},
				Actions: []domain.Action{
					{ID: "chart", Label: "Show chart", Target: "beta"},
					{ID: "finish", Label: "Finish", Target: "done"},
				},
			},
			{
				ID:           "beta",
				Predecessors: []string{"alpha"},
				Responses: []domain.Response{{
					Text: "Beta chart",
					Attachment: &domain.Attachment{Chart: &domain.Chart{
						Title:  "Levels",
						Kind:   domain.ChartBar,
						Series: []domain.Series{{Name: "hsi", Points: []domain.Point{{Label: "#1", Value: 0.5}}}},
					}},
				}},
				Actions: []domain.Action{{ID: "finish", Label: "Finish", Target: "done"}},
			},
			{
				ID:           "done",
				Predecessors: []string{"alpha", "beta"},
				Navigate:     "engineer",
			},
		},
	}
}

// ScriptLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.ScriptLoader.
// The loader must be backed by the ContractScript fixture.
func ScriptLoaderContractTest(t *testing.T, loader ports.ScriptLoader) {
	t.Helper()
	want := ContractScript()

	t.Run("Load_Fixture", func(t *testing.T) {
		got, err := loader.Load(context.Background())
		require.NoError(t, err)
		assertScriptEqual(t, want, got)
	})

	t.Run("Load_Repeatable", func(t *testing.T) {
		first, err := loader.Load(context.Background())
		require.NoError(t, err)
		second, err := loader.Load(context.Background())
		require.NoError(t, err)
		assertScriptEqual(t, first, second)
	})

	t.Run("Load_CancelledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := loader.Load(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func assertScriptEqual(t *testing.T, want, got domain.Script) {
	t.Helper()
	assert.Equal(t, want.InitialStepID(), got.InitialStepID(), "initial step")
	require.Len(t, got.Steps, len(want.Steps), "step count")

	for i, ws := range want.Steps {
		gs := got.Steps[i]
		assert.Equal(t, ws.ID, gs.ID, "step %d id", i)
		assert.ElementsMatch(t, ws.Predecessors, gs.Predecessors, "step %q predecessors", ws.ID)
		assert.Equal(t, ws.Navigate, gs.Navigate, "step %q navigate", ws.ID)
		assert.Equal(t, len(ws.Actions), len(gs.Actions), "step %q actions", ws.ID)
		for j := range ws.Actions {
			if j < len(gs.Actions) {
				assert.Equal(t, ws.Actions[j], gs.Actions[j], "step %q action %d", ws.ID, j)
			}
		}

		require.Len(t, gs.Responses, len(ws.Responses), "step %q responses", ws.ID)
		for j, wr := range ws.Responses {
			gr := gs.Responses[j]
			assert.Equal(t, wr.Text, gr.Text, "step %q response %d text", ws.ID, j)
			assert.Equal(t, wr.Delay, gr.Delay, "step %q response %d delay", ws.ID, j)
			assertAttachmentEqual(t, wr.Attachment, gr.Attachment)
		}
	}
}

func assertAttachmentEqual(t *testing.T, want, got *domain.Attachment) {
	t.Helper()
	if want == nil {
		assert.Nil(t, got)
		return
	}
	require.NotNil(t, got)

	if want.Table != nil {
		require.NotNil(t, got.Table)
		assert.Equal(t, want.Table.Query, got.Table.Query)
		assert.Equal(t, want.Table.Columns, got.Table.Columns)
		require.Len(t, got.Table.Rows, len(want.Table.Rows))
		for i, row := range want.Table.Rows {
			for k, v := range row {
				assert.EqualValues(t, v, got.Table.Rows[i][k], "row %d column %q", i, k)
			}
		}
	} else {
		assert.Nil(t, got.Table)
	}

	if want.Chart != nil {
		require.NotNil(t, got.Chart)
		assert.Equal(t, want.Chart.Title, got.Chart.Title)
		assert.Equal(t, want.Chart.Kind, got.Chart.Kind)
		assert.Equal(t, want.Chart.Series, got.Chart.Series)
	} else {
		assert.Nil(t, got.Chart)
	}
}
