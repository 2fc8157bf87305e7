package script

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/genie/pkg/domain"
	"github.com/aretw0/genie/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLoader struct {
	script domain.Script
	err    error
}

func (l staticLoader) Load(ctx context.Context) (domain.Script, error) {
	return l.script, l.err
}

func TestLoad_ContractFixture(t *testing.T) {
	store, err := Load(tests.ContractScript())
	require.NoError(t, err)

	assert.Equal(t, "contract", store.Name())
	assert.Equal(t, "initial", store.Initial().ID)

	ids := make([]string, 0)
	for _, s := range store.Steps() {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"initial", "alpha", "beta", "done"}, ids)

	actions, err := store.Actions("alpha")
	require.NoError(t, err)
	assert.Equal(t, []string{"chart", "finish"}, []string{actions[0].ID, actions[1].ID})
}

func TestGet_NotFound(t *testing.T) {
	store, err := Load(tests.ContractScript())
	require.NoError(t, err)

	_, err = store.Get("ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var nf *domain.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "ghost", nf.StepID)

	_, err = store.Actions("ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_IsImmutable(t *testing.T) {
	def := tests.ContractScript()
	store, err := Load(def)
	require.NoError(t, err)

	// Mutating the input after load must not leak into the store.
	def.Steps[1].Responses[0].Attachment.Table.Rows[0]["lot"] = "#mutated"
	def.Steps[1].Actions[0].Target = "nowhere"

	step, err := store.Get("alpha")
	require.NoError(t, err)
	assert.Equal(t, "#1", step.Responses[0].Attachment.Table.Rows[0]["lot"])
	assert.Equal(t, "beta", step.Actions[0].Target)

	// Neither must mutating a returned copy.
	step.Responses[0].Text = "changed"
	again, _ := store.Get("alpha")
	assert.Equal(t, "Alpha data", again.Responses[0].Text)
}

func TestLoadFrom(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		store, err := LoadFrom(context.Background(), staticLoader{script: tests.ContractScript()})
		require.NoError(t, err)
		assert.Len(t, store.Steps(), 4)
	})

	t.Run("Loader Error", func(t *testing.T) {
		boom := errors.New("disk on fire")
		_, err := LoadFrom(context.Background(), staticLoader{err: boom})
		assert.ErrorIs(t, err, boom)
	})
}

func TestLoad_ValidationErrors(t *testing.T) {
	text := []domain.Response{{Text: "hi"}}

	tests := []struct {
		name   string
		def    domain.Script
		reason string
	}{
		{
			name:   "Empty Script",
			def:    domain.Script{},
			reason: "no steps",
		},
		{
			name: "Dangling Action Target",
			def: domain.Script{Steps: []domain.Step{
				{ID: "initial", Responses: text, Actions: []domain.Action{{ID: "go", Label: "Go", Target: "missing"}}},
			}},
			reason: `targets unknown step "missing"`,
		},
		{
			name: "Duplicate Step IDs",
			def: domain.Script{Steps: []domain.Step{
				{ID: "initial", Responses: text},
				{ID: "initial", Responses: text},
			}},
			reason: "duplicate step id",
		},
		{
			name: "Empty Step ID",
			def: domain.Script{Steps: []domain.Step{
				{ID: "initial", Responses: text},
				{ID: "", Responses: text},
			}},
			reason: "empty id",
		},
		{
			name: "Unreachable Step",
			def: domain.Script{Steps: []domain.Step{
				{ID: "initial", Responses: text},
				{ID: "island", Responses: text},
			}},
			reason: "unreachable",
		},
		{
			name: "Missing Initial",
			def: domain.Script{Initial: "start", Steps: []domain.Step{
				{ID: "initial", Responses: text},
			}},
			reason: `initial step "start" is not defined`,
		},
		{
			name: "Duplicate Action IDs",
			def: domain.Script{Steps: []domain.Step{
				{ID: "initial", Responses: text, Actions: []domain.Action{
					{ID: "go", Label: "Go", Target: "next"},
					{ID: "go", Label: "Go again", Target: "next"},
				}},
				{ID: "next", Responses: text},
			}},
			reason: `duplicate action id "go"`,
		},
		{
			name: "Predecessor Mismatch",
			def: domain.Script{Steps: []domain.Step{
				{ID: "initial", Responses: text, Actions: []domain.Action{{ID: "go", Label: "Go", Target: "next"}}},
				{ID: "next", Predecessors: []string{"other"}, Responses: text},
				{ID: "other", Responses: text},
			}},
			reason: `does not list "initial" as a predecessor`,
		},
		{
			name: "Initial Without Keyword",
			def: domain.Script{Steps: []domain.Step{
				{ID: "initial", Predecessors: []string{"next"}, Responses: text, Actions: []domain.Action{{ID: "go", Label: "Go", Target: "next"}}},
				{ID: "next", Responses: text, Actions: []domain.Action{{ID: "back", Label: "Back", Target: "initial"}}},
			}},
			reason: "must list \"initial\" among its predecessors",
		},
		{
			name: "Terminal With Responses",
			def: domain.Script{Steps: []domain.Step{
				{ID: "initial", Responses: text, Actions: []domain.Action{{ID: "go", Label: "Go", Target: "end"}}},
				{ID: "end", Navigate: "engineer", Responses: text},
			}},
			reason: "terminal step cannot declare responses",
		},
		{
			name: "Step Without Responses",
			def: domain.Script{Steps: []domain.Step{
				{ID: "initial"},
			}},
			reason: "no responses",
		},
		{
			name: "Table And Chart",
			def: domain.Script{Steps: []domain.Step{
				{ID: "initial", Responses: []domain.Response{{Text: "x", Attachment: &domain.Attachment{
					Table: &domain.Table{Columns: []string{"a"}},
					Chart: &domain.Chart{Kind: domain.ChartBar, Series: []domain.Series{{Name: "s"}}},
				}}}},
			}},
			reason: "both a table and a chart",
		},
		{
			name: "Unknown Table Column",
			def: domain.Script{Steps: []domain.Step{
				{ID: "initial", Responses: []domain.Response{{Text: "x", Attachment: &domain.Attachment{
					Table: &domain.Table{Columns: []string{"a"}, Rows: []map[string]any{{"b": 1}}},
				}}}},
			}},
			reason: `unknown column "b"`,
		},
		{
			name: "Unsupported Chart Kind",
			def: domain.Script{Steps: []domain.Step{
				{ID: "initial", Responses: []domain.Response{{Text: "x", Attachment: &domain.Attachment{
					Chart: &domain.Chart{Kind: "pie", Series: []domain.Series{{Name: "s"}}},
				}}}},
			}},
			reason: `chart kind "pie"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.def)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)

			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.True(t, hasReason(verr.Problems, tt.reason), "expected a problem containing %q, got %v", tt.reason, verr.Problems)
		})
	}
}

func TestLoad_AggregatesProblems(t *testing.T) {
	def := domain.Script{Steps: []domain.Step{
		{ID: "initial", Responses: []domain.Response{{Text: "hi"}}, Actions: []domain.Action{
			{ID: "a", Label: "A", Target: "missing-1"},
			{ID: "b", Label: "B", Target: "missing-2"},
		}},
		{ID: "island", Responses: []domain.Response{{Text: "alone"}}},
	}}

	_, err := Load(def)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Problems, 3)
	assert.Contains(t, err.Error(), "3 problems")
}

func hasReason(problems []domain.Problem, substr string) bool {
	for _, p := range problems {
		if strings.Contains(p.String(), substr) {
			return true
		}
	}
	return false
}
