package dsl_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/genie/pkg/domain"
	"github.com/aretw0/genie/pkg/dsl"
	"github.com/aretw0/genie/pkg/ports/tests"
	"github.com/aretw0/genie/pkg/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// contractScript rebuilds the loader contract fixture with the DSL.
func contractScript() *dsl.Builder {
	b := dsl.New("contract")

	b.Step("initial").
		After(domain.InitialPredecessor).
		Say(10*time.Millisecond, "Welcome").
		Action("go-alpha", "Go to alpha", "alpha")

	b.Step("alpha").
		After("initial").
		Say(20*time.Millisecond, "Alpha data").
		Table("SELECT lot, hsi FROM lots", []string{"lot", "hsi"}, dsl.Row{"lot": "#1", "hsi": 0.5}).
		Say(30*time.Millisecond, "Alpha done").
		Action("chart", "Show chart", "beta").
		Action("finish", "Finish", "done")

	b.Step("beta").
		After("alpha").
		Say(0, "Beta chart").
		Chart(domain.ChartBar, "Levels", dsl.Series("hsi", dsl.Point("#1", 0.5))).
		Action("finish", "Finish", "done")

	b.Step("done").
		After("alpha", "beta").
		Navigate("engineer")

	return b
}

func TestBuilder_MatchesContractFixture(t *testing.T) {
	loader, err := contractScript().Build()
	require.NoError(t, err)

	got, err := loader.Load(context.Background())
	require.NoError(t, err)

	want := tests.ContractScript()
	require.Len(t, got.Steps, len(want.Steps))
	for i := range want.Steps {
		assert.Equal(t, want.Steps[i].ID, got.Steps[i].ID)
		assert.Equal(t, want.Steps[i].Predecessors, got.Steps[i].Predecessors)
		assert.Equal(t, want.Steps[i].Navigate, got.Steps[i].Navigate)
		assert.Len(t, got.Steps[i].Responses, len(want.Steps[i].Responses))
	}
	assert.Equal(t, "initial", got.Initial)
	assert.Equal(t, "contract", got.Name)

	store, err := script.Load(got)
	require.NoError(t, err)
	alpha, err := store.Get("alpha")
	require.NoError(t, err)
	require.NotNil(t, alpha.Responses[0].Attachment)
	assert.Equal(t, []string{"lot", "hsi"}, alpha.Responses[0].Attachment.Table.Columns)
	assert.Nil(t, alpha.Responses[1].Attachment)
}

func TestBuilder_StepIsReused(t *testing.T) {
	b := dsl.New("reuse")
	b.Step("initial").Say(0, "one")
	b.Step("initial").Say(0, "two")

	s := b.Script()
	require.Len(t, s.Steps, 1)
	assert.Len(t, s.Steps[0].Responses, 2)
}

func TestBuilder_ExplicitInitial(t *testing.T) {
	b := dsl.New("explicit").Initial("start")
	b.Step("done").Navigate("engineer")
	b.Step("start").
		After(domain.InitialPredecessor).
		Say(0, "hi").
		Action("end", "End", "done")

	_, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "start", b.Script().Initial)
}

func TestBuilder_InvalidScript(t *testing.T) {
	b := dsl.New("broken")
	b.Step("initial").
		Say(0, "hi").
		Action("nowhere", "Nowhere", "missing")

	loader, err := b.Build()
	assert.Nil(t, loader)
	assert.ErrorIs(t, err, domain.ErrValidation)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Problems)
}

func TestBuilder_AttachWithoutResponsePanics(t *testing.T) {
	b := dsl.New("panic")
	assert.Panics(t, func() {
		b.Step("initial").Table("", []string{"a"})
	})
}

func TestStepBuilder_BuildReturnsCopy(t *testing.T) {
	sb := dsl.New("copy").Step("initial").After("initial").Say(0, "hi")
	step := sb.Build()
	step.Predecessors[0] = "mutated"
	assert.Equal(t, []string{"initial"}, sb.Build().Predecessors)
}
