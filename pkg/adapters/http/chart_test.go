package http

import (
	"bytes"
	"testing"

	"github.com/aretw0/genie/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderChart(t *testing.T) {
	chart := &domain.Chart{
		Title: "HSI by lot",
		Series: []domain.Series{
			{Name: "Lot #8821", Points: []domain.Point{{Label: "Jan", Value: 0.41}, {Label: "Feb", Value: 0.52}}},
			{Name: "Lot #9901", Points: []domain.Point{{Label: "Feb", Value: 0.2}}},
		},
	}

	for _, kind := range []string{domain.ChartBar, domain.ChartLine} {
		t.Run(kind, func(t *testing.T) {
			c := *chart
			c.Kind = kind
			var buf bytes.Buffer
			require.NoError(t, RenderChart(&buf, &c))
			assert.Contains(t, buf.String(), "HSI by lot")
			assert.Contains(t, buf.String(), "Lot #9901")
		})
	}

	var buf bytes.Buffer
	assert.Error(t, RenderChart(&buf, &domain.Chart{Kind: "pie"}))
}

func TestAligned(t *testing.T) {
	s := domain.Series{Points: []domain.Point{{Label: "b", Value: 2}}}
	assert.Equal(t, []any{"-", 2.0}, aligned(s, []string{"a", "b"}))
}
