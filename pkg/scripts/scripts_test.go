package scripts

import (
	"testing"
	"time"

	"github.com/aretw0/genie/pkg/domain"
	"github.com/aretw0/genie/pkg/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuality_Loads(t *testing.T) {
	store, err := script.Load(Quality())
	require.NoError(t, err)

	assert.Equal(t, "quality-investigation", store.Name())
	assert.Equal(t, "initial", store.Initial().ID)
	assert.Len(t, store.Steps(), 5)
}

func TestQuality_Content(t *testing.T) {
	store, err := script.Load(Quality())
	require.NoError(t, err)

	genealogy, err := store.Get("genealogy")
	require.NoError(t, err)
	require.Len(t, genealogy.Responses, 2)
	assert.Equal(t, 1200*time.Millisecond, genealogy.Responses[0].Delay)
	assert.Equal(t, 2*time.Second, genealogy.Responses[1].Delay)

	table := genealogy.Responses[0].Attachment.Table
	require.NotNil(t, table)
	assert.Equal(t, []string{"vendor_lot", "supplier", "complaints", "hsi"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "#8821", table.Rows[0]["vendor_lot"])
	assert.Equal(t, 342, table.Rows[0]["complaints"])
	assert.Equal(t, 0.67, table.Rows[0]["hsi"])
	assert.Contains(t, table.Query, "GROUP BY m.vendor_lot_number")

	rootCause, err := store.Get("root-cause")
	require.NoError(t, err)
	assert.True(t, rootCause.IsTerminal())
	assert.Equal(t, "engineer", rootCause.Navigate)

	chart, err := store.Get("hsi-chart")
	require.NoError(t, err)
	c := chart.Responses[0].Attachment.Chart
	require.NotNil(t, c)
	assert.Equal(t, domain.ChartBar, c.Kind)
	assert.Equal(t, []string{"#8815", "#8818", "#8821", "#8824", "#9901"}, c.Labels())
}

func TestQualityRaw_IsCopy(t *testing.T) {
	raw := QualityRaw()
	raw[0] = '#'
	assert.NotEqual(t, raw[0], QualityRaw()[0])
}
