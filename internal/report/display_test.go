package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/towerdash/internal/models"
)

func TestRenderDisplay_Truncated(t *testing.T) {
	view, err := Filter(sampleRecords(), Query{})
	require.NoError(t, err)

	d := RenderDisplay(view, nil)

	require.Len(t, d.Rows, 5)
	assert.True(t, d.Truncated)
	assert.False(t, d.Empty)
	assert.Equal(t, 7, d.Matched)
	assert.Equal(t, "Showing first 5 towers. Use search to see specific towers.", d.Notice)

	assert.Equal(t, "Tower tower-10 (Airtel - 4G)", d.Rows[0].Heading)
	assert.Equal(t, SeverityNormal, d.Rows[0].Severity)
	assert.Equal(t, SeverityWarning, d.Rows[1].Severity)
	assert.Equal(t, "rec-warning", d.Rows[1].Style.Class)
}

func TestRenderDisplay_Search(t *testing.T) {
	view, err := Filter(sampleRecords(), Query{Search: "tower-12"})
	require.NoError(t, err)

	d := RenderDisplay(view, nil)
	require.Len(t, d.Rows, 1)
	assert.False(t, d.Truncated)
	assert.Empty(t, d.Notice)
	assert.Equal(t, "tower-12", d.Rows[0].TowerID)
	assert.Equal(t, "Vodafone", d.Rows[0].Operator)
	assert.Equal(t, "4G", d.Rows[0].NetworkType)
}

func TestRenderDisplay_Empty(t *testing.T) {
	view, err := Filter(sampleRecords(), Query{Search: "nobody"})
	require.NoError(t, err)

	d := RenderDisplay(view, nil)
	assert.True(t, d.Empty)
	assert.Empty(t, d.Rows)
	assert.NotNil(t, d.Rows)
	assert.Equal(t, NoticeNoResults, d.Notice)

	assert.True(t, RenderDisplay(nil, nil).Empty)
}

func TestRenderDisplay_CriticalStyling(t *testing.T) {
	recs := []models.TowerRecord{
		{TowerID: "1", Operator: "Jio", NetworkType: "5G", Recommendation: "🚨 Anomaly → Dispatch engineer"},
		{TowerID: "2", Operator: "Jio", NetworkType: "5G", Recommendation: "⚠️ Latency 🚨 Outage"},
	}
	view, err := Filter(recs, Query{})
	require.NoError(t, err)

	d := RenderDisplay(view, nil)
	for _, row := range d.Rows {
		assert.Equal(t, SeverityCritical, row.Severity)
		assert.Equal(t, StyleFor(SeverityCritical), row.Style)
	}
}

func TestRenderDisplay_CustomClassifier(t *testing.T) {
	c := MustClassifier([]MarkerRule{{Marker: "Healthy", Severity: SeverityWarning}})
	view, err := Filter(sampleRecords(), Query{Search: "tower-10"})
	require.NoError(t, err)

	d := RenderDisplay(view, c)
	assert.Equal(t, SeverityWarning, d.Rows[0].Severity)
}
