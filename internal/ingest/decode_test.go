package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `[
  {"tower_id": 101, "operator": "Airtel", "network_type": "4G", "timestamp": "2024-03-01 08:30:00",
   "latency_sec": 0.12, "download_speed_mbps": 54.2, "tower_load_percent": 61, "dropped_calls": 2,
   "cluster": 1, "anomaly": 1, "recommendation": "Healthy → no action"},
  {"tower_id": "T-7", "operator": "Jio", "network_type": "5G", "timestamp": 1709366400000,
   "latency_sec": "0.81", "download_speed_mbps": null, "cluster": 2, "anomaly": -1,
   "recommendation": "⚠️ High Latency → Check backhaul"},
  {"tower_id": 102.0, "operator": "Vodafone", "network_type": "4G", "timestamp": "2024-03-03T10:00:00Z",
   "recommendation": "🚨 Anomaly → Dispatch engineer"}
]`

func TestDecode_JSON(t *testing.T) {
	recs, err := Decode(strings.NewReader(sampleJSON), FormatJSON)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, "101", recs[0].TowerID)
	assert.Equal(t, "Airtel", recs[0].Operator)
	assert.Equal(t, time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC), recs[0].Timestamp)
	assert.InDelta(t, 54.2, recs[0].DownloadSpeedMbps, 1e-9)
	assert.Equal(t, 1, recs[0].Cluster)

	assert.Equal(t, "T-7", recs[1].TowerID)
	assert.Equal(t, time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC), recs[1].Timestamp)
	assert.InDelta(t, 0.81, recs[1].LatencySec, 1e-9)
	assert.Zero(t, recs[1].DownloadSpeedMbps)
	assert.True(t, recs[1].IsAnomaly())

	assert.Equal(t, "102", recs[2].TowerID)
	assert.Equal(t, "🚨 Anomaly → Dispatch engineer", recs[2].Recommendation)
}

func TestDecode_JSONMistypedText(t *testing.T) {
	in := `[
  {"tower_id": 1, "operator": 42, "network_type": ["4G"], "timestamp": "2024-03-01", "recommendation": {"text": "x"}},
  {"tower_id": 2, "operator": "Jio", "network_type": "5G", "timestamp": "2024-03-02", "recommendation": null}
]`
	recs, err := Decode(strings.NewReader(in), FormatJSON)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "1", recs[0].TowerID)
	assert.Empty(t, recs[0].Operator)
	assert.Empty(t, recs[0].NetworkType)
	assert.Empty(t, recs[0].Recommendation)

	assert.Equal(t, "Jio", recs[1].Operator)
	assert.Equal(t, "5G", recs[1].NetworkType)
	assert.Empty(t, recs[1].Recommendation)

	recs, err = Decode(strings.NewReader(`{"tower_id": 3, "operator": 7.5, "recommendation": "ok"}`+"\n"), FormatJSONLines)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Empty(t, recs[0].Operator)
	assert.Equal(t, "ok", recs[0].Recommendation)
}

func TestDecode_JSONMalformed(t *testing.T) {
	_, err := Decode(strings.NewReader(`[{"tower_id": 1,`), FormatJSON)
	assert.Error(t, err)
}

func TestDecode_JSONLines(t *testing.T) {
	in := `{"tower_id": 1, "operator": "Jio", "timestamp": "2024-03-01", "recommendation": "ok"}

{"tower_id": 2, "operator": "Airtel", "timestamp": "bogus", "recommendation": "ok"}
`
	recs, err := Decode(strings.NewReader(in), FormatJSONLines)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "1", recs[0].TowerID)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), recs[0].Timestamp)
	assert.True(t, recs[1].Timestamp.IsZero())

	_, err = Decode(strings.NewReader("{\"tower_id\": 1}\nnot json\n"), FormatJSONLines)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestDecode_CSV(t *testing.T) {
	in := "tower_id,operator,network_type,timestamp,latency_sec,download_speed_mbps,tower_load_percent,dropped_calls,cluster,anomaly,recommendation\n" +
		"101,Airtel,4G,2024-03-01 08:30:00,0.12,54.2,61,2,1,1,Healthy → no action\n" +
		"T-7,Jio,5G,2024-03-02T09:00:00,n/a,,90,4,2,-1,\"⚠️ Overloaded → Load balancing, upgrade\"\n"

	recs, err := Decode(strings.NewReader(in), FormatCSV)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "101", recs[0].TowerID)
	assert.Equal(t, 61.0, recs[0].TowerLoadPercent)
	assert.Equal(t, time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC), recs[1].Timestamp)
	assert.Zero(t, recs[1].LatencySec)
	assert.Equal(t, -1, recs[1].Anomaly)
	assert.Equal(t, "⚠️ Overloaded → Load balancing, upgrade", recs[1].Recommendation)
}

func TestDecode_CSVMissingColumn(t *testing.T) {
	_, err := Decode(strings.NewReader("operator,recommendation\nJio,ok\n"), FormatCSV)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tower_id")

	recs, err := Decode(strings.NewReader(""), FormatCSV)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)
	for _, in := range []string{
		"2024-03-01T08:30:00Z",
		"2024-03-01 08:30:00",
		"2024-03-01T08:30:00",
		"2024-03-01 08:30",
		"1709281800000",
	} {
		got, err := ParseTimestamp(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s parsed as %s", in, got)
	}

	_, err := ParseTimestamp("March 1st")
	assert.Error(t, err)
	_, err = ParseTimestamp("")
	assert.Error(t, err)
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatCSV, FormatFor("towers.CSV"))
	assert.Equal(t, FormatJSONLines, FormatFor("/exports/towers.ndjson"))
	assert.Equal(t, FormatJSON, FormatFor("telecom_tower_usage.json"))
	assert.Equal(t, FormatJSON, FormatFor("noext"))
}
