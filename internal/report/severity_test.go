package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Severity
	}{
		{"plain", "Healthy → no action", SeverityNormal},
		{"empty", "", SeverityNormal},
		{"warning with variation selector", "⚠️ High Latency → Check backhaul", SeverityWarning},
		{"warning bare", "⚠ Overloaded", SeverityWarning},
		{"critical", "🚨 Anomaly → Dispatch engineer", SeverityCritical},
		{"both markers critical wins", "⚠️ Latency 🚨 Outage", SeverityCritical},
		{"both markers reversed", "🚨 Outage ⚠️ Latency", SeverityCritical},
		{"word warning is not a marker", "warning: check later", SeverityNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	texts := []string{"🚨 a", "⚠️ b", "c", "⚠️ 🚨 d"}
	first := make([]Severity, len(texts))
	for i, s := range texts {
		first[i] = Classify(s)
	}
	for n := 0; n < 10; n++ {
		for i := len(texts) - 1; i >= 0; i-- {
			assert.Equal(t, first[i], Classify(texts[i]))
		}
	}
}

func TestNewClassifier_Invalid(t *testing.T) {
	_, err := NewClassifier(nil)
	assert.Error(t, err)

	_, err = NewClassifier([]MarkerRule{{Marker: "", Severity: SeverityWarning}})
	assert.Error(t, err)

	_, err = NewClassifier([]MarkerRule{
		{Marker: "!", Severity: SeverityWarning},
		{Marker: "!", Severity: SeverityCritical},
	})
	assert.Error(t, err)

	_, err = NewClassifier([]MarkerRule{{Marker: "!", Severity: Severity(9)}})
	assert.Error(t, err)
}

func TestParseMarkers(t *testing.T) {
	c, err := ParseMarkers([]byte(`
markers:
  - marker: "[P1]"
    severity: critical
  - marker: "[P2]"
    severity: warning
    label: "(P2)"
`))
	require.NoError(t, err)

	assert.Equal(t, SeverityCritical, c.Classify("[P1] tower down"))
	assert.Equal(t, SeverityWarning, c.Classify("[P2] slow"))
	assert.Equal(t, SeverityNormal, c.Classify("🚨 not in this table"))
	assert.Equal(t, "(P2)", c.Rules()[1].pdfLabel())
	assert.Equal(t, "[CRITICAL]", c.Rules()[0].pdfLabel())
}

func TestParseMarkers_UnknownSeverity(t *testing.T) {
	_, err := ParseMarkers([]byte("markers:\n  - marker: x\n    severity: dire\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dire")
}

func TestLoadMarkers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "markers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("markers:\n  - marker: \"!!\"\n    severity: critical\n"), 0o644))

	c, err := LoadMarkers(path)
	require.NoError(t, err)
	assert.Equal(t, SeverityCritical, c.Classify("!! now"))

	_, err = LoadMarkers(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSeverityText(t *testing.T) {
	for _, s := range []Severity{SeverityNormal, SeverityWarning, SeverityCritical} {
		b, err := s.MarshalText()
		require.NoError(t, err)

		var got Severity
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, s, got)
	}
	assert.Equal(t, "Critical", SeverityCritical.Label())
}

func TestStyleFor(t *testing.T) {
	assert.Equal(t, "#1717a1", StyleFor(SeverityNormal).Background)
	assert.Equal(t, "#ffcccc", StyleFor(SeverityWarning).Background)
	assert.Equal(t, "rec-critical", StyleFor(SeverityCritical).Class)
	assert.Equal(t, StyleFor(SeverityNormal), StyleFor(Severity(42)))

	r, g, b, err := RGB("#1717a1")
	require.NoError(t, err)
	assert.Equal(t, []int{0x17, 0x17, 0xa1}, []int{r, g, b})

	_, _, _, err = RGB("blue")
	assert.Error(t, err)
}
