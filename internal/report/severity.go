package report

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Severity classifies a recommendation. Larger values are more severe.
type Severity int

const (
	SeverityNormal Severity = iota
	SeverityWarning
	SeverityCritical
)

// Severity markers the upstream pipeline embeds in recommendation text.
const (
	MarkerWarning  = "⚠"
	MarkerCritical = "🚨"
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return "normal"
	}
}

// Label is the title-case name used in rendered output.
func (s Severity) Label() string {
	switch s {
	case SeverityWarning:
		return "Warning"
	case SeverityCritical:
		return "Critical"
	default:
		return "Normal"
	}
}

// ParseSeverity accepts the lower-case names produced by String.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal":
		return SeverityNormal, nil
	case "warning":
		return SeverityWarning, nil
	case "critical":
		return SeverityCritical, nil
	default:
		return SeverityNormal, fmt.Errorf("unknown severity %q", s)
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(b []byte) error {
	v, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MarkerRule maps a substring of recommendation text to a severity.
type MarkerRule struct {
	Marker   string   `yaml:"marker"`
	Severity Severity `yaml:"severity"`
	// Label replaces the marker in PDF text, where the core fonts cannot
	// draw emoji. Defaults to "[<SEVERITY>]".
	Label string `yaml:"label,omitempty"`
}

func (r MarkerRule) pdfLabel() string {
	if r.Label != "" {
		return r.Label
	}
	return "[" + strings.ToUpper(r.Severity.String()) + "]"
}

// DefaultMarkers is the marker table used by DefaultClassifier.
var DefaultMarkers = []MarkerRule{
	{Marker: MarkerCritical, Severity: SeverityCritical},
	{Marker: MarkerWarning, Severity: SeverityWarning},
}

// Classifier maps recommendation text to a Severity using a marker table.
type Classifier struct {
	rules []MarkerRule
}

// DefaultClassifier uses DefaultMarkers.
var DefaultClassifier = MustClassifier(DefaultMarkers)

// NewClassifier validates and copies rules.
func NewClassifier(rules []MarkerRule) (*Classifier, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("marker table is empty")
	}
	out := make([]MarkerRule, 0, len(rules))
	seen := make(map[string]bool, len(rules))
	for i, r := range rules {
		if r.Marker == "" {
			return nil, fmt.Errorf("marker rule %d: empty marker", i)
		}
		if seen[r.Marker] {
			return nil, fmt.Errorf("marker rule %d: duplicate marker %q", i, r.Marker)
		}
		if r.Severity < SeverityNormal || r.Severity > SeverityCritical {
			return nil, fmt.Errorf("marker rule %d: invalid severity %d", i, r.Severity)
		}
		seen[r.Marker] = true
		out = append(out, r)
	}
	return &Classifier{rules: out}, nil
}

// MustClassifier is NewClassifier that panics on an invalid table.
func MustClassifier(rules []MarkerRule) *Classifier {
	c, err := NewClassifier(rules)
	if err != nil {
		panic(err)
	}
	return c
}

// Classify returns the most severe rule whose marker occurs in text.
func (c *Classifier) Classify(text string) Severity {
	sev := SeverityNormal
	for _, r := range c.rules {
		if r.Severity > sev && strings.Contains(text, r.Marker) {
			sev = r.Severity
		}
	}
	return sev
}

// Rules returns a copy of the marker table.
func (c *Classifier) Rules() []MarkerRule {
	out := make([]MarkerRule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Classify uses DefaultClassifier.
func Classify(text string) Severity {
	return DefaultClassifier.Classify(text)
}

type markerFile struct {
	Markers []MarkerRule `yaml:"markers"`
}

// LoadMarkers reads a YAML marker table:
//
//	markers:
//	  - marker: "🚨"
//	    severity: critical
//	  - marker: "⚠"
//	    severity: warning
func LoadMarkers(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read markers: %w", err)
	}
	return ParseMarkers(data)
}

// ParseMarkers is LoadMarkers over an in-memory document.
func ParseMarkers(data []byte) (*Classifier, error) {
	var f markerFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse markers: %w", err)
	}
	return NewClassifier(f.Markers)
}
