package report

import (
	"fmt"
	"strconv"
)

// Style is the visual treatment of one severity. The HTML cards, the
// terminal preview and the PDF blocks all read colours from here.
type Style struct {
	Class      string // CSS class on the dashboard
	Background string // #rrggbb
	Foreground string // #rrggbb
}

var styles = map[Severity]Style{
	SeverityNormal:   {Class: "rec-normal", Background: "#1717a1", Foreground: "#ffffff"},
	SeverityWarning:  {Class: "rec-warning", Background: "#ffcccc", Foreground: "#000000"},
	SeverityCritical: {Class: "rec-critical", Background: "#b3261e", Foreground: "#ffffff"},
}

// StyleFor returns the style for s, falling back to Normal.
func StyleFor(s Severity) Style {
	if st, ok := styles[s]; ok {
		return st
	}
	return styles[SeverityNormal]
}

// RGB splits a #rrggbb colour into components for fpdf.
func RGB(hex string) (r, g, b int, err error) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0, fmt.Errorf("invalid colour %q", hex)
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid colour %q: %w", hex, err)
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), nil
}
