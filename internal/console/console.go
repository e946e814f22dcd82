// Package console prints a display rendering to a terminal with the same
// severity colours the dashboard and PDF use.
package console

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lox/towerdash/internal/report"
)

const DefaultWidth = 80

var (
	muted   = lipgloss.Color("#6B7280")
	warning = lipgloss.Color("#FFB800")
)

// Printer writes display rows as coloured blocks.
type Printer struct {
	w     io.Writer
	r     *lipgloss.Renderer
	width int
}

// NewPrinter detects the colour profile of w. Plain forces uncoloured
// output, as for pipes and tests.
func NewPrinter(w io.Writer, plain bool, width int) *Printer {
	r := lipgloss.NewRenderer(w)
	if plain {
		r.SetColorProfile(termenv.Ascii)
	}
	if width <= 0 {
		width = DefaultWidth
	}
	return &Printer{w: w, r: r, width: width}
}

// Render prints every row in order followed by the notice, if any.
func (p *Printer) Render(d report.Display) error {
	for _, row := range d.Rows {
		if _, err := fmt.Fprintln(p.w, p.block(row)); err != nil {
			return err
		}
	}
	if d.Notice == "" {
		return nil
	}

	noticeColor := muted
	if d.Empty {
		noticeColor = warning
	}
	_, err := fmt.Fprintln(p.w, p.r.NewStyle().Foreground(noticeColor).Italic(true).Render(d.Notice))
	return err
}

func (p *Printer) block(row report.DisplayRow) string {
	box := p.r.NewStyle().
		Background(lipgloss.Color(row.Style.Background)).
		Foreground(lipgloss.Color(row.Style.Foreground)).
		Padding(0, 1).
		MarginBottom(1).
		Width(p.width)
	heading := p.r.NewStyle().Bold(true).Render(row.Heading)
	return box.Render(heading + "\n" + row.Recommendation)
}
