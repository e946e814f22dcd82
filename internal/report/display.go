package report

import (
	"fmt"

	"github.com/lox/towerdash/internal/models"
)

// Notices shown alongside the rendered rows.
const (
	NoticeNoResults = "No towers found matching your search."
	NoticeTruncated = "Showing first %d towers. Use search to see specific towers."
	NoticePartial   = "Select both a start and an end date to filter by date."
)

// DisplayRow is one styled recommendation card.
type DisplayRow struct {
	TowerID        string   `json:"tower_id"`
	Operator       string   `json:"operator"`
	NetworkType    string   `json:"network_type"`
	Recommendation string   `json:"recommendation"`
	Heading        string   `json:"heading"`
	Severity       Severity `json:"severity"`
	Style          Style    `json:"style"`
}

// Display is the on-screen rendering of a FilteredView.
type Display struct {
	Rows      []DisplayRow `json:"rows"`
	Matched   int          `json:"matched"`
	Truncated bool         `json:"truncated"`
	Empty     bool         `json:"empty"`
	Partial   bool         `json:"partial_range"`
	Notice    string       `json:"notice,omitempty"`
}

// Heading formats the identity line shared by every surface.
func Heading(rec models.TowerRecord) string {
	return fmt.Sprintf("Tower %s (%s - %s)", rec.TowerID, rec.Operator, rec.NetworkType)
}

// RenderDisplay styles each row of view in order. A nil classifier means
// DefaultClassifier.
func RenderDisplay(view *FilteredView, c *Classifier) Display {
	if c == nil {
		c = DefaultClassifier
	}
	d := Display{Rows: []DisplayRow{}}
	if view == nil || view.Empty() {
		d.Empty = true
		d.Notice = NoticeNoResults
		if view != nil {
			d.Partial = view.PartialRange
		}
		return d
	}

	d.Rows = make([]DisplayRow, 0, view.Len())
	for _, rec := range view.Rows {
		sev := c.Classify(rec.Recommendation)
		d.Rows = append(d.Rows, DisplayRow{
			TowerID:        rec.TowerID,
			Operator:       rec.Operator,
			NetworkType:    rec.NetworkType,
			Recommendation: rec.Recommendation,
			Heading:        Heading(rec),
			Severity:       sev,
			Style:          StyleFor(sev),
		})
	}
	d.Matched = len(view.Matched)
	d.Truncated = view.Truncated
	d.Partial = view.PartialRange
	if view.Truncated {
		d.Notice = fmt.Sprintf(NoticeTruncated, view.Len())
	}
	return d
}
