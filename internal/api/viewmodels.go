package api

import (
	"github.com/lox/towerdash/internal/insights"
	"github.com/lox/towerdash/internal/report"
)

// PageData is everything the dashboard template renders.
type PageData struct {
	Title string

	// Echo of the filter form.
	Start  string
	End    string
	Search string

	// Bounds for the date pickers.
	MinDate string
	MaxDate string

	// Error is a validation message for the form; Display is empty then.
	Error   string
	Display report.Display
	// PDFURL carries the current filter; empty when there is nothing to export.
	PDFURL string

	Summary    insights.Summary
	Categories []insights.CategoryCount
	Clusters   []insights.ClusterStats
	Metrics    []insights.Metric
	Story      []StoryLine
	ChartURL   string
}

// StoryLine is one paragraph or bullet of the narrative.
type StoryLine struct {
	Bullet bool
	Spans  []StorySpan
}

// StorySpan is a run of text, bold or not.
type StorySpan struct {
	Text string
	Bold bool
}
