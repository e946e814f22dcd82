package api

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/lox/towerdash/internal/insights"
	"github.com/lox/towerdash/internal/models"
	"github.com/lox/towerdash/internal/report"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	recs, err := s.records(r.Context())
	if err != nil {
		s.logger.Error("load records", "error", err, "request_id", RequestID(r.Context()))
		http.Error(w, "data source unavailable", http.StatusInternalServerError)
		return
	}

	v := r.URL.Query()
	data := PageData{
		Title:    "Telecom Network Performance Dashboard",
		Start:    strings.TrimSpace(v.Get(paramStart)),
		End:      strings.TrimSpace(v.Get(paramEnd)),
		Search:   strings.TrimSpace(v.Get(paramSearch)),
		Metrics:  insights.Metrics,
		ChartURL: "/charts/categories.png",
	}
	span := datasetSpan(recs)
	if span.Complete() {
		data.MinDate = span.Start.Format(report.DateLayout)
		data.MaxDate = span.End.Format(report.DateLayout)
	}

	data.Summary = insights.Summarize(recs)
	data.Categories = insights.Categories(recs)
	data.Clusters = insights.Clusters(recs)

	story, err := s.narrative.Story(r.Context(), data.Summary, data.Categories)
	if err != nil {
		s.logger.Warn("narrative", "error", err)
	}
	data.Story = parseStory(story)

	status := http.StatusOK
	q, err := parseQuery(r)
	if err == nil {
		var view *report.FilteredView
		view, err = s.filter(recs, q)
		if err == nil {
			data.Display = report.RenderDisplay(view, s.classifier)
			if !data.Display.Empty {
				data.PDFURL = "/report.pdf"
				if qs := queryString(r); qs != "" {
					data.PDFURL += "?" + qs
				}
			}
		}
	}
	if err != nil {
		var verr *report.ValidationError
		if !errors.As(err, &verr) {
			s.logger.Error("filter", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		status = http.StatusBadRequest
		data.Error = verr.Error()
		data.Display = report.Display{Rows: []report.DisplayRow{}}
	}

	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "index.html", data); err != nil {
		s.logger.Error("render index", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// datasetSpan is the calendar span of every timestamped record.
func datasetSpan(recs []models.TowerRecord) report.DateRange {
	stamps := make([]time.Time, 0, len(recs))
	for _, r := range recs {
		stamps = append(stamps, r.Timestamp)
	}
	return report.SpanOf(stamps)
}

// parseStory splits the narrative's light Markdown into lines of plain and
// bold spans. Only "- " bullets and **bold** are recognised.
func parseStory(md string) []StoryLine {
	var lines []StoryLine
	for _, raw := range strings.Split(md, "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		var line StoryLine
		if rest, ok := strings.CutPrefix(raw, "- "); ok {
			line.Bullet = true
			raw = rest
		}
		for i, part := range strings.Split(raw, "**") {
			if part == "" {
				continue
			}
			line.Spans = append(line.Spans, StorySpan{Text: part, Bold: i%2 == 1})
		}
		lines = append(lines, line)
	}
	return lines
}
