package api

import (
	"context"
	"net/http"
	"time"

	"github.com/lox/towerdash/internal/insights"
	"github.com/lox/towerdash/internal/report"
)

type recommendationsResponse struct {
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
	Search string `json:"search,omitempty"`
	report.Display
}

func (s *Server) handleAPIRecommendations(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	recs, err := s.records(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.filter(recs, q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := recommendationsResponse{Search: view.Search, Display: report.RenderDisplay(view, s.classifier)}
	if view.RangeApplied {
		resp.Start = view.Range.Start.Format(report.DateLayout)
		resp.End = view.Range.End.Format(report.DateLayout)
	}
	writeJSON(w, http.StatusOK, resp)
}

type summaryResponse struct {
	Summary    insights.Summary         `json:"summary"`
	Categories []insights.CategoryCount `json:"categories"`
	Clusters   []insights.ClusterStats  `json:"clusters"`
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	recs, err := s.records(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		Summary:    insights.Summarize(recs),
		Categories: insights.Categories(recs),
		Clusters:   insights.Clusters(recs),
	})
}

type timeSeriesResponse struct {
	Metric string            `json:"metric"`
	Start  string            `json:"start,omitempty"`
	End    string            `json:"end,omitempty"`
	Series []insights.Series `json:"series"`
}

// handleAPITimeSeries returns per-operator series over the date range.
// The search term does not apply here.
func (s *Server) handleAPITimeSeries(w http.ResponseWriter, r *http.Request) {
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		metric = string(insights.MetricLatency)
	}
	if _, err := insights.ParseMetric(metric); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: "metric"})
		return
	}

	q, err := parseQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	recs, err := s.records(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rng := q.Range
	if !rng.Complete() {
		rng = datasetSpan(recs)
	}
	inRange, _, err := report.FilterByDate(recs, rng)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	series, err := insights.SeriesFor(inRange, metric)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := timeSeriesResponse{Metric: metric, Series: series}
	if rng.Complete() {
		resp.Start = rng.Start.Format(report.DateLayout)
		resp.End = rng.End.Format(report.DateLayout)
	}
	writeJSON(w, http.StatusOK, resp)
}

type healthResponse struct {
	Status  string `json:"status"`
	Source  string `json:"source"`
	Records int    `json:"records"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	recs, err := s.records(ctx)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "error", Source: s.source.Name(), Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Source: s.source.Name(), Records: len(recs)})
}
