// Package api serves the tower recommendations dashboard, its JSON API and
// the PDF export.
package api

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/towerdash/internal/chart"
	"github.com/lox/towerdash/internal/ingest"
	"github.com/lox/towerdash/internal/metrics"
	"github.com/lox/towerdash/internal/models"
	"github.com/lox/towerdash/internal/narrative"
	"github.com/lox/towerdash/internal/report"
)

// Config wires a Server. Source is required; the rest have defaults.
type Config struct {
	Source       ingest.Source
	Classifier   *report.Classifier
	Narrative    narrative.Generator
	ChartCache   *chart.Cache
	PreviewLimit int
	Clock        clockwork.Clock
	Logger       *slog.Logger
}

type Server struct {
	source       ingest.Source
	classifier   *report.Classifier
	renderer     *report.Renderer
	narrative    narrative.Generator
	chartCache   *chart.Cache
	previewLimit int
	logger       *slog.Logger
	tmpl         *template.Template
}

func NewServer(cfg Config) *Server {
	if cfg.Classifier == nil {
		cfg.Classifier = report.DefaultClassifier
	}
	if cfg.Narrative == nil {
		cfg.Narrative = narrative.Static{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.PreviewLimit <= 0 {
		cfg.PreviewLimit = report.DefaultPreviewLimit
	}

	return &Server{
		source:       cfg.Source,
		classifier:   cfg.Classifier,
		renderer:     report.NewRenderer(cfg.Classifier, cfg.Clock),
		narrative:    cfg.Narrative,
		chartCache:   cfg.ChartCache,
		previewLimit: cfg.PreviewLimit,
		logger:       cfg.Logger,
		tmpl:         newTemplates(),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /report.pdf", s.handleReportPDF)
	mux.HandleFunc("GET /charts/categories.png", s.handleCategoryChart)
	mux.HandleFunc("GET /api/recommendations", s.handleAPIRecommendations)
	mux.HandleFunc("GET /api/summary", s.handleAPISummary)
	mux.HandleFunc("GET /api/timeseries", s.handleAPITimeSeries)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	return s.withRequestID(s.withAccessLog(mux))
}

// ServeHTTP delegates to Handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Handler().ServeHTTP(w, r)
}

// Run listens on addr until ctx is cancelled, then drains connections.
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("http server starting", "addr", addr)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) records(ctx context.Context) ([]models.TowerRecord, error) {
	recs, err := s.source.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	return recs, nil
}

// filter runs the engine for the request's query and counts the outcome.
func (s *Server) filter(recs []models.TowerRecord, q report.Query) (*report.FilteredView, error) {
	q.PreviewLimit = s.previewLimit
	view, err := report.Filter(recs, q)
	switch {
	case err != nil:
		metrics.FiltersTotal.WithLabelValues("invalid").Inc()
	case view.Empty():
		metrics.FiltersTotal.WithLabelValues("empty").Inc()
	case view.Truncated:
		metrics.FiltersTotal.WithLabelValues("truncated").Inc()
	default:
		metrics.FiltersTotal.WithLabelValues("ok").Inc()
	}
	return view, err
}
