package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lox/towerdash/internal/api"
	"github.com/lox/towerdash/internal/chart"
	"github.com/lox/towerdash/internal/console"
	"github.com/lox/towerdash/internal/ingest"
	"github.com/lox/towerdash/internal/narrative"
	"github.com/lox/towerdash/internal/report"
	"github.com/lox/towerdash/internal/store"
)

// openSource prefers the pipeline export named by --source and falls back
// to previously imported records in --db. The returned close func is
// never nil.
func openSource(ctx context.Context, g *Globals) (ingest.Source, func() error, error) {
	noop := func() error { return nil }
	if g.Source != "" {
		src, err := ingest.Open(g.Source)
		return src, noop, err
	}
	if g.DB == "" {
		return nil, noop, errors.New("one of --source or --db is required")
	}

	st, err := store.Open(ctx, g.DB, g.logger)
	if err != nil {
		return nil, noop, err
	}
	n, err := st.Count(ctx)
	if err != nil {
		st.Close()
		return nil, noop, err
	}
	if n == 0 {
		st.Close()
		return nil, noop, fmt.Errorf("database %s has no records; run import first", g.DB)
	}
	return st, st.Close, nil
}

type ServeCmd struct {
	Addr         string        `name:"addr" default:":8080" env:"TOWERDASH_ADDR" help:"Listen address."`
	PreviewLimit int           `name:"preview-limit" default:"5" help:"Rows shown when no search term is given."`
	Refresh      time.Duration `name:"refresh" default:"0s" env:"TOWERDASH_REFRESH" help:"Reload the source at this interval (0 loads once)."`
	ChartCache   string        `name:"chart-cache" default:"data/charts" env:"TOWERDASH_CHART_CACHE" help:"Directory for rendered charts."`
	ChartMaxAge  time.Duration `name:"chart-max-age" default:"1h" help:"Age after which cached charts are redrawn."`
	OpenAIKey    string        `name:"openai-key" env:"OPENAI_API_KEY" help:"Enables the generated narrative."`
	OpenAIModel  string        `name:"openai-model" default:"gpt-4o-mini" env:"OPENAI_MODEL" help:"Chat model for the narrative."`
}

func (c *ServeCmd) Run(ctx context.Context, g *Globals) error {
	src, closeSrc, err := openSource(ctx, g)
	if err != nil {
		return err
	}
	defer closeSrc()

	memo := ingest.NewMemo(src, g.logger)
	if c.Refresh > 0 {
		sched := ingest.NewScheduler(memo, c.Refresh, g.logger)
		go sched.Run(ctx)
	} else if err := memo.Reload(ctx); err != nil {
		// The server still starts; /health reports the failure and the
		// next request retries the load.
		g.logger.Error("initial load failed", "source", src.Name(), "error", err)
	}

	server := api.NewServer(api.Config{
		Source:       memo,
		Classifier:   g.classifier,
		Narrative:    narrative.New(c.OpenAIKey, c.OpenAIModel, g.logger),
		ChartCache:   chart.NewCache(c.ChartCache, c.ChartMaxAge, g.logger),
		PreviewLimit: c.PreviewLimit,
		Logger:       g.logger,
	})
	return server.Run(ctx, c.Addr)
}

type ImportCmd struct{}

func (c *ImportCmd) Run(ctx context.Context, g *Globals) error {
	if g.Source == "" || g.DB == "" {
		return errors.New("import needs both --source and --db")
	}
	src, err := ingest.Open(g.Source)
	if err != nil {
		return err
	}
	st, err := store.Open(ctx, g.DB, g.logger)
	if err != nil {
		return err
	}
	defer st.Close()

	_, _, err = importRecords(ctx, st, src, g.Source, g.logger)
	return err
}

// importRecords replaces the stored table with src's records and audits
// the run.
func importRecords(ctx context.Context, st *store.Store, src ingest.Source, location string, logger *slog.Logger) (stored, flagged int, err error) {
	run, err := st.StartImportRun(ctx, src.Name(), location)
	if err != nil {
		return 0, 0, fmt.Errorf("start import run: %w", err)
	}
	defer func() {
		run.Success = err == nil
		if err != nil {
			run.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
		} else {
			run.RecordsStored = sql.NullInt64{Int64: int64(stored), Valid: true}
			run.RecordsFlagged = sql.NullInt64{Int64: int64(flagged), Valid: true}
		}
		if cerr := st.CompleteImportRun(context.WithoutCancel(ctx), run); cerr != nil {
			logger.Warn("complete import run", "id", run.ID, "error", cerr)
		}
	}()

	recs, err := ingest.Load(ctx, src, logger)
	if err != nil {
		return 0, 0, err
	}
	flagged, err = st.ReplaceRecords(ctx, recs)
	if err != nil {
		return 0, 0, fmt.Errorf("store records: %w", err)
	}
	stored = len(recs)
	logger.Info("import complete", "source", src.Name(), "location", location, "stored", stored, "flagged", flagged)
	return stored, flagged, nil
}

// FilterFlags are the query shared by export and preview.
type FilterFlags struct {
	Start        string `name:"start" help:"First day to include (YYYY-MM-DD)."`
	End          string `name:"end" help:"Last day to include (YYYY-MM-DD)."`
	Search       string `name:"search" short:"q" help:"Case-insensitive match on tower ID or operator."`
	PreviewLimit int    `name:"preview-limit" default:"5" help:"Rows kept when no search term is given."`
}

func (f FilterFlags) query() (report.Query, error) {
	rng, err := report.ParseDateRange(f.Start, f.End)
	if err != nil {
		return report.Query{}, err
	}
	return report.Query{Range: rng, Search: f.Search, PreviewLimit: f.PreviewLimit}, nil
}

// filterSource loads the configured source and applies the flags.
func filterSource(ctx context.Context, g *Globals, f FilterFlags) (*report.FilteredView, error) {
	q, err := f.query()
	if err != nil {
		return nil, err
	}
	src, closeSrc, err := openSource(ctx, g)
	if err != nil {
		return nil, err
	}
	defer closeSrc()

	recs, err := ingest.Load(ctx, src, g.logger)
	if err != nil {
		return nil, err
	}
	return report.Filter(recs, q)
}

type ExportCmd struct {
	FilterFlags
	Out string `name:"out" short:"o" default:"filtered_recommendations.pdf" type:"path" help:"Output PDF path."`
}

func (c *ExportCmd) Run(ctx context.Context, g *Globals) error {
	view, err := filterSource(ctx, g, c.FilterFlags)
	if err != nil {
		return err
	}
	if view.PartialRange {
		g.logger.Warn(report.NoticePartial)
	}

	doc, err := report.NewRenderer(g.classifier, nil).Document(view)
	if errors.Is(err, report.ErrEmptyView) {
		return errors.New(report.NoticeNoResults)
	}
	if err != nil {
		return err
	}
	return writeDocument(c.Out, doc, g.logger)
}

// writeDocument writes doc to path via a temporary file in the same
// directory.
func writeDocument(path string, doc *report.Document, logger *slog.Logger) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".towerdash-*.pdf")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(doc.Bytes); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	logger.Info("report written", "path", path, "rows", len(doc.Blocks), "pages", doc.Pages, "bytes", len(doc.Bytes), "fingerprint", doc.Fingerprint)
	return nil
}

type PreviewCmd struct {
	FilterFlags
	Plain bool `name:"plain" help:"Disable colour."`
	Width int  `name:"width" default:"0" help:"Block width in columns (0 for the default)."`
}

func (c *PreviewCmd) Run(ctx context.Context, g *Globals) error {
	view, err := filterSource(ctx, g, c.FilterFlags)
	if err != nil {
		return err
	}
	return console.NewPrinter(os.Stdout, c.Plain, c.Width).Render(report.RenderDisplay(view, g.classifier))
}
