// Package ingest loads the recommendation pipeline's output table from a
// file, an HTTP endpoint or an FTP drop box.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lox/towerdash/internal/metrics"
	"github.com/lox/towerdash/internal/models"
)

// Source yields the full, finite set of tower records.
type Source interface {
	Records(ctx context.Context) ([]models.TowerRecord, error)
	// Name labels the source in logs and metrics.
	Name() string
}

// Load reads src, normalises every row and logs rows carrying quality
// flags. The returned slice is owned by the caller.
func Load(ctx context.Context, src Source, logger *slog.Logger) ([]models.TowerRecord, error) {
	recs, err := src.Records(ctx)
	if err != nil {
		metrics.SourceErrors.WithLabelValues(src.Name()).Inc()
		return nil, fmt.Errorf("load %s: %w", src.Name(), err)
	}

	out := make([]models.TowerRecord, len(recs))
	flagged := 0
	for i, rec := range recs {
		out[i] = Normalize(rec)
		if flags := ValidateRecord(out[i]); len(flags) > 0 {
			flagged++
			logger.Debug("record flagged", "source", src.Name(), "row", i, "tower_id", out[i].TowerID, "flags", flags)
		}
	}

	metrics.RecordsLoaded.WithLabelValues(src.Name()).Add(float64(len(out)))
	if flagged > 0 {
		logger.Warn("records with quality flags", "source", src.Name(), "flagged", flagged, "total", len(out))
	}
	logger.Info("records loaded", "source", src.Name(), "count", len(out))
	return out, nil
}

// Memo loads a source once and serves the same slice afterwards. Callers
// must treat the slice as read-only.
type Memo struct {
	src    Source
	logger *slog.Logger

	mu      sync.Mutex
	records []models.TowerRecord
	loaded  bool
}

func NewMemo(src Source, logger *slog.Logger) *Memo {
	return &Memo{src: src, logger: logger}
}

func (m *Memo) Name() string { return m.src.Name() }

// Records returns the cached records, loading them on first use. A failed
// load is not cached.
func (m *Memo) Records(ctx context.Context) ([]models.TowerRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loaded {
		return m.records, nil
	}
	recs, err := Load(ctx, m.src, m.logger)
	if err != nil {
		return nil, err
	}
	m.records, m.loaded = recs, true
	return recs, nil
}

// Reload fetches the source again and swaps the cache only on success.
func (m *Memo) Reload(ctx context.Context) error {
	recs, err := Load(ctx, m.src, m.logger)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.records, m.loaded = recs, true
	m.mu.Unlock()
	return nil
}

// Loaded reports whether a load has succeeded.
func (m *Memo) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

// Static serves a fixed slice.
type Static []models.TowerRecord

func (s Static) Records(context.Context) ([]models.TowerRecord, error) { return s, nil }
func (s Static) Name() string                                          { return "static" }
