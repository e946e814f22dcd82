package ingest

import (
	"context"
	"fmt"
	"os"

	"github.com/lox/towerdash/internal/models"
)

// FileSource reads a pipeline export from disk.
type FileSource struct {
	Path   string
	Format Format
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path, Format: FormatFor(path)}
}

func (s *FileSource) Name() string { return "file" }

func (s *FileSource) Records(ctx context.Context) ([]models.TowerRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer f.Close()

	recs, err := Decode(f, s.Format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return recs, nil
}
