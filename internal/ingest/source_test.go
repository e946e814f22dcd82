package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/towerdash/internal/logging"
	"github.com/lox/towerdash/internal/models"
)

type countingSource struct {
	calls atomic.Int32
	fail  atomic.Bool
	recs  []models.TowerRecord
}

func (s *countingSource) Name() string { return "counting" }

func (s *countingSource) Records(context.Context) ([]models.TowerRecord, error) {
	s.calls.Add(1)
	if s.fail.Load() {
		return nil, errors.New("unavailable")
	}
	return s.recs, nil
}

func TestLoad_Normalizes(t *testing.T) {
	src := Static{
		{TowerID: " 1 ", Operator: "Jio", Recommendation: "<i>ok</i>"},
		{TowerID: "", Operator: "Airtel", Recommendation: "ok"},
	}
	recs, err := Load(context.Background(), src, logging.Discard())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "1", recs[0].TowerID)
	assert.Equal(t, "ok", recs[0].Recommendation)
	assert.Equal(t, " 1 ", src[0].TowerID, "input untouched")
}

func TestLoad_Error(t *testing.T) {
	src := &countingSource{}
	src.fail.Store(true)
	_, err := Load(context.Background(), src, logging.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load counting")
}

func TestMemo(t *testing.T) {
	src := &countingSource{recs: []models.TowerRecord{{TowerID: "1"}}}
	src.fail.Store(true)
	m := NewMemo(src, logging.Discard())
	ctx := context.Background()

	_, err := m.Records(ctx)
	require.Error(t, err)
	assert.False(t, m.Loaded())

	src.fail.Store(false)
	for i := 0; i < 3; i++ {
		recs, err := m.Records(ctx)
		require.NoError(t, err)
		assert.Len(t, recs, 1)
	}
	assert.Equal(t, int32(2), src.calls.Load())
	assert.True(t, m.Loaded())
	assert.Equal(t, "counting", m.Name())
}

func TestMemo_ReloadKeepsDataOnFailure(t *testing.T) {
	src := &countingSource{recs: []models.TowerRecord{{TowerID: "1"}}}
	m := NewMemo(src, logging.Discard())
	ctx := context.Background()
	require.NoError(t, m.Reload(ctx))

	src.fail.Store(true)
	assert.Error(t, m.Reload(ctx))

	recs, err := m.Records(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", recs[0].TowerID)
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "towers.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o644))

	src, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "file", src.Name())

	recs, err := src.Records(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 3)

	_, err = NewFileSource(filepath.Join(dir, "missing.csv")).Records(context.Background())
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	tests := []struct {
		location string
		want     string
		wantErr  bool
	}{
		{"towers.csv", "file", false},
		{"file:///data/towers.json", "file", false},
		{"https://pipeline.example/export.json", "http", false},
		{"ftp://drop.example/out/towers.csv", "ftp", false},
		{"ftp://drop.example/", "", true},
		{"  ", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			src, err := Open(tt.location)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, src.Name())
		})
	}

	src, err := Open("file:///data/towers.json")
	require.NoError(t, err)
	assert.Equal(t, "/data/towers.json", src.(*FileSource).Path)
}
