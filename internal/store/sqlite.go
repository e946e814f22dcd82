// Package store persists an imported tower table in SQLite so the
// dashboard can serve it without re-reading the pipeline export.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lox/towerdash/internal/ingest"
	"github.com/lox/towerdash/internal/models"
)

type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Open opens (or creates) the database at path and applies migrations.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	} else {
		db.ExecContext(ctx, "PRAGMA journal_mode=WAL")
		db.ExecContext(ctx, "PRAGMA busy_timeout=5000")
	}

	s := New(db, logger)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Name() string { return "sqlite" }

// ReplaceRecords swaps the stored table for recs in one transaction,
// preserving their order. It returns how many rows carried quality flags.
func (s *Store) ReplaceRecords(ctx context.Context, recs []models.TowerRecord) (flagged int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM towers"); err != nil {
		return 0, fmt.Errorf("clear towers: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO towers (position, tower_id, operator, network_type, observed_at, recommendation,
			latency_sec, download_speed_mbps, upload_speed_mbps, tower_load_percent, dropped_calls,
			packet_loss_percent, cluster, anomaly, pca1, pca2, latitude, longitude, quality_flags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range recs {
		flags := ingest.ValidateRecord(r)
		if len(flags) > 0 {
			flagged++
		}
		if _, err = stmt.ExecContext(ctx, i, r.TowerID, r.Operator, r.NetworkType, nullTime(r.Timestamp),
			r.Recommendation, r.LatencySec, r.DownloadSpeedMbps, r.UploadSpeedMbps, r.TowerLoadPercent,
			r.DroppedCalls, r.PacketLossPercent, r.Cluster, r.Anomaly, r.PCA1, r.PCA2, r.Latitude,
			r.Longitude, nullString(ingest.QualityFlagsToJSON(flags))); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return flagged, nil
}

// Records returns the stored table in import order.
func (s *Store) Records(ctx context.Context) ([]models.TowerRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tower_id, operator, network_type, observed_at, recommendation,
			latency_sec, download_speed_mbps, upload_speed_mbps, tower_load_percent, dropped_calls,
			packet_loss_percent, cluster, anomaly, pca1, pca2, latitude, longitude
		FROM towers
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []models.TowerRecord
	for rows.Next() {
		var (
			r          models.TowerRecord
			observedAt sql.NullString
		)
		if err := rows.Scan(&r.TowerID, &r.Operator, &r.NetworkType, &observedAt, &r.Recommendation,
			&r.LatencySec, &r.DownloadSpeedMbps, &r.UploadSpeedMbps, &r.TowerLoadPercent, &r.DroppedCalls,
			&r.PacketLossPercent, &r.Cluster, &r.Anomaly, &r.PCA1, &r.PCA2, &r.Latitude, &r.Longitude); err != nil {
			return nil, err
		}
		if observedAt.Valid {
			t, err := time.Parse(time.RFC3339Nano, observedAt.String)
			if err != nil {
				return nil, fmt.Errorf("parse observed_at %q: %w", observedAt.String, err)
			}
			r.Timestamp = t
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM towers").Scan(&n)
	return n, err
}

// FlaggedCount returns how many stored rows carry quality flags.
func (s *Store) FlaggedCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM towers WHERE quality_flags IS NOT NULL").Scan(&n)
	return n, err
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(t), Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
