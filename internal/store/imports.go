package store

import (
	"context"
	"database/sql"
	"time"
)

// ImportRun audits one import of a pipeline export.
type ImportRun struct {
	ID             int64
	StartedAt      time.Time
	FinishedAt     sql.NullTime
	Source         string // "file", "http", "ftp"
	Location       string
	RecordsStored  sql.NullInt64
	RecordsFlagged sql.NullInt64
	Success        bool
	ErrorMessage   sql.NullString
}

// StartImportRun records the start of an import and returns it.
func (s *Store) StartImportRun(ctx context.Context, source, location string) (*ImportRun, error) {
	run := &ImportRun{
		StartedAt: time.Now().UTC(),
		Source:    source,
		Location:  location,
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO import_runs (started_at, source, location, success)
		VALUES (?, ?, ?, FALSE)
	`, formatTime(run.StartedAt), run.Source, run.Location)
	if err != nil {
		return nil, err
	}

	run.ID, err = result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return run, nil
}

// CompleteImportRun updates the run with its results.
func (s *Store) CompleteImportRun(ctx context.Context, run *ImportRun) error {
	if run == nil {
		return nil
	}

	run.FinishedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}

	_, err := s.db.ExecContext(ctx, `
		UPDATE import_runs SET
			finished_at = ?,
			records_stored = ?,
			records_flagged = ?,
			success = ?,
			error_message = ?
		WHERE id = ?
	`, formatTime(run.FinishedAt.Time), run.RecordsStored, run.RecordsFlagged, run.Success,
		run.ErrorMessage, run.ID)
	return err
}

// LastImport returns the most recent successful run, or nil if none.
func (s *Store) LastImport(ctx context.Context) (*ImportRun, error) {
	runs, err := s.queryRuns(ctx, `WHERE success = TRUE ORDER BY id DESC LIMIT 1`)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return &runs[0], nil
}

// RecentImportErrors returns the latest failed runs, newest first.
func (s *Store) RecentImportErrors(ctx context.Context, limit int) ([]ImportRun, error) {
	return s.queryRuns(ctx, `WHERE success = FALSE ORDER BY id DESC LIMIT ?`, limit)
}

func (s *Store) queryRuns(ctx context.Context, where string, args ...any) ([]ImportRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, source, location, records_stored, records_flagged,
			success, error_message
		FROM import_runs `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ImportRun
	for rows.Next() {
		var (
			r        ImportRun
			started  string
			finished sql.NullString
			location sql.NullString
		)
		if err := rows.Scan(&r.ID, &started, &finished, &r.Source, &location, &r.RecordsStored,
			&r.RecordsFlagged, &r.Success, &r.ErrorMessage); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if finished.Valid {
			if t, err := time.Parse(time.RFC3339Nano, finished.String); err == nil {
				r.FinishedAt = sql.NullTime{Time: t, Valid: true}
			}
		}
		r.Location = location.String
		results = append(results, r)
	}
	return results, rows.Err()
}
