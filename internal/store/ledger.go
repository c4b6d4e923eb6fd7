// Package store persists the run ledger: one row per processed recording, so
// operators can audit what was split, from which boundary source, and what
// failed.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/chaptersplit/chaptersplit/internal/domain"
	"github.com/chaptersplit/chaptersplit/internal/id"
)

//go:embed schema.sql
var schemaSQL string

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is one ledger entry.
type Run struct {
	ID           string
	Path         string
	RelPath      string
	Source       domain.Source
	ChapterCount int
	Status       string
	Error        string
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// Store provides SQLite-backed persistence for the run ledger.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates the ledger at the given path. It configures WAL mode, sets
// pragmas, and applies the schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Begin records the start of a run and returns its ID.
func (s *Store) Begin(ctx context.Context, path, relPath string) (string, error) {
	runID, err := id.Generate("run")
	if err != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, path, rel_path, status, started_at)
		VALUES (?, ?, ?, ?, ?)`,
		runID, path, relPath, StatusRunning, formatTime(time.Now()),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return runID, nil
}

// Complete marks a run as successfully finished.
func (s *Store) Complete(ctx context.Context, runID string, source domain.Source, chapterCount int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET status = ?, source = ?, chapter_count = ?, finished_at = ?
		WHERE id = ?`,
		StatusCompleted, string(source), chapterCount, formatTime(time.Now()), runID,
	)
	if err != nil {
		return fmt.Errorf("complete run: %w", err)
	}
	return nil
}

// Fail marks a run as failed with the error message.
func (s *Store) Fail(ctx context.Context, runID string, runErr error) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET status = ?, error = ?, finished_at = ?
		WHERE id = ?`,
		StatusFailed, msg, formatTime(time.Now()), runID,
	)
	if err != nil {
		return fmt.Errorf("fail run: %w", err)
	}
	return nil
}

// Recent returns the most recent runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, path, rel_path, source, chapter_count, status, error, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ByPath returns runs for a single input path, newest first.
func (s *Store) ByPath(ctx context.Context, path string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, path, rel_path, source, chapter_count, status, error, started_at, finished_at
		FROM runs
		WHERE path = ?
		ORDER BY started_at DESC`, path,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs by path: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		run        Run
		source     string
		startedAt  string
		finishedAt sql.NullString
	)
	if err := rows.Scan(&run.ID, &run.Path, &run.RelPath, &source, &run.ChapterCount,
		&run.Status, &run.Error, &startedAt, &finishedAt); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	run.Source = domain.Source(source)

	started, err := parseTime(startedAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse started_at: %w", err)
	}
	run.StartedAt = started

	run.FinishedAt, err = parseNullableTime(finishedAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse finished_at: %w", err)
	}
	return run, nil
}

// formatTime formats a time.Time to RFC3339Nano for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a RFC3339Nano string back to time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// parseNullableTime parses an optional time string.
func parseNullableTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
