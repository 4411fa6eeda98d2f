// internal/history/history.go
// Package history persists one row per completed benchmark run so past
// accuracy and throughput can be compared across models and settings
// without re-reading the result logs.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mwiater/medbench/internal/report"
)

const defaultListLimit = 25

// Run is one persisted benchmark pass.
type Run struct {
	ID          int64
	Suite       string
	Model       string
	Temperature float64
	Threshold   *float64
	Total       int
	Correct     int
	AccuracyPct float64
	RefusalPct  float64
	MeanLatency float64
	MeanTPS     float64
	ResultsPath string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Store keeps run rows in a SQLite database. Pass ":memory:" for an
// ephemeral store.
type Store struct {
	db *sql.DB
}

// Open creates the database file (and its directory) if needed and
// prepares the schema.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history: empty database path")
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("history: create database dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: ping database: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`PRAGMA journal_mode = WAL`,
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			suite TEXT NOT NULL,
			model TEXT NOT NULL,
			temperature REAL NOT NULL,
			threshold REAL,
			total INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			accuracy_pct REAL NOT NULL,
			refusal_pct REAL NOT NULL,
			mean_latency REAL NOT NULL,
			mean_tps REAL NOT NULL,
			results_path TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			finished_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_suite ON runs(suite, finished_at)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("history: init schema: %w", err)
		}
	}
	return nil
}

// Save records one completed run and returns its row id.
func (s *Store) Save(ctx context.Context, run Run, summary report.Summary) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("history: store not open")
	}

	var threshold sql.NullFloat64
	if run.Threshold != nil {
		threshold = sql.NullFloat64{Float64: *run.Threshold, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (
			suite, model, temperature, threshold, total, correct,
			accuracy_pct, refusal_pct, mean_latency, mean_tps,
			results_path, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		strings.ToLower(strings.TrimSpace(run.Suite)), run.Model, run.Temperature, threshold,
		summary.Total, summary.Correct,
		summary.AccuracyPct, summary.RefusalPct,
		summary.MeanLatency, summary.MeanTPS,
		run.ResultsPath, run.StartedAt.Unix(), run.FinishedAt.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("history: insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("history: read run id: %w", err)
	}
	return id, nil
}

// List returns the most recent runs, newest first. A non-empty suiteName
// filters to that suite; limit <= 0 uses the default.
func (s *Store) List(ctx context.Context, suiteName string, limit int) ([]Run, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("history: store not open")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `
		SELECT id, suite, model, temperature, threshold, total, correct,
			accuracy_pct, refusal_pct, mean_latency, mean_tps,
			results_path, started_at, finished_at
		FROM runs`
	args := []any{}
	if suiteName != "" {
		query += ` WHERE suite = ?`
		args = append(args, strings.ToLower(strings.TrimSpace(suiteName)))
	}
	query += ` ORDER BY finished_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run       Run
			threshold sql.NullFloat64
			started   int64
			finished  int64
		)
		if err := rows.Scan(
			&run.ID, &run.Suite, &run.Model, &run.Temperature, &threshold,
			&run.Total, &run.Correct, &run.AccuracyPct, &run.RefusalPct,
			&run.MeanLatency, &run.MeanTPS, &run.ResultsPath,
			&started, &finished,
		); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		if threshold.Valid {
			v := threshold.Float64
			run.Threshold = &v
		}
		run.StartedAt = time.Unix(started, 0).UTC()
		run.FinishedAt = time.Unix(finished, 0).UTC()
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate runs: %w", err)
	}
	return runs, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
