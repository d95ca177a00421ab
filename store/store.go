// Package store persists report-generation run history in a local SQLite
// database, so operators can audit which parameters produced which outputs.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run is one recorded report-generation run.
type Run struct {
	ID               string
	Template         string
	Parameters       map[string]any
	Success          bool
	ExcelPath        string
	PPTXPath         string
	Error            string
	ExecutionSeconds float64
	StartedAt        time.Time
}

// Store is a run-history database. Safe for concurrent use.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	template TEXT NOT NULL,
	parameters TEXT NOT NULL,
	success INTEGER NOT NULL,
	excel_path TEXT,
	pptx_path TEXT,
	error TEXT,
	execution_seconds REAL NOT NULL,
	started_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_template ON runs(template);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// Open opens (creating if needed) the run-history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open run history %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init run history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// RecordRun inserts a run and returns its generated id.
func (s *Store) RecordRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	params, err := json.Marshal(run.Parameters)
	if err != nil {
		return "", fmt.Errorf("encode run parameters: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, template, parameters, success, excel_path, pptx_path, error, execution_seconds, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Template, string(params), boolInt(run.Success),
		run.ExcelPath, run.PPTXPath, run.Error, run.ExecutionSeconds,
		run.StartedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return run.ID, nil
}

// GetRun fetches one run by id.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, template, parameters, success, excel_path, pptx_path, error, execution_seconds, started_at
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns the most recent runs for a template, newest first. An
// empty template matches all templates.
func (s *Store) ListRuns(ctx context.Context, template string, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, template, parameters, success, excel_path, pptx_path, error, execution_seconds, started_at
		 FROM runs`
	args := []any{}
	if template != "" {
		query += ` WHERE template = ?`
		args = append(args, template)
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var params, startedAt string
	var success int
	if err := row.Scan(&run.ID, &run.Template, &params, &success,
		&run.ExcelPath, &run.PPTXPath, &run.Error, &run.ExecutionSeconds, &startedAt); err != nil {
		return nil, err
	}
	run.Success = success != 0
	if params != "" {
		if err := json.Unmarshal([]byte(params), &run.Parameters); err != nil {
			return nil, fmt.Errorf("decode run parameters: %w", err)
		}
	}
	t, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse started_at %q: %w", startedAt, err)
	}
	run.StartedAt = t
	return &run, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
