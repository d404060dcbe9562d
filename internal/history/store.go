// Package history persists a summary row per analysis run so that trends
// stay visible across invocations.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id         TEXT PRIMARY KEY,
    started_at TIMESTAMP NOT NULL,
    root       TEXT NOT NULL,
    errors     INTEGER NOT NULL,
    warnings   INTEGER NOT NULL,
    duplicates INTEGER NOT NULL,
    tools      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
`

// Run is one recorded analysis run.
type Run struct {
	ID         string
	StartedAt  time.Time
	Root       string
	Errors     int
	Warnings   int
	Duplicates int
	Tools      []string
}

// Store is the SQLite-backed run log.
type Store struct {
	db *sql.DB
}

// Open creates the database (and its parent directory) if needed and
// applies the schema.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts a run row. A missing id or start time is filled in.
func (s *Store) Record(ctx context.Context, run Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, root, errors, warnings, duplicates, tools)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.Root, run.Errors, run.Warnings, run.Duplicates,
		strings.Join(run.Tools, ","))
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit < 1 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, root, errors, warnings, duplicates, tools
		 FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var tools string
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.Root,
			&run.Errors, &run.Warnings, &run.Duplicates, &tools); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if tools != "" {
			run.Tools = strings.Split(tools, ",")
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
