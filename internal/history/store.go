// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists a ledger of past runs in SQLite. The ledger is
// strictly best-effort: a broken or unwritable database must never fail a
// fetch run.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Run is one ledger row: a single fetch invocation and its outcome.
type Run struct {
	ID           int64
	Date         string // issue date, "2006-01-02"
	OutputPath   string
	PagesTotal   int
	PagesFetched int
	Bytes        int64 // size of the written output file
	Compressed   bool
	State        string // final pipeline state
	CreatedAt    time.Time
}

// Store manages the run ledger database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	const schema = `CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		output_path TEXT NOT NULL,
		pages_total INTEGER NOT NULL,
		pages_fetched INTEGER NOT NULL,
		bytes INTEGER NOT NULL,
		compressed INTEGER NOT NULL,
		state TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Record appends one run to the ledger.
func (s *Store) Record(run Run) error {
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (date, output_path, pages_total, pages_fetched, bytes, compressed, state, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Date, run.OutputPath, run.PagesTotal, run.PagesFetched,
		run.Bytes, run.Compressed, run.State, createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, most recent first.
func (s *Store) Recent(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, date, output_path, pages_total, pages_fetched, bytes, compressed, state, created_at
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Date, &r.OutputPath, &r.PagesTotal,
			&r.PagesFetched, &r.Bytes, &r.Compressed, &r.State, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if t, parseErr := time.Parse(time.RFC3339, createdAt); parseErr == nil {
			r.CreatedAt = t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
