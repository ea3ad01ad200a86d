// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists researchers, author identities, papers, venues,
// and contributions in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/scholar-linker/pkg/types"
)

const (
	defaultDir  = "data"
	defaultFile = "scholar.db"
	memoryPath  = ":memory:"
)

// Store manages the scholar SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at cfg.Path (default
// data/scholar.db) and creates the schema if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = filepath.Join(defaultDir, defaultFile)
	}

	dsn := path
	if path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		dsn = path + "?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One writer at a time; SQLite serializes writes anyway and a single
	// connection keeps an in-memory database alive across calls.
	db.SetMaxOpenConns(1)

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
	statements := []string{
		`CREATE TABLE IF NOT EXISTS researcher (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL DEFAULT '',
			affiliation TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS author (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			rid INTEGER NOT NULL REFERENCES researcher(id),
			email TEXT NOT NULL DEFAULT '',
			university TEXT NOT NULL DEFAULT '',
			college TEXT NOT NULL DEFAULT '',
			lab TEXT NOT NULL DEFAULT '',
			needs_disambiguation INTEGER NOT NULL DEFAULT 0,
			UNIQUE (rid, email, university, college, lab)
		)`,
		`CREATE TABLE IF NOT EXISTS venue (
			name TEXT PRIMARY KEY,
			kind TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS paper (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL UNIQUE,
			venue TEXT NOT NULL DEFAULT '',
			year TEXT NOT NULL DEFAULT '',
			author_count INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS author_paper (
			aid INTEGER NOT NULL REFERENCES author(id),
			pid INTEGER NOT NULL REFERENCES paper(id),
			contribution TEXT NOT NULL DEFAULT 'PAPER_AUTHOR',
			email TEXT NOT NULL DEFAULT '',
			university TEXT NOT NULL DEFAULT '',
			college TEXT NOT NULL DEFAULT '',
			lab TEXT NOT NULL DEFAULT '',
			needs_disambiguation INTEGER NOT NULL DEFAULT 0,
			UNIQUE (aid, pid)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_author_rid ON author(rid)`,
		`CREATE INDEX IF NOT EXISTS idx_author_paper_pid ON author_paper(pid)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// WithTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back on error or panic. Failures of the
// transaction itself are reported as store faults; fn's own error is
// returned as is.
func (s *Store) WithTx(ctx context.Context, fn func(Writer) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.StoreFault("begin transaction", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(&sqlTx{tx: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return types.StoreFault("commit", err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
