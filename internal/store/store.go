// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists extracted snippets in a SQLite database so other
// tools can query them without rescanning the sources.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/docsnip/internal/logging"
	"github.com/pdiddy/docsnip/pkg/types"
)

// DefaultFile is the database file name used when only a directory is given.
const DefaultFile = "docsnip.db"

// ErrNotFound is returned by Get when no snippet has the requested ID.
var ErrNotFound = errors.New("snippet not found")

// Store manages the snippet database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path, creating parent directories
// and the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS snippets (
			id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			source TEXT,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snippets_source ON snippets(source)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveSummary holds counts from one Save call.
type SaveSummary struct {
	Inserted  int
	Updated   int
	Unchanged int
}

// Total returns the number of snippets processed.
func (s SaveSummary) Total() int {
	return s.Inserted + s.Updated + s.Unchanged
}

// Save upserts results in a single transaction. A snippet whose data and
// source are already stored is left untouched.
func (s *Store) Save(ctx context.Context, results []types.ContentResult) (SaveSummary, error) {
	log := logging.Get("store")
	defer logging.OperationStart(log, "save")()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SaveSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	upsert, err := tx.PrepareContext(ctx,
		`INSERT INTO snippets (id, data, source, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			data=excluded.data, source=excluded.source, updated_at=excluded.updated_at`)
	if err != nil {
		return SaveSummary{}, fmt.Errorf("preparing upsert: %w", err)
	}
	defer upsert.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	var summary SaveSummary
	for _, r := range results {
		var data, source sql.NullString
		err := tx.QueryRowContext(ctx,
			`SELECT data, source FROM snippets WHERE id = ?`, r.ID,
		).Scan(&data, &source)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			summary.Inserted++
		case err != nil:
			return SaveSummary{}, fmt.Errorf("looking up snippet %s: %w", r.ID, err)
		case data.String == r.Data && source.String == r.Source:
			summary.Unchanged++
			continue
		default:
			summary.Updated++
		}

		if _, err := upsert.ExecContext(ctx, r.ID, r.Data, r.Source, now); err != nil {
			return SaveSummary{}, fmt.Errorf("saving snippet %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return SaveSummary{}, fmt.Errorf("committing: %w", err)
	}

	log.Debug().
		Int("inserted", summary.Inserted).
		Int("updated", summary.Updated).
		Int("unchanged", summary.Unchanged).
		Msg("snippets saved")
	return summary, nil
}

// All returns every stored snippet ordered by ID.
func (s *Store) All(ctx context.Context) ([]types.ContentResult, error) {
	return s.query(ctx, `SELECT id, data, source FROM snippets ORDER BY id`)
}

// Search returns snippets whose ID or data contains term, ordered by ID.
// A non-positive limit returns every match.
func (s *Store) Search(ctx context.Context, term string, limit int) ([]types.ContentResult, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.query(ctx,
		`SELECT id, data, source FROM snippets
		 WHERE instr(id, ?) > 0 OR instr(data, ?) > 0
		 ORDER BY id LIMIT ?`,
		term, term, limit)
}

// Get returns the snippet with the given ID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (types.ContentResult, error) {
	var (
		r      types.ContentResult
		source sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, data, source FROM snippets WHERE id = ?`, id,
	).Scan(&r.ID, &r.Data, &source)
	if errors.Is(err, sql.ErrNoRows) {
		return types.ContentResult{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return types.ContentResult{}, fmt.Errorf("querying snippet %s: %w", id, err)
	}
	r.Source = source.String
	return r, nil
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]types.ContentResult, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying snippets: %w", err)
	}
	defer rows.Close()

	var out []types.ContentResult
	for rows.Next() {
		var (
			r      types.ContentResult
			source sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Data, &source); err != nil {
			return nil, fmt.Errorf("scanning snippet: %w", err)
		}
		r.Source = source.String
		out = append(out, r)
	}
	return out, rows.Err()
}
