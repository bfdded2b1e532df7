// Package ioreport saves replay runs into a local SQLite file.
package ioreport

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aurora-skin/skinsafety/pkg/report"
	"github.com/aurora-skin/skinsafety/pkg/schema"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGo)
)

type sqliteStore struct {
	path string
	db   *sql.DB
}

// NewSQLiteStore creates a report store backed by the SQLite file at
// path. The file and its directory are created on Open.
func NewSQLiteStore(path string) report.Store {
	return &sqliteStore{path: path}
}

// Open opens the file and creates report tables from the schema
// models.
func (s *sqliteStore) Open(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return OpenError(s.path, err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return OpenError(s.path, err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return OpenError(s.path, err)
	}

	for _, m := range schema.AllModels() {
		stmts := append([]string{m.TableDDL()}, m.IndexDDL()...)
		for _, q := range stmts {
			if _, err := db.ExecContext(ctx, q); err != nil {
				db.Close()
				return OpenError(s.path, err)
			}
		}
	}

	s.db = db
	return nil
}

// Save writes the run and its results in one transaction.
func (s *sqliteStore) Save(ctx context.Context, run report.Run) error {
	if s.db == nil {
		return SaveError(s.path, sql.ErrConnDone)
	}

	r, rows := schema.FromRun(run)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SaveError(s.path, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schema.InsertSQL(r), schema.Values(r)...); err != nil {
		return SaveError(s.path, err)
	}

	stmt, err := tx.PrepareContext(ctx, schema.InsertSQL(schema.ReplayResult{}))
	if err != nil {
		return SaveError(s.path, err)
	}
	defer stmt.Close()

	for _, v := range rows {
		if _, err := stmt.ExecContext(ctx, schema.Values(v)...); err != nil {
			return SaveError(s.path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return SaveError(s.path, err)
	}

	slog.Info("Saved replay run to SQLite",
		"path", s.path, "run_id", r.ID, "results", len(rows))
	return nil
}

// Close closes the database file.
func (s *sqliteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
