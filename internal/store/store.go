package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/unifieddocs/docshub/internal/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS repositories (
	id INTEGER PRIMARY KEY,
	owner TEXT NOT NULL,
	name TEXT NOT NULL,
	full_name TEXT UNIQUE NOT NULL,
	stars INTEGER DEFAULT 0,
	language TEXT,
	category TEXT,
	description TEXT,
	source TEXT NOT NULL CHECK (source IN ('curated', 'discovered')),
	quality_score REAL DEFAULT 0.5,
	quality_grade TEXT DEFAULT 'C',
	quality_metrics TEXT,
	priority TEXT DEFAULT 'medium',
	doc_paths TEXT,
	topics TEXT,
	license TEXT,
	pushed_at TIMESTAMP,
	last_indexed TIMESTAMP,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(owner, name)
);

CREATE TABLE IF NOT EXISTS documents (
	id INTEGER PRIMARY KEY,
	repo_id INTEGER NOT NULL,
	path TEXT NOT NULL,
	content TEXT,
	content_hash TEXT,
	indexed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (repo_id) REFERENCES repositories(id) ON DELETE CASCADE,
	UNIQUE(repo_id, path)
);

CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
	repo_full_name,
	path,
	content
);

CREATE TABLE IF NOT EXISTS indexing_history (
	id INTEGER PRIMARY KEY,
	repo_id INTEGER NOT NULL,
	status TEXT NOT NULL,
	documents_indexed INTEGER DEFAULT 0,
	error_message TEXT,
	started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	completed_at TIMESTAMP,
	FOREIGN KEY (repo_id) REFERENCES repositories(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_repos_source ON repositories(source);
CREATE INDEX IF NOT EXISTS idx_repos_category ON repositories(category);
CREATE INDEX IF NOT EXISTS idx_repos_stars ON repositories(stars DESC);
CREATE INDEX IF NOT EXISTS idx_docs_repo ON documents(repo_id);
`

// Store is the SQLite-backed document store. All writes run on a
// single connection, serializing them relative to each other; the
// directory flock keeps a second process from opening the store for
// writing.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open opens (or creates) the store at path. An empty path opens an
// in-memory store for testing, with no file lock.
func Open(path string) (*Store, error) {
	var dsn string
	var lock *flock.Flock

	if path == "" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.StoreError(fmt.Sprintf("create store directory: %v", err), err)
		}

		lock = flock.New(path + ".lock")
		locked, err := lock.TryLock()
		if err != nil {
			return nil, errors.StoreError(fmt.Sprintf("acquire store lock: %v", err), err)
		}
		if !locked {
			return nil, errors.New(errors.ErrCodeStoreLocked,
				fmt.Sprintf("store %s is locked by another process", path), nil)
		}

		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		if lock != nil {
			_ = lock.Unlock()
		}
		return nil, errors.StoreError(fmt.Sprintf("open database: %v", err), err)
	}

	// Single connection: SQLite writes are serialized and the FTS
	// transaction always sees its own document write.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// DSN pragma params may be ignored by modernc.org/sqlite, so set
	// them with statements.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			if lock != nil {
				_ = lock.Unlock()
			}
			return nil, errors.StoreError(fmt.Sprintf("set pragma: %v", err), err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		if lock != nil {
			_ = lock.Unlock()
		}
		return nil, errors.StoreError(fmt.Sprintf("create schema: %v", err), err)
	}

	slog.Debug("store_opened", slog.String("path", path))
	return &Store{db: db, path: path, lock: lock}, nil
}

// Close closes the database and releases the store lock.
func (s *Store) Close() error {
	err := s.db.Close()
	if s.lock != nil {
		_ = s.lock.Unlock()
	}
	return err
}

// begin starts a write transaction with rollback-on-error semantics
// handled by the caller via defer tx.Rollback().
func (s *Store) begin(ctx context.Context) (*sql.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.StoreError(fmt.Sprintf("begin transaction: %v", err), err)
	}
	return tx, nil
}

// IndexEntryCount returns the number of rows in the full-text index.
// Used by consistency checks: it must equal the live document count.
func (s *Store) IndexEntryCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents_fts").Scan(&n); err != nil {
		return 0, errors.StoreError(fmt.Sprintf("count index entries: %v", err), err)
	}
	return n, nil
}

// DocumentCount returns the number of live document rows.
func (s *Store) DocumentCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&n); err != nil {
		return 0, errors.StoreError(fmt.Sprintf("count documents: %v", err), err)
	}
	return n, nil
}

// RebuildIndex clears and repopulates the full-text index from the
// current document table. Safe to call at any time; afterwards the
// index contents exactly match live documents. Returns the number of
// documents indexed.
func (s *Store) RebuildIndex(ctx context.Context) (int, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM documents_fts"); err != nil {
		return 0, errors.IndexConsistencyError(fmt.Sprintf("clear index: %v", err), err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO documents_fts(rowid, repo_full_name, path, content)
		SELECT d.id, r.full_name, d.path, d.content
		FROM documents d
		JOIN repositories r ON r.id = d.repo_id
	`)
	if err != nil {
		return 0, errors.IndexConsistencyError(fmt.Sprintf("repopulate index: %v", err), err)
	}

	count, err := res.RowsAffected()
	if err != nil {
		return 0, errors.IndexConsistencyError(fmt.Sprintf("count rebuilt entries: %v", err), err)
	}

	var live int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&live); err != nil {
		return 0, errors.StoreError(fmt.Sprintf("count documents: %v", err), err)
	}
	if int(count) != live {
		return 0, errors.IndexConsistencyError(
			fmt.Sprintf("rebuilt %d index entries for %d documents", count, live), nil)
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.StoreError(fmt.Sprintf("commit rebuild: %v", err), err)
	}

	slog.Info("fts_index_rebuilt", slog.Int("documents", live))
	return int(count), nil
}

// RecordIndexingRun appends one row to the indexing history.
func (s *Store) RecordIndexingRun(ctx context.Context, repoID int64, status IndexingStatus, docsIndexed int, errMsg string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO indexing_history (repo_id, status, documents_indexed, error_message, completed_at)
		VALUES (?, ?, ?, NULLIF(?, ''), ?)
	`, repoID, string(status), docsIndexed, errMsg, time.Now().UTC())
	if err != nil {
		return errors.StoreError(fmt.Sprintf("record indexing run: %v", err), err)
	}
	return nil
}
