package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/unifieddocs/docshub/internal/errors"
)

// AddDocument inserts or replaces a document and mirrors it into the
// full-text index within the same transaction. Re-indexing an existing
// path replaces content and hash and refreshes the timestamp; it never
// creates a duplicate row.
func (s *Store) AddDocument(ctx context.Context, repoID int64, path, content, contentHash string) error {
	if path == "" {
		return errors.ConstraintError("document path is required", nil)
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var fullName string
	err = tx.QueryRowContext(ctx, "SELECT full_name FROM repositories WHERE id = ?", repoID).Scan(&fullName)
	if err == sql.ErrNoRows {
		return errors.NotFoundError(fmt.Sprintf("repository id %d not found", repoID))
	}
	if err != nil {
		return errors.StoreError(fmt.Sprintf("lookup repository %d: %v", repoID, err), err)
	}

	var docID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO documents (repo_id, path, content, content_hash)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(repo_id, path) DO UPDATE SET
			content = excluded.content,
			content_hash = excluded.content_hash,
			indexed_at = CURRENT_TIMESTAMP
		RETURNING id
	`, repoID, path, content, contentHash).Scan(&docID)
	if err != nil {
		return errors.StoreError(fmt.Sprintf("upsert document %s: %v", path, err), err)
	}

	// Replace the index entry in place: delete-then-insert under the
	// same rowid keeps entry count equal to document count.
	if _, err := tx.ExecContext(ctx, "DELETE FROM documents_fts WHERE rowid = ?", docID); err != nil {
		return errors.IndexConsistencyError(fmt.Sprintf("clear index entry for %s: %v", path, err), err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents_fts(rowid, repo_full_name, path, content)
		VALUES (?, ?, ?, ?)
	`, docID, fullName, path, content); err != nil {
		return errors.IndexConsistencyError(fmt.Sprintf("index document %s: %v", path, err), err)
	}

	if err := tx.Commit(); err != nil {
		return errors.StoreError(fmt.Sprintf("commit document %s: %v", path, err), err)
	}
	return nil
}

// DeleteDocument removes a document and its index entry in one
// transaction.
func (s *Store) DeleteDocument(ctx context.Context, repoID int64, path string) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var docID int64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM documents WHERE repo_id = ? AND path = ?", repoID, path).Scan(&docID)
	if err == sql.ErrNoRows {
		return errors.NotFoundError(fmt.Sprintf("document %s not found", path))
	}
	if err != nil {
		return errors.StoreError(fmt.Sprintf("lookup document %s: %v", path, err), err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM documents_fts WHERE rowid = ?", docID); err != nil {
		return errors.IndexConsistencyError(fmt.Sprintf("delete index entry for %s: %v", path, err), err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", docID); err != nil {
		return errors.StoreError(fmt.Sprintf("delete document %s: %v", path, err), err)
	}

	if err := tx.Commit(); err != nil {
		return errors.StoreError(fmt.Sprintf("commit delete %s: %v", path, err), err)
	}
	return nil
}

// GetRepositoryDocuments returns all documents for a repository,
// ordered by path.
func (s *Store) GetRepositoryDocuments(ctx context.Context, fullName string) ([]RepoDocument, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.path, d.content, d.indexed_at, r.full_name, COALESCE(r.category, ''), r.stars
		FROM documents d
		JOIN repositories r ON d.repo_id = r.id
		WHERE r.full_name = ?
		ORDER BY d.path
	`, fullName)
	if err != nil {
		return nil, errors.StoreError(fmt.Sprintf("get documents for %s: %v", fullName, err), err)
	}
	defer rows.Close()

	var docs []RepoDocument
	for rows.Next() {
		var d RepoDocument
		var indexedAt sql.NullTime
		if err := rows.Scan(&d.Path, &d.Content, &indexedAt, &d.FullName, &d.Category, &d.Stars); err != nil {
			return nil, errors.StoreError(fmt.Sprintf("scan document: %v", err), err)
		}
		if indexedAt.Valid {
			d.IndexedAt = indexedAt.Time
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// GetStatistics returns aggregate counts over the whole index.
func (s *Store) GetStatistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{
		BySource:   make(map[Source]int),
		ByCategory: make(map[string]int),
	}

	var curated, discovered int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COUNT(CASE WHEN source = 'curated' THEN 1 END),
			COUNT(CASE WHEN source = 'discovered' THEN 1 END)
		FROM repositories
	`).Scan(&stats.TotalRepositories, &curated, &discovered)
	if err != nil {
		return nil, errors.StoreError(fmt.Sprintf("repository counts: %v", err), err)
	}
	stats.BySource[SourceCurated] = curated
	stats.BySource[SourceDiscovered] = discovered

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, COUNT(*) FROM repositories
		WHERE category IS NOT NULL
		GROUP BY category ORDER BY COUNT(*) DESC
	`)
	if err != nil {
		return nil, errors.StoreError(fmt.Sprintf("category counts: %v", err), err)
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, errors.StoreError(fmt.Sprintf("scan category: %v", err), err)
		}
		stats.ByCategory[category] = count
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreError(fmt.Sprintf("category counts: %v", err), err)
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&stats.TotalDocuments); err != nil {
		return nil, errors.StoreError(fmt.Sprintf("document count: %v", err), err)
	}

	langRows, err := s.db.QueryContext(ctx, `
		SELECT language, COUNT(*) FROM repositories
		WHERE language IS NOT NULL AND language != ''
		GROUP BY language ORDER BY COUNT(*) DESC LIMIT 10
	`)
	if err != nil {
		return nil, errors.StoreError(fmt.Sprintf("language counts: %v", err), err)
	}
	defer langRows.Close()
	for langRows.Next() {
		var lc LanguageCount
		if err := langRows.Scan(&lc.Language, &lc.Count); err != nil {
			return nil, errors.StoreError(fmt.Sprintf("scan language: %v", err), err)
		}
		stats.ByLanguage = append(stats.ByLanguage, lc)
	}
	if err := langRows.Err(); err != nil {
		return nil, errors.StoreError(fmt.Sprintf("language counts: %v", err), err)
	}

	var sizeBytes int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()").Scan(&sizeBytes); err != nil {
		return nil, errors.StoreError(fmt.Sprintf("database size: %v", err), err)
	}
	stats.DatabaseSizeMB = float64(sizeBytes) / (1024 * 1024)

	return stats, nil
}

// GetCategories returns all categories with repository counts and up
// to three example repositories each.
func (s *Store) GetCategories(ctx context.Context) ([]CategoryInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, COUNT(*), GROUP_CONCAT(full_name, ', ')
		FROM repositories
		WHERE category IS NOT NULL
		GROUP BY category
		ORDER BY COUNT(*) DESC
	`)
	if err != nil {
		return nil, errors.StoreError(fmt.Sprintf("get categories: %v", err), err)
	}
	defer rows.Close()

	var cats []CategoryInfo
	for rows.Next() {
		var c CategoryInfo
		var examples sql.NullString
		if err := rows.Scan(&c.Category, &c.Count, &examples); err != nil {
			return nil, errors.StoreError(fmt.Sprintf("scan category: %v", err), err)
		}
		if examples.Valid && examples.String != "" {
			all := strings.Split(examples.String, ", ")
			if len(all) > 3 {
				all = all[:3]
			}
			c.ExampleRepos = all
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}
