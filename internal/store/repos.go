package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/unifieddocs/docshub/internal/errors"
)

// UpsertRepository inserts a repository or, on (owner, name) conflict,
// updates its mutable fields. Stars, language, quality fields, priority
// and the doc-path/topic lists are always overwritten; category and
// description are only replaced when the incoming value is non-empty.
// Returns the repository id.
func (s *Store) UpsertRepository(ctx context.Context, repo *Repository) (int64, error) {
	if repo.Owner == "" || repo.Name == "" {
		return 0, errors.ConstraintError("repository owner and name are required", nil).
			WithDetail("owner", repo.Owner).
			WithDetail("name", repo.Name)
	}
	if repo.Source == "" {
		repo.Source = SourceDiscovered
	}
	if repo.Source != SourceCurated && repo.Source != SourceDiscovered {
		return 0, errors.ConstraintError(
			fmt.Sprintf("invalid source %q (want curated or discovered)", repo.Source), nil)
	}

	fullName := repo.Owner + "/" + repo.Name
	docPaths, err := json.Marshal(orEmpty(repo.DocPaths))
	if err != nil {
		return 0, errors.ValidationError(fmt.Sprintf("encode doc paths: %v", err), err)
	}
	topics, err := json.Marshal(orEmpty(repo.Topics))
	if err != nil {
		return 0, errors.ValidationError(fmt.Sprintf("encode topics: %v", err), err)
	}
	metrics, err := json.Marshal(repo.QualityMetrics)
	if err != nil {
		return 0, errors.ValidationError(fmt.Sprintf("encode quality metrics: %v", err), err)
	}

	score := repo.QualityScore
	if score == 0 {
		score = 0.5
	}
	grade := repo.QualityGrade
	if grade == "" {
		grade = "C"
	}
	priority := repo.Priority
	if priority == "" {
		priority = "medium"
	}

	var id int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO repositories (
			owner, name, full_name, stars, language, category, description,
			source, quality_score, quality_grade, quality_metrics, priority,
			doc_paths, topics, license, pushed_at
		) VALUES (?, ?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), ?, ?, ?, ?, ?, ?, ?, NULLIF(?, ''), ?)
		ON CONFLICT(owner, name) DO UPDATE SET
			stars = excluded.stars,
			language = excluded.language,
			category = COALESCE(excluded.category, category),
			description = COALESCE(excluded.description, description),
			quality_score = excluded.quality_score,
			quality_grade = excluded.quality_grade,
			quality_metrics = excluded.quality_metrics,
			priority = excluded.priority,
			doc_paths = excluded.doc_paths,
			topics = excluded.topics,
			license = COALESCE(excluded.license, license),
			pushed_at = excluded.pushed_at
		RETURNING id
	`, repo.Owner, repo.Name, fullName, repo.Stars, repo.Language, repo.Category,
		repo.Description, string(repo.Source), score, grade, string(metrics),
		priority, string(docPaths), string(topics), repo.License, nullTime(repo.PushedAt),
	).Scan(&id)
	if err != nil {
		if strings.Contains(err.Error(), "constraint") {
			return 0, errors.ConstraintError(fmt.Sprintf("upsert %s: %v", fullName, err), err)
		}
		return 0, errors.StoreError(fmt.Sprintf("upsert %s: %v", fullName, err), err)
	}
	return id, nil
}

// GetRepository returns the repository with the given "owner/name"
// full name, or a NotFoundError.
func (s *Store) GetRepository(ctx context.Context, fullName string) (*Repository, error) {
	row := s.db.QueryRowContext(ctx, repoSelect+" WHERE full_name = ?", fullName)
	repo, err := scanRepository(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundError(fmt.Sprintf("repository %s not found", fullName))
	}
	if err != nil {
		return nil, errors.StoreError(fmt.Sprintf("get repository %s: %v", fullName, err), err)
	}
	return repo, nil
}

// ListRepositories returns repositories matching the filters, ordered
// by quality score then stars, both descending.
func (s *Store) ListRepositories(ctx context.Context, filters *SearchFilters) ([]*Repository, error) {
	sqlStr := repoSelect + " WHERE 1=1"
	var params []any

	if filters != nil {
		if filters.Category != "" {
			sqlStr += " AND category = ?"
			params = append(params, filters.Category)
		}
		if filters.Source != "" {
			sqlStr += " AND source = ?"
			params = append(params, string(filters.Source))
		}
		if filters.MinStars > 0 {
			sqlStr += " AND stars >= ?"
			params = append(params, filters.MinStars)
		}
	}

	sqlStr += " ORDER BY quality_score DESC, stars DESC"

	rows, err := s.db.QueryContext(ctx, sqlStr, params...)
	if err != nil {
		return nil, errors.StoreError(fmt.Sprintf("list repositories: %v", err), err)
	}
	defer rows.Close()

	var repos []*Repository
	for rows.Next() {
		repo, err := scanRepository(rows)
		if err != nil {
			return nil, errors.StoreError(fmt.Sprintf("scan repository: %v", err), err)
		}
		repos = append(repos, repo)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreError(fmt.Sprintf("list repositories: %v", err), err)
	}
	return repos, nil
}

// DeleteRepository removes a repository, its documents, and their
// index entries in one transaction.
func (s *Store) DeleteRepository(ctx context.Context, fullName string) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRowContext(ctx, "SELECT id FROM repositories WHERE full_name = ?", fullName).Scan(&id)
	if err == sql.ErrNoRows {
		return errors.NotFoundError(fmt.Sprintf("repository %s not found", fullName))
	}
	if err != nil {
		return errors.StoreError(fmt.Sprintf("lookup %s: %v", fullName, err), err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM documents_fts WHERE rowid IN (SELECT id FROM documents WHERE repo_id = ?)", id); err != nil {
		return errors.IndexConsistencyError(fmt.Sprintf("delete index entries for %s: %v", fullName, err), err)
	}

	// Documents and history cascade via foreign keys.
	if _, err := tx.ExecContext(ctx, "DELETE FROM repositories WHERE id = ?", id); err != nil {
		return errors.StoreError(fmt.Sprintf("delete %s: %v", fullName, err), err)
	}

	if err := tx.Commit(); err != nil {
		return errors.StoreError(fmt.Sprintf("commit delete %s: %v", fullName, err), err)
	}
	return nil
}

// UpdateQuality replaces a repository's quality assessment wholesale.
func (s *Store) UpdateQuality(ctx context.Context, repoID int64, score float64, grade string, metrics map[string]float64) error {
	encoded, err := json.Marshal(metrics)
	if err != nil {
		return errors.ValidationError(fmt.Sprintf("encode quality metrics: %v", err), err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE repositories
		SET quality_score = ?, quality_grade = ?, quality_metrics = ?
		WHERE id = ?
	`, score, grade, string(encoded), repoID)
	if err != nil {
		return errors.StoreError(fmt.Sprintf("update quality: %v", err), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NotFoundError(fmt.Sprintf("repository id %d not found", repoID))
	}
	return nil
}

// TouchLastIndexed refreshes a repository's last-indexed timestamp.
func (s *Store) TouchLastIndexed(ctx context.Context, repoID int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE repositories SET last_indexed = ? WHERE id = ?", time.Now().UTC(), repoID)
	if err != nil {
		return errors.StoreError(fmt.Sprintf("touch last_indexed: %v", err), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NotFoundError(fmt.Sprintf("repository id %d not found", repoID))
	}
	return nil
}

const repoSelect = `
	SELECT id, owner, name, full_name, stars,
		COALESCE(language, ''), COALESCE(category, ''), COALESCE(description, ''),
		source, quality_score, quality_grade, COALESCE(quality_metrics, '{}'),
		priority, COALESCE(doc_paths, '[]'), COALESCE(topics, '[]'),
		COALESCE(license, ''), pushed_at, last_indexed, created_at
	FROM repositories`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRepository(row rowScanner) (*Repository, error) {
	var repo Repository
	var source, metricsJSON, docPathsJSON, topicsJSON string
	var pushedAt, lastIndexed, createdAt sql.NullTime

	err := row.Scan(
		&repo.ID, &repo.Owner, &repo.Name, &repo.FullName, &repo.Stars,
		&repo.Language, &repo.Category, &repo.Description,
		&source, &repo.QualityScore, &repo.QualityGrade, &metricsJSON,
		&repo.Priority, &docPathsJSON, &topicsJSON,
		&repo.License, &pushedAt, &lastIndexed, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	repo.Source = Source(source)
	if pushedAt.Valid {
		repo.PushedAt = pushedAt.Time
	}
	if lastIndexed.Valid {
		repo.LastIndexed = lastIndexed.Time
	}
	if createdAt.Valid {
		repo.CreatedAt = createdAt.Time
	}

	if err := json.Unmarshal([]byte(metricsJSON), &repo.QualityMetrics); err != nil {
		return nil, fmt.Errorf("decode quality metrics: %w", err)
	}
	if err := json.Unmarshal([]byte(docPathsJSON), &repo.DocPaths); err != nil {
		return nil, fmt.Errorf("decode doc paths: %w", err)
	}
	if err := json.Unmarshal([]byte(topicsJSON), &repo.Topics); err != nil {
		return nil, fmt.Errorf("decode topics: %w", err)
	}
	return &repo, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
