package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/unifieddocs/docshub/internal/errors"
)

// maxSearchRows is the hard cap on search results, enforced here
// rather than by callers.
const maxSearchRows = 50

// SearchDocuments runs a relevance query against the full-text index.
// Results are ordered by FTS rank, then quality score descending, then
// star count descending, and capped at 50 rows.
func (s *Store) SearchDocuments(ctx context.Context, query string, filters *SearchFilters) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New(errors.ErrCodeQueryEmpty, "search query is empty", nil)
	}

	sqlStr := `
		SELECT
			r.full_name,
			r.stars,
			COALESCE(r.category, ''),
			COALESCE(r.description, ''),
			r.source,
			r.quality_score,
			f.path,
			snippet(documents_fts, 2, '<b>', '</b>', '...', 64),
			f.rank
		FROM documents_fts f
		JOIN documents d ON d.id = f.rowid
		JOIN repositories r ON r.id = d.repo_id
		WHERE documents_fts MATCH ?
	`
	params := []any{query}

	if filters != nil {
		if filters.MinStars > 0 {
			sqlStr += " AND r.stars >= ?"
			params = append(params, filters.MinStars)
		}
		if filters.Category != "" {
			sqlStr += " AND r.category = ?"
			params = append(params, filters.Category)
		}
		if filters.Source != "" {
			sqlStr += " AND r.source = ?"
			params = append(params, string(filters.Source))
		}
	}

	sqlStr += " ORDER BY f.rank, r.quality_score DESC, r.stars DESC LIMIT ?"
	params = append(params, maxSearchRows)

	rows, err := s.db.QueryContext(ctx, sqlStr, params...)
	if err != nil {
		return nil, classifySearchErr(query, err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var res SearchResult
		var source string
		if err := rows.Scan(&res.FullName, &res.Stars, &res.Category, &res.Description,
			&source, &res.QualityScore, &res.Path, &res.Snippet, &res.Rank); err != nil {
			return nil, errors.StoreError(fmt.Sprintf("scan search result: %v", err), err)
		}
		res.Source = Source(source)
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, classifySearchErr(query, err)
	}
	return results, nil
}

// classifySearchErr maps FTS5 match-expression errors, which can
// surface either at query time or on the first row step, to invalid
// input rather than a store failure.
func classifySearchErr(query string, err error) error {
	msg := err.Error()
	if strings.Contains(msg, "fts5") || strings.Contains(msg, "syntax error") ||
		strings.Contains(msg, "unterminated string") {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("invalid search query %q: %v", query, err), err)
	}
	return errors.StoreError(fmt.Sprintf("search: %v", err), err)
}
