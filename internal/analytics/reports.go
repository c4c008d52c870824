package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/unifieddocs/docshub/internal/errors"
)

// PopularSearch is one row of the popularity report.
type PopularSearch struct {
	Query      string
	Count      int
	AvgResults float64
	AvgTime    float64
}

// CategoryCount is one row of the trending-categories report.
type CategoryCount struct {
	Category string
	Count    int
}

// MissingDoc is a repeatedly searched topic with no results.
type MissingDoc struct {
	Topic          string
	Query          string
	Requests       int
	FirstRequested time.Time
	LastRequested  time.Time
}

// PerformanceStats aggregates the whole query log.
type PerformanceStats struct {
	TotalSearches       int
	AvgSearchTime       float64 // seconds
	SuccessRate         float64 // percent of searches with at least one result
	AvgResultsPerSearch float64
}

// Recommendation is one documentation-expansion suggestion.
type Recommendation struct {
	Type        string
	Priority    string
	Description string
	Items       []string
}

// PopularSearches returns the most-searched queries whose last search
// falls within the window, ordered by count descending.
func (a *Analytics) PopularSearches(ctx context.Context, limit, windowDays int) ([]PopularSearch, error) {
	if limit <= 0 {
		limit = 20
	}
	if windowDays <= 0 {
		windowDays = 30
	}
	// last_searched is stored as SQLite's CURRENT_TIMESTAMP text, so
	// the cutoff must be formatted the same way to compare correctly.
	since := time.Now().UTC().AddDate(0, 0, -windowDays).Format("2006-01-02 15:04:05")

	rows, err := a.db.QueryContext(ctx, `
		SELECT query, search_count, avg_results_count, avg_search_time
		FROM popular_searches
		WHERE last_searched >= ?
		ORDER BY search_count DESC
		LIMIT ?
	`, since, limit)
	if err != nil {
		return nil, errors.StoreError(fmt.Sprintf("popular searches: %v", err), err)
	}
	defer rows.Close()

	var out []PopularSearch
	for rows.Next() {
		var p PopularSearch
		if err := rows.Scan(&p.Query, &p.Count, &p.AvgResults, &p.AvgTime); err != nil {
			return nil, errors.StoreError(fmt.Sprintf("scan popular search: %v", err), err)
		}
		p.AvgResults = round(p.AvgResults, 1)
		p.AvgTime = round(p.AvgTime, 3)
		out = append(out, p)
	}
	return out, rows.Err()
}

// TrendingCategories returns categories by search count descending.
func (a *Analytics) TrendingCategories(ctx context.Context, limit int) ([]CategoryCount, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := a.db.QueryContext(ctx, `
		SELECT category, search_count
		FROM search_categories
		ORDER BY search_count DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.StoreError(fmt.Sprintf("trending categories: %v", err), err)
	}
	defer rows.Close()

	var out []CategoryCount
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, errors.StoreError(fmt.Sprintf("scan category: %v", err), err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// MissingDocsReport returns zero-result topics requested at least
// minRequests times, most requested first.
func (a *Analytics) MissingDocsReport(ctx context.Context, minRequests int) ([]MissingDoc, error) {
	if minRequests <= 0 {
		minRequests = 3
	}
	rows, err := a.db.QueryContext(ctx, `
		SELECT topic, query, request_count, first_requested, last_requested
		FROM missing_docs
		WHERE request_count >= ?
		ORDER BY request_count DESC
	`, minRequests)
	if err != nil {
		return nil, errors.StoreError(fmt.Sprintf("missing docs report: %v", err), err)
	}
	defer rows.Close()

	var out []MissingDoc
	for rows.Next() {
		var m MissingDoc
		var first, last sql.NullTime
		if err := rows.Scan(&m.Topic, &m.Query, &m.Requests, &first, &last); err != nil {
			return nil, errors.StoreError(fmt.Sprintf("scan missing doc: %v", err), err)
		}
		if first.Valid {
			m.FirstRequested = first.Time
		}
		if last.Valid {
			m.LastRequested = last.Time
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetPerformanceStats aggregates latency and hit-rate over the full
// query log.
func (a *Analytics) GetPerformanceStats(ctx context.Context) (*PerformanceStats, error) {
	stats := &PerformanceStats{}

	var avgTime, avgResults sql.NullFloat64
	var withResults int
	err := a.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			AVG(search_time),
			AVG(results_count),
			COUNT(CASE WHEN results_count > 0 THEN 1 END)
		FROM search_queries
	`).Scan(&stats.TotalSearches, &avgTime, &avgResults, &withResults)
	if err != nil {
		return nil, errors.StoreError(fmt.Sprintf("performance stats: %v", err), err)
	}

	stats.AvgSearchTime = round(avgTime.Float64, 3)
	stats.AvgResultsPerSearch = round(avgResults.Float64, 1)
	if stats.TotalSearches > 0 {
		stats.SuccessRate = round(float64(withResults)/float64(stats.TotalSearches)*100, 1)
	}
	return stats, nil
}

// ExpansionRecommendations synthesizes the missing-docs, trending, and
// low-result views into a prioritized list. Missing documentation is
// high priority; the other two are medium.
func (a *Analytics) ExpansionRecommendations(ctx context.Context) ([]Recommendation, error) {
	var recs []Recommendation

	missing, err := a.MissingDocsReport(ctx, 5)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		items := make([]string, 0, 5)
		for _, m := range missing {
			items = append(items, m.Topic)
			if len(items) == 5 {
				break
			}
		}
		recs = append(recs, Recommendation{
			Type:        "missing_documentation",
			Priority:    "high",
			Description: "Frequently searched topics with no results",
			Items:       items,
		})
	}

	trending, err := a.TrendingCategories(ctx, 5)
	if err != nil {
		return nil, err
	}
	trendItems := make([]string, 0, len(trending))
	for _, t := range trending {
		trendItems = append(trendItems, fmt.Sprintf("%s (%d searches)", t.Category, t.Count))
	}
	recs = append(recs, Recommendation{
		Type:        "trending_categories",
		Priority:    "medium",
		Description: "Most searched categories, consider expanding coverage",
		Items:       trendItems,
	})

	lowResults, err := a.lowResultQueries(ctx)
	if err != nil {
		return nil, err
	}
	if len(lowResults) > 0 {
		recs = append(recs, Recommendation{
			Type:        "low_result_queries",
			Priority:    "medium",
			Description: "Popular searches with few results",
			Items:       lowResults,
		})
	}
	return recs, nil
}

// lowResultQueries finds queries searched more than five times that
// average under five results.
func (a *Analytics) lowResultQueries(ctx context.Context) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT query, avg_results_count
		FROM popular_searches
		WHERE avg_results_count < 5 AND search_count > 5
		ORDER BY search_count DESC
		LIMIT 10
	`)
	if err != nil {
		return nil, errors.StoreError(fmt.Sprintf("low result queries: %v", err), err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var query string
		var avg float64
		if err := rows.Scan(&query, &avg); err != nil {
			return nil, errors.StoreError(fmt.Sprintf("scan low result query: %v", err), err)
		}
		out = append(out, fmt.Sprintf("%s (avg %.1f results)", query, avg))
	}
	return out, rows.Err()
}
