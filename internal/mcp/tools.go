package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/unifieddocs/docshub/internal/bound"
	"github.com/unifieddocs/docshub/internal/errors"
	"github.com/unifieddocs/docshub/internal/index"
	"github.com/unifieddocs/docshub/internal/store"
)

// SearchInput is the unified_search input schema.
type SearchInput struct {
	Query    string `json:"query" jsonschema:"the search query"`
	Category string `json:"category,omitempty" jsonschema:"restrict to one documentation category"`
	MinStars int    `json:"min_stars,omitempty" jsonschema:"minimum repository star count"`
	Source   string `json:"source,omitempty" jsonschema:"repository provenance: curated or discovered"`
}

// SearchOutput is the unified_search output schema.
type SearchOutput struct {
	Text        string `json:"text" jsonschema:"formatted search results"`
	ResultCount int    `json:"result_count" jsonschema:"number of matching documents before formatting limits"`
}

func (s *Server) handleUnifiedSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	filters := &store.SearchFilters{
		MinStars: input.MinStars,
		Category: input.Category,
		Source:   store.Source(input.Source),
	}

	start := time.Now()
	results, err := s.store.SearchDocuments(ctx, input.Query, filters)
	latency := time.Since(start)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	if logErr := s.analytics.LogSearch(ctx, input.Query, len(results), latency, nil); logErr != nil {
		s.logger.Warn("analytics_log_failed", slog.String("error", logErr.Error()))
	}

	return nil, SearchOutput{
		Text:        s.limits.FormatSearchResponse(results, input.Query),
		ResultCount: len(results),
	}, nil
}

// ListInput is the list_repositories input schema.
type ListInput struct {
	Category string `json:"category,omitempty" jsonschema:"restrict to one documentation category"`
	MinStars int    `json:"min_stars,omitempty" jsonschema:"minimum repository star count"`
	Source   string `json:"source,omitempty" jsonschema:"repository provenance: curated or discovered"`
}

// TextOutput is the shared single-text output schema.
type TextOutput struct {
	Text string `json:"text" jsonschema:"formatted report"`
}

func (s *Server) handleListRepositories(ctx context.Context, _ *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, TextOutput, error) {
	repos, err := s.store.ListRepositories(ctx, &store.SearchFilters{
		MinStars: input.MinStars,
		Category: input.Category,
		Source:   store.Source(input.Source),
	})
	if err != nil {
		return nil, TextOutput{}, err
	}

	items := make([]bound.ListItem, 0, len(repos))
	for _, r := range repos {
		items = append(items, bound.ListItem{
			Name:        fmt.Sprintf("%s (%s, %.2f)", r.FullName, r.QualityGrade, r.QualityScore),
			Stars:       r.Stars,
			Category:    r.Category,
			Description: r.Description,
		})
	}
	title := fmt.Sprintf("Indexed repositories (%d)", len(repos))
	return nil, TextOutput{Text: s.limits.FormatListResponse(items, title)}, nil
}

// DocsInput is the get_repository_docs input schema.
type DocsInput struct {
	Repository string `json:"repository" jsonschema:"repository identity as owner/name"`
}

func (s *Server) handleGetRepositoryDocs(ctx context.Context, _ *mcp.CallToolRequest, input DocsInput) (*mcp.CallToolResult, TextOutput, error) {
	if input.Repository == "" {
		return nil, TextOutput{}, errors.ValidationError("repository is required", nil)
	}
	// Surface a not-found instead of an empty docs list.
	if _, err := s.store.GetRepository(ctx, input.Repository); err != nil {
		return nil, TextOutput{}, err
	}
	docs, err := s.store.GetRepositoryDocuments(ctx, input.Repository)
	if err != nil {
		return nil, TextOutput{}, err
	}
	return nil, TextOutput{Text: s.limits.FormatDocsResponse(docs, input.Repository)}, nil
}

// EmptyInput is the schema for tools without parameters.
type EmptyInput struct{}

func (s *Server) handleGetStatistics(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, TextOutput, error) {
	stats, err := s.store.GetStatistics(ctx)
	if err != nil {
		return nil, TextOutput{}, err
	}

	var sb strings.Builder
	sb.WriteString("Index statistics\n\n")
	fmt.Fprintf(&sb, "Repositories: %d (%d curated, %d discovered)\n",
		stats.TotalRepositories, stats.BySource[store.SourceCurated], stats.BySource[store.SourceDiscovered])
	fmt.Fprintf(&sb, "Documents: %d\n", stats.TotalDocuments)
	fmt.Fprintf(&sb, "Database size: %.1f MB\n", stats.DatabaseSizeMB)

	if len(stats.ByCategory) > 0 {
		sb.WriteString("\nBy category:\n")
		for category, count := range stats.ByCategory {
			fmt.Fprintf(&sb, "  %s: %d\n", category, count)
		}
	}
	if len(stats.ByLanguage) > 0 {
		sb.WriteString("\nTop languages:\n")
		for _, lc := range stats.ByLanguage {
			fmt.Fprintf(&sb, "  %s: %d\n", lc.Language, lc.Count)
		}
	}
	return nil, TextOutput{Text: s.limits.FormatText(sb.String())}, nil
}

func (s *Server) handleListCategories(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, TextOutput, error) {
	cats, err := s.store.GetCategories(ctx)
	if err != nil {
		return nil, TextOutput{}, err
	}

	items := make([]bound.ListItem, 0, len(cats))
	for _, c := range cats {
		items = append(items, bound.ListItem{
			Name:        fmt.Sprintf("%s (%d repositories)", c.Category, c.Count),
			Description: strings.Join(c.ExampleRepos, ", "),
		})
	}
	return nil, TextOutput{Text: s.limits.FormatListResponse(items, "Documentation categories")}, nil
}

// AnalyticsInput is the search_analytics input schema.
type AnalyticsInput struct {
	Limit      int `json:"limit,omitempty" jsonschema:"maximum entries per section, default 10"`
	WindowDays int `json:"window_days,omitempty" jsonschema:"popularity window in days, default 30"`
}

func (s *Server) handleSearchAnalytics(ctx context.Context, _ *mcp.CallToolRequest, input AnalyticsInput) (*mcp.CallToolResult, TextOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	perf, err := s.analytics.GetPerformanceStats(ctx)
	if err != nil {
		return nil, TextOutput{}, err
	}
	popular, err := s.analytics.PopularSearches(ctx, limit, input.WindowDays)
	if err != nil {
		return nil, TextOutput{}, err
	}
	trending, err := s.analytics.TrendingCategories(ctx, limit)
	if err != nil {
		return nil, TextOutput{}, err
	}
	missing, err := s.analytics.MissingDocsReport(ctx, 3)
	if err != nil {
		return nil, TextOutput{}, err
	}
	recs, err := s.analytics.ExpansionRecommendations(ctx)
	if err != nil {
		return nil, TextOutput{}, err
	}

	var sb strings.Builder
	sb.WriteString("Search analytics\n\n")
	fmt.Fprintf(&sb, "Total searches: %d\n", perf.TotalSearches)
	fmt.Fprintf(&sb, "Success rate: %.1f%%\n", perf.SuccessRate)
	fmt.Fprintf(&sb, "Avg search time: %.3fs\n", perf.AvgSearchTime)
	fmt.Fprintf(&sb, "Avg results: %.1f\n", perf.AvgResultsPerSearch)

	if len(popular) > 0 {
		sb.WriteString("\nPopular searches:\n")
		for _, p := range popular {
			fmt.Fprintf(&sb, "  %q: %d searches, avg %.1f results\n", p.Query, p.Count, p.AvgResults)
		}
	}
	if len(trending) > 0 {
		sb.WriteString("\nTrending categories:\n")
		for _, t := range trending {
			fmt.Fprintf(&sb, "  %s: %d\n", t.Category, t.Count)
		}
	}
	if len(missing) > 0 {
		sb.WriteString("\nMissing documentation:\n")
		for _, m := range missing {
			fmt.Fprintf(&sb, "  %s (%d requests, e.g. %q)\n", m.Topic, m.Requests, m.Query)
		}
	}
	if len(recs) > 0 {
		sb.WriteString("\nRecommendations:\n")
		for _, r := range recs {
			fmt.Fprintf(&sb, "  [%s] %s\n", r.Priority, r.Description)
			for _, item := range r.Items {
				fmt.Fprintf(&sb, "    - %s\n", item)
			}
		}
	}
	return nil, TextOutput{Text: s.limits.FormatText(sb.String())}, nil
}

// RebuildOutput is the rebuild_search_index output schema.
type RebuildOutput struct {
	DocumentsIndexed int    `json:"documents_indexed" jsonschema:"number of documents in the rebuilt index"`
	Text             string `json:"text" jsonschema:"human-readable confirmation"`
}

func (s *Server) handleRebuildIndex(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, RebuildOutput, error) {
	count, err := s.store.RebuildIndex(ctx)
	if err != nil {
		return nil, RebuildOutput{}, err
	}
	return nil, RebuildOutput{
		DocumentsIndexed: count,
		Text:             fmt.Sprintf("Search index rebuilt: %d documents", count),
	}, nil
}

// IndexInput is the index_repositories input schema.
type IndexInput struct {
	Repositories []string `json:"repositories,omitempty" jsonschema:"owner/name identities to index; all known repositories when empty"`
	Concurrency  int      `json:"concurrency,omitempty" jsonschema:"parallel repository limit"`
}

// IndexOutput is the index_repositories output schema.
type IndexOutput struct {
	Succeeded   int    `json:"succeeded" jsonschema:"repositories fully indexed"`
	Partial     int    `json:"partial" jsonschema:"repositories indexed with some document failures"`
	Failed      int    `json:"failed" jsonschema:"repositories that could not be indexed"`
	DocsIndexed int    `json:"docs_indexed" jsonschema:"total documents written"`
	Text        string `json:"text" jsonschema:"per-repository report"`
}

func (s *Server) handleIndexRepositories(ctx context.Context, _ *mcp.CallToolRequest, input IndexInput) (*mcp.CallToolResult, IndexOutput, error) {
	if s.source == nil {
		return nil, IndexOutput{}, errors.New(errors.ErrCodeInvalidInput,
			"no documentation source configured; set indexing.source_dir", nil)
	}

	var repos []*store.Repository
	if len(input.Repositories) == 0 {
		all, err := s.store.ListRepositories(ctx, nil)
		if err != nil {
			return nil, IndexOutput{}, err
		}
		repos = all
	} else {
		for _, fullName := range input.Repositories {
			repo, err := s.store.GetRepository(ctx, fullName)
			if err != nil {
				return nil, IndexOutput{}, err
			}
			repos = append(repos, repo)
		}
	}

	concurrency := input.Concurrency
	if concurrency <= 0 {
		concurrency = s.config.Indexing.Concurrency
	}
	runner := index.NewRunner(s.store, s.source, s.logger, index.WithConcurrency(concurrency))
	summary, err := runner.Run(ctx, repos)
	if err != nil {
		return nil, IndexOutput{}, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Indexed %d repositories: %d ok, %d partial, %d failed, %d documents\n\n",
		len(summary.Reports), summary.Succeeded, summary.Partial, summary.Failed, summary.DocsIndexed)
	for _, r := range summary.Reports {
		fmt.Fprintf(&sb, "  %s: %s (%d indexed, %d failed)\n",
			r.FullName, r.Status, r.DocsIndexed, r.DocsFailed)
	}

	return nil, IndexOutput{
		Succeeded:   summary.Succeeded,
		Partial:     summary.Partial,
		Failed:      summary.Failed,
		DocsIndexed: summary.DocsIndexed,
		Text:        s.limits.FormatText(sb.String()),
	}, nil
}
