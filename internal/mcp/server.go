// Package mcp exposes the documentation index over the Model Context
// Protocol. Every textual response passes through the response bounder
// before leaving the server.
package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/unifieddocs/docshub/internal/analytics"
	"github.com/unifieddocs/docshub/internal/bound"
	"github.com/unifieddocs/docshub/internal/config"
	"github.com/unifieddocs/docshub/internal/index"
	"github.com/unifieddocs/docshub/internal/store"
	"github.com/unifieddocs/docshub/pkg/version"
)

// Server bridges MCP clients with the document store, analytics, and
// indexing runner.
type Server struct {
	mcp       *mcp.Server
	store     *store.Store
	analytics *analytics.Analytics
	source    index.Source // nil when no local corpus is configured
	limits    bound.Limits
	config    *config.Config
	logger    *slog.Logger
}

// NewServer wires a server over the given handles. The analytics
// handle is required; pass a source to enable index_repositories.
func NewServer(s *store.Store, a *analytics.Analytics, source index.Source, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if s == nil {
		return nil, fmt.Errorf("document store is required")
	}
	if a == nil {
		return nil, fmt.Errorf("analytics is required")
	}
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	srv := &Server{
		store:     s,
		analytics: a,
		source:    source,
		config:    cfg,
		logger:    logger,
		limits: bound.Limits{
			MaxBytes:            cfg.Response.MaxBytes,
			MaxSearchResults:    cfg.Response.MaxSearchResults,
			MaxListItems:        cfg.Response.MaxListItems,
			ContentPreviewChars: cfg.Response.ContentPreviewChars,
		},
	}

	srv.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "docshub",
			Version: version.Version,
		},
		nil,
	)
	srv.registerTools()
	return srv, nil
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "unified_search",
		Description: "Search indexed documentation across all repositories. Results are ranked by relevance, then repository quality, then stars. Supports category, star and provenance filters.",
	}, s.handleUnifiedSearch)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_repositories",
		Description: "List indexed repositories ordered by quality score and stars, with optional category, star and provenance filters.",
	}, s.handleListRepositories)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_repository_docs",
		Description: "Fetch the indexed documentation for one repository, with per-document previews.",
	}, s.handleGetRepositoryDocs)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_statistics",
		Description: "Aggregate index statistics: repositories by provenance and category, document count, top languages, and database size.",
	}, s.handleGetStatistics)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_categories",
		Description: "List documentation categories with repository counts and example repositories.",
	}, s.handleListCategories)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_analytics",
		Description: "Search analytics report: popular queries, trending categories, missing-documentation topics, performance stats, and expansion recommendations.",
	}, s.handleSearchAnalytics)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "rebuild_search_index",
		Description: "Rebuild the full-text index from stored documents. Use when the index may have diverged, for example after an external bulk load.",
	}, s.handleRebuildIndex)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "index_repositories",
		Description: "Index documentation for repositories from the configured source. With no arguments, indexes every known repository.",
	}, s.handleIndexRepositories)

	s.logger.Info("mcp_tools_registered", slog.Int("count", 8))
}

// Serve runs the server over stdio until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("mcp_server_starting", slog.String("transport", "stdio"))
	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && err != context.Canceled {
		s.logger.Error("mcp_server_stopped", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("mcp_server_stopped")
	return nil
}
