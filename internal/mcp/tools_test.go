package mcp

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unifieddocs/docshub/internal/errors"
	"github.com/unifieddocs/docshub/internal/store"
)

// fakeSource serves documents from an in-memory map keyed by
// repository full name.
type fakeSource struct {
	docs map[string]map[string]string
}

func (f *fakeSource) ListDocPaths(_ context.Context, repo *store.Repository) ([]string, error) {
	repoDocs, ok := f.docs[repo.FullName]
	if !ok {
		return nil, errors.NotFoundError("repository " + repo.FullName + " not in source")
	}
	paths := make([]string, 0, len(repoDocs))
	for path := range repoDocs {
		paths = append(paths, path)
	}
	return paths, nil
}

func (f *fakeSource) FetchDocument(_ context.Context, repo *store.Repository, path string) (string, error) {
	content, ok := f.docs[repo.FullName][path]
	if !ok {
		return "", errors.NotFoundError("document " + path + " not in source")
	}
	return content, nil
}

func TestHandleUnifiedSearch_ReturnsMatchesAndLogsAnalytics(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	id := seedRepository(t, srv.store, "facebook", "react", 200000)
	require.NoError(t, srv.store.AddDocument(ctx, id, "docs/hooks.md",
		"# Hooks\n\nHooks let you use state in function components.", "h1"))

	_, out, err := srv.handleUnifiedSearch(ctx, nil, SearchInput{Query: "hooks"})
	require.NoError(t, err)
	assert.Equal(t, 1, out.ResultCount)
	assert.Contains(t, out.Text, "facebook/react")
	assert.Contains(t, out.Text, "Showing 1 of 1 results")

	stats, err := srv.analytics.GetPerformanceStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSearches)
}

func TestHandleUnifiedSearch_EmptyQueryRejected(t *testing.T) {
	srv := newTestServer(t)

	_, _, err := srv.handleUnifiedSearch(context.Background(), nil, SearchInput{Query: "   "})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeQueryEmpty, errors.GetCode(err))
}

func TestHandleUnifiedSearch_FiltersApplied(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	bigID := seedRepository(t, srv.store, "golang", "go", 120000)
	smallID := seedRepository(t, srv.store, "tiny", "lib", 3)
	require.NoError(t, srv.store.AddDocument(ctx, bigID, "doc.md", "goroutines and channels", "h1"))
	require.NoError(t, srv.store.AddDocument(ctx, smallID, "doc.md", "goroutines and channels", "h2"))

	_, out, err := srv.handleUnifiedSearch(ctx, nil, SearchInput{Query: "goroutines", MinStars: 100})
	require.NoError(t, err)
	assert.Equal(t, 1, out.ResultCount)
	assert.Contains(t, out.Text, "golang/go")
	assert.NotContains(t, out.Text, "tiny/lib")
}

func TestHandleListRepositories(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	seedRepository(t, srv.store, "golang", "go", 120000)
	seedRepository(t, srv.store, "facebook", "react", 200000)

	_, out, err := srv.handleListRepositories(ctx, nil, ListInput{})
	require.NoError(t, err)
	assert.Contains(t, out.Text, "Indexed repositories (2)")
	assert.Contains(t, out.Text, "facebook/react")
	assert.Contains(t, out.Text, "golang/go")
}

func TestHandleGetRepositoryDocs(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	id := seedRepository(t, srv.store, "golang", "go", 120000)
	require.NoError(t, srv.store.AddDocument(ctx, id, "doc/effective_go.md",
		"# Effective Go\n\nFormatting and idioms.", "h1"))

	_, out, err := srv.handleGetRepositoryDocs(ctx, nil, DocsInput{Repository: "golang/go"})
	require.NoError(t, err)
	assert.Contains(t, out.Text, "doc/effective_go.md")
	assert.Contains(t, out.Text, "Effective Go")
}

func TestHandleGetRepositoryDocs_Validation(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	_, _, err := srv.handleGetRepositoryDocs(ctx, nil, DocsInput{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))

	_, _, err = srv.handleGetRepositoryDocs(ctx, nil, DocsInput{Repository: "no/such"})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestHandleGetStatistics(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	id := seedRepository(t, srv.store, "golang", "go", 120000)
	require.NoError(t, srv.store.AddDocument(ctx, id, "doc.md", "content", "h1"))

	_, out, err := srv.handleGetStatistics(ctx, nil, EmptyInput{})
	require.NoError(t, err)
	assert.Contains(t, out.Text, "Repositories: 1 (1 curated, 0 discovered)")
	assert.Contains(t, out.Text, "Documents: 1")
	assert.Contains(t, out.Text, "Web Development: 1")
}

func TestHandleListCategories(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	seedRepository(t, srv.store, "golang", "go", 120000)

	_, out, err := srv.handleListCategories(ctx, nil, EmptyInput{})
	require.NoError(t, err)
	assert.Contains(t, out.Text, "Web Development (1 repositories)")
	assert.Contains(t, out.Text, "golang/go")
}

func TestHandleSearchAnalytics(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, srv.analytics.LogSearch(ctx, "react hooks", 12, 0, nil))
	require.NoError(t, srv.analytics.LogSearch(ctx, "react hooks", 8, 0, nil))
	require.NoError(t, srv.analytics.LogSearch(ctx, "htmx tutorial", 0, 0, nil))

	_, out, err := srv.handleSearchAnalytics(ctx, nil, AnalyticsInput{})
	require.NoError(t, err)
	assert.Contains(t, out.Text, "Total searches: 3")
	assert.Contains(t, out.Text, `"react hooks": 2 searches`)
	assert.Contains(t, out.Text, "Trending categories:")
	assert.Contains(t, out.Text, "Web Development")
}

func TestHandleRebuildIndex(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	id := seedRepository(t, srv.store, "golang", "go", 120000)
	for i := 0; i < 3; i++ {
		path := fmt.Sprintf("doc%d.md", i)
		require.NoError(t, srv.store.AddDocument(ctx, id, path, "content "+path, path))
	}

	_, out, err := srv.handleRebuildIndex(ctx, nil, EmptyInput{})
	require.NoError(t, err)
	assert.Equal(t, 3, out.DocumentsIndexed)
	assert.Contains(t, out.Text, "3 documents")
}

func TestHandleIndexRepositories_NoSourceConfigured(t *testing.T) {
	srv := newTestServer(t)

	_, _, err := srv.handleIndexRepositories(context.Background(), nil, IndexInput{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
	assert.Contains(t, err.Error(), "source_dir")
}

func TestHandleIndexRepositories(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	seedRepository(t, srv.store, "golang", "go", 120000)
	seedRepository(t, srv.store, "facebook", "react", 200000)
	srv.source = &fakeSource{docs: map[string]map[string]string{
		"golang/go": {
			"README.md":   "# Go\n\nThe Go programming language.",
			"doc/spec.md": "# Language\n\n```go\npackage main\n```",
		},
		"facebook/react": {
			"README.md": "# React\n\nA library for building user interfaces.",
		},
	}}

	_, out, err := srv.handleIndexRepositories(ctx, nil, IndexInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Succeeded)
	assert.Equal(t, 0, out.Failed)
	assert.Equal(t, 3, out.DocsIndexed)
	assert.Contains(t, out.Text, "golang/go: success (2 indexed, 0 failed)")

	// Indexing rescored the repository.
	repo, err := srv.store.GetRepository(ctx, "golang/go")
	require.NoError(t, err)
	assert.Greater(t, repo.QualityScore, 0.0)
	assert.NotEmpty(t, repo.QualityGrade)
	assert.False(t, repo.LastIndexed.IsZero())
}

func TestHandleIndexRepositories_NamedSubset(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	seedRepository(t, srv.store, "golang", "go", 120000)
	seedRepository(t, srv.store, "facebook", "react", 200000)
	srv.source = &fakeSource{docs: map[string]map[string]string{
		"golang/go": {"README.md": "# Go"},
	}}

	_, out, err := srv.handleIndexRepositories(ctx, nil, IndexInput{
		Repositories: []string{"golang/go"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Succeeded)
	assert.Equal(t, 1, out.DocsIndexed)

	_, _, err = srv.handleIndexRepositories(ctx, nil, IndexInput{
		Repositories: []string{"no/such"},
	})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}
