package cmd

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unifieddocs/docshub/internal/store"
	"github.com/unifieddocs/docshub/pkg/version"
)

func TestVersionCmd(t *testing.T) {
	setTestEnv(t)

	out, err := execRoot(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version.Version, strings.TrimSpace(out))

	out, err = execRoot(t, "version", "--json")
	require.NoError(t, err)
	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, version.Version, info["version"])

	out, err = execRoot(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "docshub")
}

func TestStatsCmd_EmptyIndex(t *testing.T) {
	setTestEnv(t)

	out, err := execRoot(t, "stats", "--json")
	require.NoError(t, err)

	var stats struct {
		TotalRepositories int `json:"total_repositories"`
		TotalDocuments    int `json:"total_documents"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Zero(t, stats.TotalRepositories)
	assert.Zero(t, stats.TotalDocuments)
}

func TestSearchCmd(t *testing.T) {
	dir := setTestEnv(t)
	seedStore(t, dir, func(s *store.Store) {
		ctx := context.Background()
		id, err := s.UpsertRepository(ctx, &store.Repository{
			Owner: "facebook", Name: "react", Stars: 200000,
			Category: "Web Development", Source: store.SourceCurated,
		})
		require.NoError(t, err)
		require.NoError(t, s.AddDocument(ctx, id, "docs/hooks.md",
			"# Hooks\n\nHooks let you use state in function components.", "h1"))
	})

	out, err := execRoot(t, "search", "hooks")
	require.NoError(t, err)
	assert.Contains(t, out, "facebook/react")
	assert.Contains(t, out, "Showing 1 of 1 results")

	out, err = execRoot(t, "search", "hooks", "--min-stars", "500000")
	require.NoError(t, err)
	assert.Contains(t, out, "No results found")
}

func TestListCmd(t *testing.T) {
	dir := setTestEnv(t)
	seedStore(t, dir, func(s *store.Store) {
		_, err := s.UpsertRepository(context.Background(), &store.Repository{
			Owner: "golang", Name: "go", Stars: 120000,
			Category: "API Development", Source: store.SourceCurated,
		})
		require.NoError(t, err)
	})

	out, err := execRoot(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed repositories (1)")
	assert.Contains(t, out, "golang/go")
	assert.Contains(t, out, "120000 stars")
}

func TestDocsCmd(t *testing.T) {
	dir := setTestEnv(t)
	seedStore(t, dir, func(s *store.Store) {
		ctx := context.Background()
		id, err := s.UpsertRepository(ctx, &store.Repository{
			Owner: "golang", Name: "go", Source: store.SourceCurated,
		})
		require.NoError(t, err)
		require.NoError(t, s.AddDocument(ctx, id, "doc/effective_go.md", "# Effective Go", "h1"))
	})

	out, err := execRoot(t, "docs", "golang/go")
	require.NoError(t, err)
	assert.Contains(t, out, "doc/effective_go.md")

	_, err = execRoot(t, "docs", "no/such")
	require.Error(t, err)
}

func TestRebuildCmd(t *testing.T) {
	dir := setTestEnv(t)
	seedStore(t, dir, func(s *store.Store) {
		ctx := context.Background()
		id, err := s.UpsertRepository(ctx, &store.Repository{
			Owner: "golang", Name: "go", Source: store.SourceCurated,
		})
		require.NoError(t, err)
		require.NoError(t, s.AddDocument(ctx, id, "a.md", "alpha", "h1"))
		require.NoError(t, s.AddDocument(ctx, id, "b.md", "beta", "h2"))
	})

	out, err := execRoot(t, "rebuild")
	require.NoError(t, err)
	assert.Contains(t, out, "search index rebuilt: 2 documents")
}

func TestIndexCmd_EndToEnd(t *testing.T) {
	dir := setTestEnv(t)

	manifest := filepath.Join(dir, "repositories.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte(`
curated_repositories:
  - repo: golang/go
    category: API Development
    description: The Go programming language
`), 0o644))

	docsDir := filepath.Join(dir, "corpus")
	repoDir := filepath.Join(docsDir, "golang", "go")
	require.NoError(t, os.MkdirAll(repoDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, "README.md"),
		[]byte("# Go\n\nThe Go programming language.\n\n```go\npackage main\n```"), 0o644))

	out, err := execRoot(t, "index", "--manifest", manifest, "--source", docsDir)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 curated repositories")
	assert.Contains(t, out, "golang/go: 1 documents")
	assert.Contains(t, out, "1 ok, 0 partial, 0 failed")

	out, err = execRoot(t, "search", "programming language")
	require.NoError(t, err)
	assert.Contains(t, out, "golang/go")
}

func TestIndexCmd_NoSource(t *testing.T) {
	dir := setTestEnv(t)
	seedStore(t, dir, func(s *store.Store) {
		_, err := s.UpsertRepository(context.Background(), &store.Repository{
			Owner: "golang", Name: "go", Source: store.SourceCurated,
		})
		require.NoError(t, err)
	})

	_, err := execRoot(t, "index", "--skip-import")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source")
}

func TestAnalyticsCmd_Empty(t *testing.T) {
	setTestEnv(t)

	out, err := execRoot(t, "analytics")
	require.NoError(t, err)
	assert.Contains(t, out, "Total searches")
	assert.Contains(t, out, "0")
}

func TestInitCmd(t *testing.T) {
	dir := setTestEnv(t)

	out, err := execRoot(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote config.yaml")
	assert.Contains(t, out, "wrote repositories.yaml")
	assert.FileExists(t, filepath.Join(dir, ".docshub", "config.yaml"))

	// Second run leaves existing files alone.
	out, err = execRoot(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")
}
