package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unifieddocs/docshub/internal/config"
	"github.com/unifieddocs/docshub/internal/store"
)

// fakeSource serves canned documents and can fail specific paths.
type fakeSource struct {
	docs     map[string]map[string]string // fullName -> path -> content
	failDocs map[string]bool              // paths that error on fetch
	listErr  error
}

func (f *fakeSource) ListDocPaths(_ context.Context, repo *store.Repository) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var paths []string
	for path := range f.docs[repo.FullName] {
		paths = append(paths, path)
	}
	return paths, nil
}

func (f *fakeSource) FetchDocument(_ context.Context, repo *store.Repository, path string) (string, error) {
	if f.failDocs[path] {
		return "", fmt.Errorf("fetch %s: boom", path)
	}
	return f.docs[repo.FullName][path], nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedRepo(t *testing.T, s *store.Store, owner, name string) *store.Repository {
	t.Helper()
	repo := &store.Repository{
		Owner:  owner,
		Name:   name,
		Stars:  500,
		Source: store.SourceCurated,
	}
	id, err := s.UpsertRepository(context.Background(), repo)
	require.NoError(t, err)
	repo.ID = id
	repo.FullName = owner + "/" + name
	return repo
}

func TestRunner_IndexesAndRescores(t *testing.T) {
	s := newTestStore(t)
	repo := seedRepo(t, s, "golang", "go")

	source := &fakeSource{docs: map[string]map[string]string{
		"golang/go": {
			"README.md":   "# Go\n\n## Contents\n\n```go\npackage main\n```",
			"docs/faq.md": "# FAQ\n\nanswers",
			"logo.png":    "binary",
		},
	}}

	runner := NewRunner(s, source, nil, WithClock(func() time.Time {
		return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	}))
	summary, err := runner.Run(context.Background(), []*store.Repository{repo})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	// The png has no handler and is skipped, not failed.
	assert.Equal(t, 2, summary.DocsIndexed)

	docs, err := s.GetRepositoryDocuments(context.Background(), "golang/go")
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	// Rescoring replaced the defaults.
	updated, err := s.GetRepository(context.Background(), "golang/go")
	require.NoError(t, err)
	assert.NotEmpty(t, updated.QualityMetrics)
	assert.False(t, updated.LastIndexed.IsZero())
}

func TestRunner_PartialSuccessOnDocFailure(t *testing.T) {
	s := newTestStore(t)
	repo := seedRepo(t, s, "golang", "go")

	source := &fakeSource{
		docs: map[string]map[string]string{
			"golang/go": {
				"README.md":    "# Go docs",
				"docs/bad.md":  "",
				"docs/good.md": "# Good",
			},
		},
		failDocs: map[string]bool{"docs/bad.md": true},
	}

	runner := NewRunner(s, source, nil)
	summary, err := runner.Run(context.Background(), []*store.Repository{repo})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Partial)
	require.Len(t, summary.Reports, 1)
	assert.Equal(t, store.IndexingStatusPartial, summary.Reports[0].Status)
	assert.Equal(t, 2, summary.Reports[0].DocsIndexed)
	assert.Equal(t, 1, summary.Reports[0].DocsFailed)
}

func TestRunner_ListFailureFailsOnlyThatRepo(t *testing.T) {
	s := newTestStore(t)
	good := seedRepo(t, s, "golang", "go")
	bad := seedRepo(t, s, "broken", "repo")

	source := &fakeSource{docs: map[string]map[string]string{
		"golang/go": {"README.md": "# Go"},
	}}

	// First index the healthy repo, then run a broken source against
	// the other to confirm isolation.
	runner := NewRunner(s, source, nil)
	summary, err := runner.Run(context.Background(), []*store.Repository{good})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)

	failing := NewRunner(s, &fakeSource{listErr: fmt.Errorf("no such tree")}, nil)
	summary, err = failing.Run(context.Background(), []*store.Repository{bad})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Reports, 1)
	assert.Error(t, summary.Reports[0].Err)
}

func TestRunner_ConcurrentBatch(t *testing.T) {
	s := newTestStore(t)

	docs := map[string]map[string]string{}
	var repos []*store.Repository
	for i := 0; i < 8; i++ {
		repo := seedRepo(t, s, "owner", fmt.Sprintf("repo%d", i))
		repos = append(repos, repo)
		docs[repo.FullName] = map[string]string{"README.md": fmt.Sprintf("# Repo %d", i)}
	}

	runner := NewRunner(s, &fakeSource{docs: docs}, nil, WithConcurrency(4))
	summary, err := runner.Run(context.Background(), repos)
	require.NoError(t, err)

	assert.Equal(t, 8, summary.Succeeded)
	assert.Equal(t, 8, summary.DocsIndexed)

	n, err := s.DocumentCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, n)
}

func TestFSSource(t *testing.T) {
	root := t.TempDir()
	repoDir := filepath.Join(root, "golang", "go")
	require.NoError(t, os.MkdirAll(filepath.Join(repoDir, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, "README.md"), []byte("# Go"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, "docs", "spec.md"), []byte("# Spec"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, "main.go"), []byte("package main"), 0o644))

	repo := &store.Repository{Owner: "golang", Name: "go", FullName: "golang/go"}
	source := NewFSSource(root)

	paths, err := source.ListDocPaths(context.Background(), repo)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"README.md", "docs/spec.md"}, paths)

	content, err := source.FetchDocument(context.Background(), repo, "docs/spec.md")
	require.NoError(t, err)
	assert.Equal(t, "# Spec", content)

	// Doc path restriction narrows the walk.
	repo.DocPaths = []string{"docs"}
	paths, err = source.ListDocPaths(context.Background(), repo)
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/spec.md"}, paths)

	// Unknown repository directory.
	_, err = source.ListDocPaths(context.Background(), &store.Repository{Owner: "no", Name: "repo"})
	assert.Error(t, err)
}

func TestImportManifest(t *testing.T) {
	s := newTestStore(t)

	m := &config.Manifest{CuratedRepositories: []config.CuratedRepo{
		{Repo: "facebook/react", Category: "Web Development", Priority: "high", DocPaths: []string{"docs"}},
		{Repo: "golang/go", Category: "API Development"},
		{Repo: "malformed"},
	}}

	imported, err := ImportManifest(context.Background(), s, m, nil)
	require.NoError(t, err)
	require.Len(t, imported, 2)

	repo, err := s.GetRepository(context.Background(), "facebook/react")
	require.NoError(t, err)
	assert.Equal(t, store.SourceCurated, repo.Source)
	assert.Equal(t, "high", repo.Priority)
	assert.Equal(t, []string{"docs"}, repo.DocPaths)
}
