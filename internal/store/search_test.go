package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unifieddocs/docshub/internal/errors"
)

func TestSearchDocuments_EmptyQueryRejected(t *testing.T) {
	s := newTestStore(t)

	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := s.SearchDocuments(context.Background(), q, nil)
		assert.Equal(t, errors.ErrCodeQueryEmpty, errors.GetCode(err), "query %q", q)
	}
}

func TestSearchDocuments_MatchAndSnippet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.UpsertRepository(ctx, testRepo("facebook", "react"))
	require.NoError(t, err)
	require.NoError(t, s.AddDocument(ctx, id, "docs/hooks.md",
		"Hooks let you use state and other React features without writing a class.", "h"))

	results, err := s.SearchDocuments(ctx, "hooks", nil)
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, "facebook/react", res.FullName)
	assert.Equal(t, "docs/hooks.md", res.Path)
	assert.Contains(t, res.Snippet, "<b>Hooks</b>")

	none, err := s.SearchDocuments(ctx, "kubernetes", nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearchDocuments_TieBreaksOnQualityThenStars(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Identical content gives identical FTS rank, so ordering falls
	// through to quality score and then stars.
	add := func(owner string, quality float64, stars int) {
		r := testRepo(owner, "docs")
		r.Stars = stars
		r.QualityScore = quality
		id, err := s.UpsertRepository(ctx, r)
		require.NoError(t, err)
		require.NoError(t, s.AddDocument(ctx, id, "guide.md", "tiebreak corpus text", "h"))
	}

	add("low", 0.40, 9000)
	add("high", 0.90, 10)
	add("mid-poor", 0.70, 100)
	add("mid-rich", 0.70, 5000)

	results, err := s.SearchDocuments(ctx, "tiebreak", nil)
	require.NoError(t, err)
	require.Len(t, results, 4)

	order := make([]string, len(results))
	for i, r := range results {
		order[i] = r.FullName
	}
	assert.Equal(t, []string{"high/docs", "mid-rich/docs", "mid-poor/docs", "low/docs"}, order)
}

func TestSearchDocuments_CapsAtFifty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.UpsertRepository(ctx, testRepo("golang", "go"))
	require.NoError(t, err)
	for i := 0; i < 60; i++ {
		require.NoError(t, s.AddDocument(ctx, id,
			fmt.Sprintf("docs/page%02d.md", i), "goroutine scheduling details", "h"))
	}

	results, err := s.SearchDocuments(ctx, "goroutine", nil)
	require.NoError(t, err)
	assert.Len(t, results, maxSearchRows)
}

func TestSearchDocuments_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	popular := testRepo("facebook", "react")
	popular.Stars = 200000
	popular.Category = "Web Development"
	popularID, err := s.UpsertRepository(ctx, popular)
	require.NoError(t, err)
	require.NoError(t, s.AddDocument(ctx, popularID, "intro.md", "component rendering", "h"))

	niche := testRepo("someone", "tinyweb")
	niche.Stars = 12
	niche.Category = "Web Development"
	niche.Source = SourceDiscovered
	nicheID, err := s.UpsertRepository(ctx, niche)
	require.NoError(t, err)
	require.NoError(t, s.AddDocument(ctx, nicheID, "intro.md", "component rendering", "h"))

	db := testRepo("postgres", "postgres")
	db.Category = "Databases"
	dbID, err := s.UpsertRepository(ctx, db)
	require.NoError(t, err)
	require.NoError(t, s.AddDocument(ctx, dbID, "intro.md", "component rendering", "h"))

	results, err := s.SearchDocuments(ctx, "component", &SearchFilters{MinStars: 1000})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "facebook/react", results[0].FullName)

	results, err = s.SearchDocuments(ctx, "component", &SearchFilters{Category: "Web Development"})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = s.SearchDocuments(ctx, "component", &SearchFilters{Source: SourceDiscovered})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "someone/tinyweb", results[0].FullName)
}

func TestSearchDocuments_MalformedQuery(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.UpsertRepository(ctx, testRepo("golang", "go"))
	require.NoError(t, err)
	require.NoError(t, s.AddDocument(ctx, id, "a.md", "text", "h"))

	_, err = s.SearchDocuments(ctx, `"unterminated`, nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}
