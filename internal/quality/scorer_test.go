package quality

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unifieddocs/docshub/internal/store"
)

var evalTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestWeightsSumToOne(t *testing.T) {
	sum := 0.0
	for _, w := range Weights() {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestScore_Deterministic(t *testing.T) {
	repo := &store.Repository{
		Stars:       5000,
		Description: "a web framework",
		Topics:      []string{"web"},
		License:     "MIT",
		PushedAt:    evalTime.AddDate(0, 0, -10),
	}
	docs := []store.RepoDocument{
		{Path: "README.md", Content: "# Intro\n\nSee the `install` guide.\n```sh\nmake\n```"},
		{Path: "docs/guide/setup.md", Content: "## Contents\n\nSetup steps."},
	}

	first := Score(repo, docs, evalTime)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Score(repo, docs, evalTime))
	}
}

func TestScoreFreshness_Bands(t *testing.T) {
	tests := []struct {
		daysAgo int
		want    float64
	}{
		{1, 1.0},
		{29, 1.0},
		{30, 0.8},
		{89, 0.8},
		{90, 0.6},
		{179, 0.6},
		{180, 0.4},
		{364, 0.4},
		{365, 0.2},
		{1000, 0.2},
	}
	for _, tt := range tests {
		pushed := evalTime.AddDate(0, 0, -tt.daysAgo)
		assert.Equal(t, tt.want, scoreFreshness(pushed, evalTime), "days ago %d", tt.daysAgo)
	}

	assert.Equal(t, 0.5, scoreFreshness(time.Time{}, evalTime))
}

func TestGradeBands_ContiguousAndExhaustive(t *testing.T) {
	// Every score in [0, 1] maps to exactly one grade, and grades only
	// change at band boundaries.
	prev := GradeFor(0)
	assert.Equal(t, "F", prev)
	changes := 0
	for s := 0.0; s <= 1.0001; s += 0.001 {
		g := GradeFor(math.Round(s*1000) / 1000)
		require.NotEmpty(t, g)
		if g != prev {
			changes++
			prev = g
		}
	}
	assert.Equal(t, len(gradeBands), changes)
	assert.Equal(t, "A+", GradeFor(1.0))
	assert.Equal(t, "A+", GradeFor(0.90))
	assert.Equal(t, "A", GradeFor(0.89))
	assert.Equal(t, "D", GradeFor(0.40))
	assert.Equal(t, "F", GradeFor(0.39))
}

func TestScoreCompleteness_ClampsAtOne(t *testing.T) {
	docs := []store.RepoDocument{
		{Path: "README.md"},
		{Path: "docs/api/reference.md"},
		{Path: "docs/guide/install.md"},
		{Path: "CONTRIBUTING.md"},
		{Path: "examples/tutorial.md"},
		{Path: "CHANGELOG.md"},
		{Path: "docs/getting-started.md"},
		{Path: "wiki/history.md"},
	}
	assert.Equal(t, 1.0, scoreCompleteness(docs))
}

func TestScoreCommunity_StarTiers(t *testing.T) {
	for _, tt := range []struct {
		stars int
		want  float64
	}{
		{0, 0.0},
		{11, 0.1},
		{101, 0.2},
		{1001, 0.3},
		{10001, 0.4},
	} {
		repo := &store.Repository{Stars: tt.stars}
		assert.Equal(t, tt.want, scoreCommunity(repo), "stars %d", tt.stars)
	}

	full := &store.Repository{
		Stars:       20000,
		Topics:      []string{"go"},
		Description: "desc",
		License:     "Apache-2.0",
	}
	assert.Equal(t, 1.0, scoreCommunity(full))
}

func TestScoreExamples_CreditClamps(t *testing.T) {
	// Enough code blocks and keywords to hit every sub-cap.
	content := ""
	for i := 0; i < 20; i++ {
		content += "```go\nfmt.Println(\"example\")\n```\nexample tutorial demo `code` "
	}
	docs := []store.RepoDocument{{Path: "README.md", Content: content}}
	score := scoreExamples(docs)
	assert.LessOrEqual(t, score, 1.0)
	assert.Greater(t, score, 0.5)
}

func TestScoreAccessibility(t *testing.T) {
	docs := []store.RepoDocument{
		{Path: "README.md"},
		{Path: "docs/install.md"},
		{Path: "docs/api.md"},
	}
	// 0.4 root readme + 0.2 clear names + 0.3 comfortable file count.
	assert.InDelta(t, 0.9, scoreAccessibility(docs), 1e-9)

	var many []store.RepoDocument
	for i := 0; i < 30; i++ {
		many = append(many, store.RepoDocument{Path: fmt.Sprintf("docs/page%d.md", i)})
	}
	// No root readme, no clear names, too many files.
	assert.InDelta(t, 0.1, scoreAccessibility(many), 1e-9)
}

func TestSuggestions_PerMetricThresholds(t *testing.T) {
	all := Suggestions(map[string]float64{})
	assert.Len(t, all, 6)

	none := Suggestions(map[string]float64{
		MetricCompleteness:  0.70,
		MetricFreshness:     0.50,
		MetricStructure:     0.60,
		MetricExamples:      0.50,
		MetricCommunity:     0.50,
		MetricAccessibility: 0.60,
	})
	assert.Empty(t, none)

	only := Suggestions(map[string]float64{
		MetricCompleteness:  0.69,
		MetricFreshness:     1.0,
		MetricStructure:     1.0,
		MetricExamples:      1.0,
		MetricCommunity:     1.0,
		MetricAccessibility: 1.0,
	})
	require.Len(t, only, 1)
	assert.Contains(t, only[0], "API references")
}

func TestScore_WellDocumentedRepoGetsDecentGrade(t *testing.T) {
	repo := &store.Repository{
		Stars:       15000,
		Description: "a popular library",
		Topics:      []string{"library", "tools"},
		License:     "MIT",
		PushedAt:    evalTime.AddDate(0, 0, -7),
	}
	docs := []store.RepoDocument{
		{Path: "README.md", Content: "# Project\n\n## Table of Contents\n\n- [Install](#install)\n\n" +
			"```go\npackage main\n```\n\nRun the `init` command first."},
		{Path: "docs/guide/install.md", Content: "## Install\n\n```sh\ngo install example.com/tool@latest\n```"},
		{Path: "docs/api.md", Content: "## API\n\nReference for every exported symbol."},
	}

	result := Score(repo, docs, evalTime)

	assert.Greater(t, result.Metrics[MetricCompleteness], 0.0)
	assert.Greater(t, result.Metrics[MetricStructure], 0.0)
	assert.GreaterOrEqual(t, result.Total, 0.50, "grade should be no lower than C-")
	assert.NotEqual(t, "F", result.Grade)
	assert.NotEqual(t, "D", result.Grade)
}
