// Package quality scores repository documentation on six weighted
// metrics and maps the result to a letter grade. Scoring is a pure
// function of the repository metadata, its documents, and an explicit
// evaluation instant, so identical inputs always produce identical
// output.
package quality

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/unifieddocs/docshub/internal/store"
)

// Metric weights. They sum to exactly 1.0.
const (
	weightCompleteness  = 0.25
	weightFreshness     = 0.20
	weightStructure     = 0.20
	weightExamples      = 0.15
	weightCommunity     = 0.10
	weightAccessibility = 0.10
)

// Metric names as stored in quality_metrics.
const (
	MetricCompleteness  = "completeness"
	MetricFreshness     = "freshness"
	MetricStructure     = "structure"
	MetricExamples      = "examples"
	MetricCommunity     = "community"
	MetricAccessibility = "accessibility"
)

// Weights returns the metric weight table.
func Weights() map[string]float64 {
	return map[string]float64{
		MetricCompleteness:  weightCompleteness,
		MetricFreshness:     weightFreshness,
		MetricStructure:     weightStructure,
		MetricExamples:      weightExamples,
		MetricCommunity:     weightCommunity,
		MetricAccessibility: weightAccessibility,
	}
}

// Assessment is the result of scoring one repository.
type Assessment struct {
	Total   float64            // weighted sum, rounded to two decimals
	Grade   string             // letter grade derived from Total
	Metrics map[string]float64 // per-metric scores, each in [0, 1]
}

var (
	headerRe     = regexp.MustCompile(`(?m)^#{1,6}\s`)
	codeBlockRe  = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe = regexp.MustCompile("`[^`]+`")
)

// Score evaluates a repository's documentation. The now parameter is
// the evaluation instant used by the freshness metric; callers pass
// time.Now() in production and a fixed instant in tests.
func Score(repo *store.Repository, docs []store.RepoDocument, now time.Time) Assessment {
	metrics := map[string]float64{
		MetricCompleteness:  scoreCompleteness(docs),
		MetricFreshness:     scoreFreshness(repo.PushedAt, now),
		MetricStructure:     scoreStructure(docs),
		MetricExamples:      scoreExamples(docs),
		MetricCommunity:     scoreCommunity(repo),
		MetricAccessibility: scoreAccessibility(docs),
	}

	total := 0.0
	for name, weight := range Weights() {
		total += metrics[name] * weight
	}
	total = math.Round(total*100) / 100

	return Assessment{
		Total:   total,
		Grade:   GradeFor(total),
		Metrics: metrics,
	}
}

// scoreCompleteness awards incremental credit for essential doc files
// found in the path list.
func scoreCompleteness(docs []store.RepoDocument) float64 {
	paths := make([]string, len(docs))
	for i, d := range docs {
		paths[i] = strings.ToLower(d.Path)
	}
	joined := strings.Join(paths, " ")

	score := 0.0
	if anyContains(paths, "readme") {
		score += 0.3
	}
	if anyContainsOneOf(paths, "docs/", "documentation/", "wiki/", "guide/") {
		score += 0.2
	}
	if anyContains(paths, "api") {
		score += 0.1
	}
	if containsAny(joined, "install", "setup", "getting-started") {
		score += 0.1
	}
	if anyContains(paths, "contributing") {
		score += 0.1
	}
	if containsAny(joined, "example", "tutorial", "sample") {
		score += 0.1
	}
	if anyContainsOneOf(paths, "changelog", "history") {
		score += 0.1
	}
	return clamp01(score)
}

// scoreFreshness bands the age of the repository's last push. An
// unknown push date scores the neutral middle value.
func scoreFreshness(pushedAt, now time.Time) float64 {
	if pushedAt.IsZero() {
		return 0.5
	}
	days := int(now.Sub(pushedAt).Hours() / 24)
	switch {
	case days < 30:
		return 1.0
	case days < 90:
		return 0.8
	case days < 180:
		return 0.6
	case days < 365:
		return 0.4
	default:
		return 0.2
	}
}

func scoreStructure(docs []store.RepoDocument) float64 {
	score := 0.0
	if len(docs) > 5 {
		score += 0.3
	}

	var depthSum float64
	var depthCount int
	for _, d := range docs {
		depth := strings.Count(d.Path, "/")
		if depth > 0 {
			depthSum += math.Min(float64(depth)*0.1, 0.3)
			depthCount++
		}
	}
	if depthCount > 0 {
		score += depthSum / float64(depthCount)
	}

	// Only the leading portion of each document matters for layout
	// signals; tables of contents and header density show up early.
	var sb strings.Builder
	for _, d := range docs {
		sb.WriteString(head(d.Content, 1000))
		sb.WriteString(" ")
	}
	combined := sb.String()

	if containsAny(strings.ToLower(combined), "table of contents", "index", "## contents") {
		score += 0.2
	}
	if len(headerRe.FindAllString(combined, -1)) > 10 {
		score += 0.2
	}
	return clamp01(score)
}

func scoreExamples(docs []store.RepoDocument) float64 {
	var sb strings.Builder
	for _, d := range docs {
		sb.WriteString(head(d.Content, 5000))
		sb.WriteString(" ")
	}
	combined := sb.String()
	lower := strings.ToLower(combined)

	score := 0.0
	score += math.Min(float64(len(codeBlockRe.FindAllString(combined, -1)))*0.05, 0.4)

	keywords := []string{"example", "sample", "demo", "tutorial", "quickstart", "getting started"}
	hits := 0
	for _, kw := range keywords {
		hits += strings.Count(lower, kw)
	}
	score += math.Min(float64(hits)*0.02, 0.3)

	if containsAny(lower, "playground", "codesandbox", "stackblitz", "demo") {
		score += 0.2
	}
	score += math.Min(float64(len(inlineCodeRe.FindAllString(combined, -1)))*0.01, 0.1)
	return clamp01(score)
}

func scoreCommunity(repo *store.Repository) float64 {
	score := 0.0
	switch {
	case repo.Stars > 10000:
		score += 0.4
	case repo.Stars > 1000:
		score += 0.3
	case repo.Stars > 100:
		score += 0.2
	case repo.Stars > 10:
		score += 0.1
	}
	if len(repo.Topics) > 0 {
		score += 0.2
	}
	if repo.Description != "" {
		score += 0.2
	}
	if repo.License != "" {
		score += 0.2
	}
	return clamp01(score)
}

func scoreAccessibility(docs []store.RepoDocument) float64 {
	score := 0.0
	for _, d := range docs {
		switch strings.ToLower(d.Path) {
		case "readme.md", "readme.rst", "readme.txt":
			score += 0.4
		}
		if score > 0 {
			break // root README found
		}
	}

	clearNames := []string{"install", "setup", "guide", "tutorial", "api", "reference"}
	matching := 0
	for _, d := range docs {
		lower := strings.ToLower(d.Path)
		for _, name := range clearNames {
			if strings.Contains(lower, name) {
				matching++
				break
			}
		}
	}
	score += math.Min(float64(matching)*0.1, 0.3)

	switch n := len(docs); {
	case n >= 3 && n <= 20:
		score += 0.3
	case n > 20:
		score += 0.1
	}
	return clamp01(score)
}

// gradeBands maps score thresholds to letter grades, highest first.
// Bands are contiguous and exhaustive over [0, 1]; each threshold is
// inclusive at its lower edge.
var gradeBands = []struct {
	min   float64
	grade string
}{
	{0.90, "A+"},
	{0.85, "A"},
	{0.80, "A-"},
	{0.75, "B+"},
	{0.70, "B"},
	{0.65, "B-"},
	{0.60, "C+"},
	{0.55, "C"},
	{0.50, "C-"},
	{0.40, "D"},
}

// GradeFor converts a numeric score to its letter grade.
func GradeFor(score float64) string {
	for _, band := range gradeBands {
		if score >= band.min {
			return band.grade
		}
	}
	return "F"
}

// suggestionThresholds pairs each metric with the score below which a
// concrete improvement is suggested.
var suggestionThresholds = []struct {
	metric    string
	threshold float64
	advice    string
}{
	{MetricCompleteness, 0.70, "Add more comprehensive documentation including API references and guides"},
	{MetricFreshness, 0.50, "Update documentation to reflect recent changes"},
	{MetricStructure, 0.60, "Organize documentation with clear hierarchy and table of contents"},
	{MetricExamples, 0.50, "Add more code examples and tutorials"},
	{MetricCommunity, 0.50, "Improve repository metadata: add topics, description, and license"},
	{MetricAccessibility, 0.60, "Ensure README is present and use clear, descriptive file names"},
}

// Suggestions returns improvement advice for every metric below its
// threshold, in a fixed order.
func Suggestions(metrics map[string]float64) []string {
	var out []string
	for _, s := range suggestionThresholds {
		if metrics[s.metric] < s.threshold {
			out = append(out, s.advice)
		}
	}
	return out
}

// MetricNames returns the metric names in sorted order, for stable
// display.
func MetricNames() []string {
	names := make([]string, 0, len(Weights()))
	for name := range Weights() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func head(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func clamp01(v float64) float64 {
	return math.Min(v, 1.0)
}

func anyContains(paths []string, substr string) bool {
	for _, p := range paths {
		if strings.Contains(p, substr) {
			return true
		}
	}
	return false
}

func anyContainsOneOf(paths []string, substrs ...string) bool {
	for _, p := range paths {
		for _, s := range substrs {
			if strings.Contains(p, s) {
				return true
			}
		}
	}
	return false
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
