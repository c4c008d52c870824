// Package store persists repository metadata and document bodies in
// SQLite and keeps an FTS5 full-text index in lock-step with the
// document table. Index writes happen in the same transaction as the
// document write, so no reader can observe the two disagreeing.
package store

import "time"

// Source is the provenance of a repository record.
type Source string

const (
	// SourceCurated marks repositories entered via manual curation.
	SourceCurated Source = "curated"
	// SourceDiscovered marks repositories found by automated discovery.
	SourceDiscovered Source = "discovered"
)

// Repository is the metadata record for an indexed repository.
// Identity is (Owner, Name); FullName is the derived "owner/name".
type Repository struct {
	ID          int64
	Owner       string
	Name        string
	FullName    string
	Stars       int
	Language    string
	Category    string // empty means uncategorized
	Description string
	Source      Source
	QualityScore   float64
	QualityGrade   string
	QualityMetrics map[string]float64 // per-metric breakdown
	Priority    string
	DocPaths    []string
	Topics      []string
	License     string
	PushedAt    time.Time // upstream last-push time, drives freshness scoring
	LastIndexed time.Time
	CreatedAt   time.Time
}

// Document is one indexed documentation file, owned by a repository.
type Document struct {
	ID          int64
	RepoID      int64
	Path        string
	Content     string
	ContentHash string
	IndexedAt   time.Time
}

// RepoDocument is a document joined with its repository metadata, as
// returned by GetRepositoryDocuments.
type RepoDocument struct {
	Path      string
	Content   string
	IndexedAt time.Time
	FullName  string
	Category  string
	Stars     int
}

// SearchFilters narrows a document search or repository listing.
// Zero values mean "no filter".
type SearchFilters struct {
	MinStars int
	Category string
	Source   Source
}

// SearchResult is a single ranked full-text match.
type SearchResult struct {
	FullName     string
	Stars        int
	Category     string
	Description  string
	Source       Source
	QualityScore float64
	Path         string
	Snippet      string
	Rank         float64 // FTS5 bm25 rank; lower is more relevant
}

// LanguageCount is one entry of the top-languages breakdown.
type LanguageCount struct {
	Language string
	Count    int
}

// Statistics summarizes the whole index.
type Statistics struct {
	TotalRepositories int
	BySource          map[Source]int
	ByCategory        map[string]int
	TotalDocuments    int
	ByLanguage        []LanguageCount // top 10, count descending
	DatabaseSizeMB    float64
}

// CategoryInfo is a category with its repository count and examples.
type CategoryInfo struct {
	Category     string
	Count        int
	ExampleRepos []string // up to 3
}

// IndexingStatus records the outcome of one repository indexing run.
type IndexingStatus string

const (
	IndexingStatusSuccess IndexingStatus = "success"
	IndexingStatusPartial IndexingStatus = "partial"
	IndexingStatusFailed  IndexingStatus = "failed"
)
