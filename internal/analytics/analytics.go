// Package analytics records search traffic in its own SQLite database
// and derives popularity, category, and coverage-gap reports from it.
package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "modernc.org/sqlite"

	"github.com/unifieddocs/docshub/internal/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS search_queries (
	id INTEGER PRIMARY KEY,
	query TEXT NOT NULL,
	results_count INTEGER DEFAULT 0,
	clicked_results TEXT,
	search_time REAL,
	timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS popular_searches (
	id INTEGER PRIMARY KEY,
	query TEXT UNIQUE NOT NULL,
	search_count INTEGER DEFAULT 1,
	last_searched TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	avg_results_count REAL DEFAULT 0,
	avg_search_time REAL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS search_categories (
	id INTEGER PRIMARY KEY,
	category TEXT UNIQUE NOT NULL,
	search_count INTEGER DEFAULT 0,
	last_updated TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS missing_docs (
	id INTEGER PRIMARY KEY,
	topic TEXT NOT NULL,
	query TEXT NOT NULL,
	request_count INTEGER DEFAULT 1,
	first_requested TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	last_requested TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(topic, query)
);

CREATE INDEX IF NOT EXISTS idx_popular_count ON popular_searches(search_count DESC);
CREATE INDEX IF NOT EXISTS idx_missing_count ON missing_docs(request_count DESC);
`

// categoryKeywords maps a search category to the query keywords that
// signal it. Matching is case-insensitive substring matching, and a
// query increments every category it matches.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"AI/ML", []string{"ai", "ml", "machine learning", "deep learning", "neural", "tensorflow", "pytorch"}},
	{"Web Development", []string{"react", "vue", "angular", "frontend", "backend", "web", "javascript", "css"}},
	{"Mobile Development", []string{"ios", "android", "mobile", "react native", "flutter", "swift"}},
	{"Databases", []string{"sql", "database", "mongodb", "postgresql", "redis", "mysql"}},
	{"Cloud/DevOps", []string{"docker", "kubernetes", "aws", "azure", "cloud", "devops", "ci/cd"}},
	{"Security", []string{"security", "auth", "encryption", "owasp", "vulnerability"}},
	{"Testing", []string{"test", "testing", "jest", "pytest", "unit test", "e2e"}},
	{"API Development", []string{"api", "rest", "graphql", "grpc", "endpoint"}},
}

var topicStopWords = map[string]bool{
	"how": true, "to": true, "what": true, "where": true, "when": true,
	"why": true, "is": true, "are": true, "the": true, "a": true, "an": true,
}

// aggregate is the cached popular_searches row for one query.
type aggregate struct {
	count      int
	avgResults float64
	avgTime    float64
}

// Analytics owns the analytics database. The mutex serializes
// LogSearch end to end: the aggregate cache is written after commit,
// so without it a slow writer could re-cache a stale aggregate over a
// newer one and regress the running averages.
type Analytics struct {
	mu    sync.Mutex
	db    *sql.DB
	cache *lru.Cache[string, aggregate]
}

// Open opens (or creates) the analytics database at path. An empty
// path opens an in-memory database for testing.
func Open(path string) (*Analytics, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	} else if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.StoreError(fmt.Sprintf("create analytics directory: %v", err), err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.StoreError(fmt.Sprintf("open analytics database: %v", err), err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, p := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, errors.StoreError(fmt.Sprintf("set pragma: %v", err), err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.StoreError(fmt.Sprintf("create analytics schema: %v", err), err)
	}

	cache, err := lru.New[string, aggregate](1024)
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(errors.ErrCodeInternal, err)
	}
	return &Analytics{db: db, cache: cache}, nil
}

// Close closes the analytics database.
func (a *Analytics) Close() error {
	return a.db.Close()
}

// LogSearch appends a query record and updates the derived aggregates
// in one transaction: the popular-search running averages, category
// counters for every matched category, and, for zero-result queries,
// the missing-documentation record for the extracted topic.
func (a *Analytics) LogSearch(ctx context.Context, query string, resultCount int, latency time.Duration, clickedIDs []string) error {
	if strings.TrimSpace(query) == "" {
		return errors.New(errors.ErrCodeQueryEmpty, "cannot log empty query", nil)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	clicked, err := json.Marshal(orEmpty(clickedIDs))
	if err != nil {
		return errors.ValidationError(fmt.Sprintf("encode clicked ids: %v", err), err)
	}
	seconds := latency.Seconds()

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.StoreError(fmt.Sprintf("begin analytics transaction: %v", err), err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO search_queries (query, results_count, clicked_results, search_time)
		VALUES (?, ?, ?, ?)
	`, query, resultCount, string(clicked), seconds); err != nil {
		return errors.StoreError(fmt.Sprintf("log search: %v", err), err)
	}

	newAgg, err := a.updatePopular(ctx, tx, query, resultCount, seconds)
	if err != nil {
		return err
	}
	if err := a.trackCategories(ctx, tx, query); err != nil {
		return err
	}
	if resultCount == 0 {
		if err := a.trackMissing(ctx, tx, query); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.StoreError(fmt.Sprintf("commit search log: %v", err), err)
	}
	a.cache.Add(query, newAgg)
	return nil
}

// updatePopular applies the incremental-mean update to the query's
// aggregate row. The cache avoids re-reading the row for queries seen
// recently; it is only written after commit, so a failed transaction
// never poisons it.
func (a *Analytics) updatePopular(ctx context.Context, tx *sql.Tx, query string, resultCount int, seconds float64) (aggregate, error) {
	prev, cached := a.cache.Get(query)
	if !cached {
		err := tx.QueryRowContext(ctx, `
			SELECT search_count, avg_results_count, avg_search_time
			FROM popular_searches WHERE query = ?
		`, query).Scan(&prev.count, &prev.avgResults, &prev.avgTime)
		if err == sql.ErrNoRows {
			prev = aggregate{}
		} else if err != nil {
			return aggregate{}, errors.StoreError(fmt.Sprintf("read popular search: %v", err), err)
		}
	}

	if prev.count == 0 {
		next := aggregate{count: 1, avgResults: float64(resultCount), avgTime: seconds}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO popular_searches (query, search_count, avg_results_count, avg_search_time)
			VALUES (?, 1, ?, ?)
			ON CONFLICT(query) DO UPDATE SET
				search_count = 1,
				avg_results_count = excluded.avg_results_count,
				avg_search_time = excluded.avg_search_time,
				last_searched = CURRENT_TIMESTAMP
		`, query, next.avgResults, next.avgTime); err != nil {
			return aggregate{}, errors.StoreError(fmt.Sprintf("insert popular search: %v", err), err)
		}
		return next, nil
	}

	n := prev.count + 1
	next := aggregate{
		count:      n,
		avgResults: (prev.avgResults*float64(prev.count) + float64(resultCount)) / float64(n),
		avgTime:    (prev.avgTime*float64(prev.count) + seconds) / float64(n),
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE popular_searches
		SET search_count = ?, avg_results_count = ?, avg_search_time = ?,
			last_searched = CURRENT_TIMESTAMP
		WHERE query = ?
	`, next.count, next.avgResults, next.avgTime, query); err != nil {
		return aggregate{}, errors.StoreError(fmt.Sprintf("update popular search: %v", err), err)
	}
	return next, nil
}

func (a *Analytics) trackCategories(ctx context.Context, tx *sql.Tx, query string) error {
	lower := strings.ToLower(query)
	for _, entry := range categoryKeywords {
		matched := false
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO search_categories (category, search_count)
			VALUES (?, 1)
			ON CONFLICT(category) DO UPDATE SET
				search_count = search_count + 1,
				last_updated = CURRENT_TIMESTAMP
		`, entry.category); err != nil {
			return errors.StoreError(fmt.Sprintf("track category %s: %v", entry.category, err), err)
		}
	}
	return nil
}

func (a *Analytics) trackMissing(ctx context.Context, tx *sql.Tx, query string) error {
	topic := ExtractTopic(query)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO missing_docs (topic, query)
		VALUES (?, ?)
		ON CONFLICT(topic, query) DO UPDATE SET
			request_count = request_count + 1,
			last_requested = CURRENT_TIMESTAMP
	`, topic, query); err != nil {
		return errors.StoreError(fmt.Sprintf("track missing docs for %q: %v", topic, err), err)
	}
	return nil
}

// ExtractTopic picks the query's main topic: the first word longer
// than two characters that is not a stop word, falling back to the
// first word, or "unknown" for a blank query.
func ExtractTopic(query string) string {
	words := strings.Fields(strings.ToLower(query))
	for _, w := range words {
		if !topicStopWords[w] && len(w) > 2 {
			return w
		}
	}
	if len(words) > 0 {
		return words[0]
	}
	return "unknown"
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
