// Package index drives documentation indexing runs: fetching documents
// from a source, converting them to canonical text, writing them to
// the store, and rescoring each repository afterwards.
package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/unifieddocs/docshub/internal/format"
	"github.com/unifieddocs/docshub/internal/quality"
	"github.com/unifieddocs/docshub/internal/store"
)

// Source supplies documentation for a repository. Implementations may
// read the filesystem, an archive, or a remote API; the runner only
// sees paths and content.
type Source interface {
	// ListDocPaths returns the candidate documentation paths for the
	// repository, relative to its root.
	ListDocPaths(ctx context.Context, repo *store.Repository) ([]string, error)
	// FetchDocument returns the raw content of one document.
	FetchDocument(ctx context.Context, repo *store.Repository, path string) (string, error)
}

// Report is the outcome of indexing one repository.
type Report struct {
	FullName    string
	Status      store.IndexingStatus
	DocsIndexed int
	DocsFailed  int
	Err         error
}

// Summary aggregates a whole indexing run.
type Summary struct {
	Succeeded   int
	Partial     int
	Failed      int
	DocsIndexed int
	Reports     []Report
}

// Runner indexes batches of repositories with bounded concurrency.
type Runner struct {
	store       *store.Store
	source      Source
	registry    *format.Registry
	concurrency int
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithConcurrency bounds how many repositories index in parallel.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithClock overrides the evaluation clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner creates a runner over the given store and source.
func NewRunner(s *store.Store, source Source, logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		store:       s,
		source:      source,
		registry:    format.NewRegistry(),
		concurrency: 4,
		logger:      logger,
		now:         time.Now,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run indexes every given repository. Repositories proceed in
// parallel up to the concurrency limit; a repository that fails is
// reported, never fatal to the run.
func (r *Runner) Run(ctx context.Context, repos []*store.Repository) (*Summary, error) {
	summary := &Summary{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, repo := range repos {
		repo := repo
		g.Go(func() error {
			report := r.indexRepository(gctx, repo)
			mu.Lock()
			defer mu.Unlock()
			summary.Reports = append(summary.Reports, report)
			summary.DocsIndexed += report.DocsIndexed
			switch report.Status {
			case store.IndexingStatusSuccess:
				summary.Succeeded++
			case store.IndexingStatusPartial:
				summary.Partial++
			default:
				summary.Failed++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}
	return summary, nil
}

// indexRepository fetches, converts, and stores one repository's
// documents, then rescores it. A single document's failure is counted
// and skipped rather than aborting the batch.
func (r *Runner) indexRepository(ctx context.Context, repo *store.Repository) Report {
	report := Report{FullName: repo.FullName}

	paths, err := r.source.ListDocPaths(ctx, repo)
	if err != nil {
		report.Status = store.IndexingStatusFailed
		report.Err = fmt.Errorf("list docs for %s: %w", repo.FullName, err)
		_ = r.store.RecordIndexingRun(ctx, repo.ID, store.IndexingStatusFailed, 0, report.Err.Error())
		return report
	}

	for _, path := range paths {
		handler := r.registry.HandlerFor(path)
		if handler == nil {
			continue
		}

		raw, err := r.source.FetchDocument(ctx, repo, path)
		if err != nil {
			report.DocsFailed++
			r.logger.Warn("document_fetch_failed",
				slog.String("repo", repo.FullName),
				slog.String("path", path),
				slog.String("error", err.Error()))
			continue
		}

		text := handler.ToText(raw)
		if text == "" {
			report.DocsFailed++
			continue
		}

		if err := r.store.AddDocument(ctx, repo.ID, path, text, contentHash(text)); err != nil {
			report.DocsFailed++
			r.logger.Warn("document_store_failed",
				slog.String("repo", repo.FullName),
				slog.String("path", path),
				slog.String("error", err.Error()))
			continue
		}
		report.DocsIndexed++
	}

	switch {
	case report.DocsIndexed == 0 && report.DocsFailed > 0:
		report.Status = store.IndexingStatusFailed
		report.Err = fmt.Errorf("all %d documents failed for %s", report.DocsFailed, repo.FullName)
	case report.DocsFailed > 0:
		report.Status = store.IndexingStatusPartial
	default:
		report.Status = store.IndexingStatusSuccess
	}

	if report.DocsIndexed > 0 {
		if err := r.rescore(ctx, repo); err != nil {
			r.logger.Warn("rescore_failed",
				slog.String("repo", repo.FullName),
				slog.String("error", err.Error()))
		}
		if err := r.store.TouchLastIndexed(ctx, repo.ID); err == nil {
			r.logger.Info("repository_indexed",
				slog.String("repo", repo.FullName),
				slog.Int("documents", report.DocsIndexed),
				slog.Int("failed", report.DocsFailed))
		}
	}

	errMsg := ""
	if report.Err != nil {
		errMsg = report.Err.Error()
	}
	_ = r.store.RecordIndexingRun(ctx, repo.ID, report.Status, report.DocsIndexed, errMsg)
	return report
}

// rescore recomputes the repository's quality assessment from its
// freshly indexed documents.
func (r *Runner) rescore(ctx context.Context, repo *store.Repository) error {
	docs, err := r.store.GetRepositoryDocuments(ctx, repo.FullName)
	if err != nil {
		return err
	}
	result := quality.Score(repo, docs, r.now())
	return r.store.UpdateQuality(ctx, repo.ID, result.Total, result.Grade, result.Metrics)
}

func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
