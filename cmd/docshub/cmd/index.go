package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unifieddocs/docshub/internal/config"
	"github.com/unifieddocs/docshub/internal/errors"
	"github.com/unifieddocs/docshub/internal/index"
	"github.com/unifieddocs/docshub/internal/output"
	"github.com/unifieddocs/docshub/internal/store"
)

func newIndexCmd() *cobra.Command {
	var (
		manifestPath string
		sourceDir    string
		concurrency  int
		skipImport   bool
	)

	cmd := &cobra.Command{
		Use:   "index [owner/name...]",
		Short: "Import the manifest and index documentation",
		Long: `Import curated repositories from the manifest, then index their
documentation from the configured source directory and rescore quality.

With repository arguments, only those repositories are indexed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd.Context(), cmd, args, manifestPath, sourceDir, concurrency, skipImport)
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest", "", "Curated repository manifest (default from config)")
	cmd.Flags().StringVar(&sourceDir, "source", "", "Documentation source directory (default from config)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Repositories indexed in parallel (default from config)")
	cmd.Flags().BoolVar(&skipImport, "skip-import", false, "Skip the manifest import step")

	return cmd
}

func runIndex(ctx context.Context, cmd *cobra.Command, args []string, manifestPath, sourceDir string, concurrency int, skipImport bool) error {
	w := output.New(cmd.OutOrStdout())

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if !skipImport {
		path := manifestPath
		if path == "" {
			path = cfg.Indexing.Manifest
		}
		manifest, err := config.LoadManifest(path)
		if err != nil {
			return err
		}
		imported, err := index.ImportManifest(ctx, s, manifest, logger())
		if err != nil {
			return err
		}
		if len(imported) > 0 {
			w.Successf("imported %d curated repositories", len(imported))
		}
	}

	repos, err := resolveRepos(ctx, s, args)
	if err != nil {
		return err
	}
	if len(repos) == 0 {
		w.Warning("no repositories to index; add entries to the manifest first")
		return nil
	}

	source := newSource(sourceDir)
	if source == nil {
		return errors.New(errors.ErrCodeInvalidInput,
			"no documentation source configured; set indexing.source_dir or pass --source", nil)
	}

	if concurrency <= 0 {
		concurrency = cfg.Indexing.Concurrency
	}
	runner := index.NewRunner(s, source, logger(), index.WithConcurrency(concurrency))

	w.Headerf("Indexing %d repositories", len(repos))
	summary, err := runner.Run(ctx, repos)
	if err != nil {
		return err
	}

	for _, r := range summary.Reports {
		switch r.Status {
		case store.IndexingStatusSuccess:
			w.Successf("%s: %d documents", r.FullName, r.DocsIndexed)
		case store.IndexingStatusPartial:
			w.Warningf("%s: %d documents, %d failed", r.FullName, r.DocsIndexed, r.DocsFailed)
		default:
			msg := "unknown error"
			if r.Err != nil {
				msg = r.Err.Error()
			}
			w.Errorf("%s: %s", r.FullName, msg)
		}
	}

	w.Newline()
	w.Successf("done: %d ok, %d partial, %d failed, %d documents indexed",
		summary.Succeeded, summary.Partial, summary.Failed, summary.DocsIndexed)
	if summary.Failed > 0 {
		return fmt.Errorf("%d repositories failed to index", summary.Failed)
	}
	return nil
}

// resolveRepos maps repository arguments to store records, or lists
// every known repository when no arguments are given.
func resolveRepos(ctx context.Context, s *store.Store, args []string) ([]*store.Repository, error) {
	if len(args) == 0 {
		return s.ListRepositories(ctx, nil)
	}
	repos := make([]*store.Repository, 0, len(args))
	for _, fullName := range args {
		repo, err := s.GetRepository(ctx, fullName)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", fullName, err)
		}
		repos = append(repos, repo)
	}
	return repos, nil
}
