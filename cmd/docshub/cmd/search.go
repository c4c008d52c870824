package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/unifieddocs/docshub/internal/bound"
	"github.com/unifieddocs/docshub/internal/output"
)

func newSearchCmd() *cobra.Command {
	var (
		category string
		minStars int
		source   string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the documentation index",
		Long: `Full-text search across all indexed documentation. Results are
ranked by relevance, then repository quality score, then stars.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, strings.Join(args, " "), category, minStars, source)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Restrict to one documentation category")
	cmd.Flags().IntVar(&minStars, "min-stars", 0, "Minimum repository star count")
	cmd.Flags().StringVar(&source, "source", "", "Repository provenance: curated or discovered")

	return cmd
}

func runSearch(cmd *cobra.Command, query, category string, minStars int, source string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	results, err := s.SearchDocuments(cmd.Context(), query, searchFilters(category, minStars, source))
	if err != nil {
		return err
	}

	limits := responseLimits()
	output.New(cmd.OutOrStdout()).Text(limits.FormatSearchResponse(results, query))
	return nil
}

// responseLimits builds the response bounder from the loaded config.
func responseLimits() bound.Limits {
	return bound.Limits{
		MaxBytes:            cfg.Response.MaxBytes,
		MaxSearchResults:    cfg.Response.MaxSearchResults,
		MaxListItems:        cfg.Response.MaxListItems,
		ContentPreviewChars: cfg.Response.ContentPreviewChars,
	}
}
