package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unifieddocs/docshub/internal/bound"
	"github.com/unifieddocs/docshub/internal/output"
)

func newListCmd() *cobra.Command {
	var (
		category string
		minStars int
		source   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List indexed repositories",
		Long:  `List repositories ordered by quality score and stars.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, category, minStars, source)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Restrict to one documentation category")
	cmd.Flags().IntVar(&minStars, "min-stars", 0, "Minimum repository star count")
	cmd.Flags().StringVar(&source, "source", "", "Repository provenance: curated or discovered")

	return cmd
}

func runList(cmd *cobra.Command, category string, minStars int, source string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	repos, err := s.ListRepositories(cmd.Context(), searchFilters(category, minStars, source))
	if err != nil {
		return err
	}

	items := make([]bound.ListItem, 0, len(repos))
	for _, r := range repos {
		items = append(items, bound.ListItem{
			Name:        fmt.Sprintf("%s (%s, %.2f)", r.FullName, r.QualityGrade, r.QualityScore),
			Stars:       r.Stars,
			Category:    r.Category,
			Description: r.Description,
		})
	}

	limits := responseLimits()
	title := fmt.Sprintf("Indexed repositories (%d)", len(repos))
	output.New(cmd.OutOrStdout()).Text(limits.FormatListResponse(items, title))
	return nil
}
