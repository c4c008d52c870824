package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unifieddocs/docshub/internal/output"
	"github.com/unifieddocs/docshub/internal/store"
)

func newStatsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index statistics",
		Long:  `Display repository and document counts, categories, languages, and database size.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStats(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

// statsOutput is the JSON shape of the stats command.
type statsOutput struct {
	TotalRepositories int                   `json:"total_repositories"`
	BySource          map[string]int        `json:"by_source"`
	ByCategory        map[string]int        `json:"by_category"`
	TotalDocuments    int                   `json:"total_documents"`
	ByLanguage        []store.LanguageCount `json:"by_language"`
	DatabaseSizeMB    float64               `json:"database_size_mb"`
}

func runStats(cmd *cobra.Command, jsonOutput bool) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	stats, err := s.GetStatistics(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput {
		bySource := make(map[string]int, len(stats.BySource))
		for src, n := range stats.BySource {
			bySource[string(src)] = n
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(statsOutput{
			TotalRepositories: stats.TotalRepositories,
			BySource:          bySource,
			ByCategory:        stats.ByCategory,
			TotalDocuments:    stats.TotalDocuments,
			ByLanguage:        stats.ByLanguage,
			DatabaseSizeMB:    stats.DatabaseSizeMB,
		})
	}

	w := output.New(cmd.OutOrStdout())
	w.Header("Index statistics")
	w.Table([][2]string{
		{"Repositories", fmt.Sprintf("%d", stats.TotalRepositories)},
		{"Curated", fmt.Sprintf("%d", stats.BySource[store.SourceCurated])},
		{"Discovered", fmt.Sprintf("%d", stats.BySource[store.SourceDiscovered])},
		{"Documents", fmt.Sprintf("%d", stats.TotalDocuments)},
		{"Database size", fmt.Sprintf("%.1f MB", stats.DatabaseSizeMB)},
	})

	if len(stats.ByCategory) > 0 {
		w.Newline()
		w.Header("By category")
		for category, count := range stats.ByCategory {
			w.Itemf("%s: %d", category, count)
		}
	}
	if len(stats.ByLanguage) > 0 {
		w.Newline()
		w.Header("Top languages")
		for _, lc := range stats.ByLanguage {
			w.Itemf("%s: %d", lc.Language, lc.Count)
		}
	}
	return nil
}
