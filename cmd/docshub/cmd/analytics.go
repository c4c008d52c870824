package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unifieddocs/docshub/internal/output"
)

func newAnalyticsCmd() *cobra.Command {
	var (
		limit      int
		windowDays int
	)

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show search analytics",
		Long: `Display popular queries, trending categories, missing-documentation
topics, performance stats, and index expansion recommendations.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalytics(cmd, limit, windowDays)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum entries per section")
	cmd.Flags().IntVar(&windowDays, "window-days", 30, "Popularity window in days")

	return cmd
}

func runAnalytics(cmd *cobra.Command, limit, windowDays int) error {
	a, err := openAnalytics()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	perf, err := a.GetPerformanceStats(ctx)
	if err != nil {
		return err
	}
	popular, err := a.PopularSearches(ctx, limit, windowDays)
	if err != nil {
		return err
	}
	trending, err := a.TrendingCategories(ctx, limit)
	if err != nil {
		return err
	}
	missing, err := a.MissingDocsReport(ctx, 3)
	if err != nil {
		return err
	}
	recs, err := a.ExpansionRecommendations(ctx)
	if err != nil {
		return err
	}

	w := output.New(cmd.OutOrStdout())
	w.Header("Search analytics")
	w.Table([][2]string{
		{"Total searches", fmt.Sprintf("%d", perf.TotalSearches)},
		{"Success rate", fmt.Sprintf("%.1f%%", perf.SuccessRate)},
		{"Avg search time", fmt.Sprintf("%.3fs", perf.AvgSearchTime)},
		{"Avg results", fmt.Sprintf("%.1f", perf.AvgResultsPerSearch)},
	})

	if len(popular) > 0 {
		w.Newline()
		w.Header("Popular searches")
		for _, p := range popular {
			w.Itemf("%q: %d searches, avg %.1f results", p.Query, p.Count, p.AvgResults)
		}
	}
	if len(trending) > 0 {
		w.Newline()
		w.Header("Trending categories")
		for _, t := range trending {
			w.Itemf("%s: %d", t.Category, t.Count)
		}
	}
	if len(missing) > 0 {
		w.Newline()
		w.Header("Missing documentation")
		for _, m := range missing {
			w.Itemf("%s (%d requests, e.g. %q)", m.Topic, m.Requests, m.Query)
		}
	}
	if len(recs) > 0 {
		w.Newline()
		w.Header("Recommendations")
		for _, r := range recs {
			w.Itemf("[%s] %s", r.Priority, r.Description)
			for _, item := range r.Items {
				w.Dim("      " + item)
			}
		}
	}
	return nil
}
