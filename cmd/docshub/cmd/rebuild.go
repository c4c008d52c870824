package cmd

import (
	"github.com/spf13/cobra"

	"github.com/unifieddocs/docshub/internal/output"
)

func newRebuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the full-text index from stored documents",
		Long: `Drop and repopulate the full-text index from the document table.
Use when the index may have diverged, for example after an external
bulk load.`,
		RunE: runRebuild,
	}
}

func runRebuild(cmd *cobra.Command, _ []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	count, err := s.RebuildIndex(cmd.Context())
	if err != nil {
		return err
	}
	output.New(cmd.OutOrStdout()).Successf("search index rebuilt: %d documents", count)
	return nil
}
