package cmd

import (
	"github.com/spf13/cobra"

	"github.com/unifieddocs/docshub/internal/output"
)

func newDocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs <owner/name>",
		Short: "Show the indexed documentation for one repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocs(cmd, args[0])
		},
	}
	return cmd
}

func runDocs(cmd *cobra.Command, fullName string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := s.GetRepository(cmd.Context(), fullName); err != nil {
		return err
	}
	docs, err := s.GetRepositoryDocuments(cmd.Context(), fullName)
	if err != nil {
		return err
	}

	limits := responseLimits()
	output.New(cmd.OutOrStdout()).Text(limits.FormatDocsResponse(docs, fullName))
	return nil
}
