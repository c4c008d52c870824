package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/unifieddocs/docshub/configs"
	"github.com/unifieddocs/docshub/internal/config"
	"github.com/unifieddocs/docshub/internal/output"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the data directory and starter configuration",
		Long: `Create ~/.docshub with a commented config.yaml and a starter
curated repository manifest. Existing files are left alone unless
--force is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	return cmd
}

func runInit(cmd *cobra.Command, force bool) error {
	w := output.New(cmd.OutOrStdout())
	dataDir := config.DefaultDataDir()

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}
	w.Headerf("Initializing %s", dataDir)

	files := []struct {
		name    string
		content string
	}{
		{"config.yaml", configs.ConfigTemplate},
		{"repositories.yaml", configs.ManifestTemplate},
	}
	for _, f := range files {
		path := filepath.Join(dataDir, f.name)
		if _, err := os.Stat(path); err == nil && !force {
			w.Dim("  " + f.name + " already exists, skipping")
			continue
		}
		if err := os.WriteFile(path, []byte(f.content), 0o644); err != nil {
			return err
		}
		w.Successf("wrote %s", f.name)
	}

	w.Newline()
	w.Text("Next steps:")
	w.Item("edit repositories.yaml with your documentation sources")
	w.Item("run 'docshub index' to build the index")
	w.Item("run 'docshub serve' (or just 'docshub') for the MCP server")
	return nil
}
