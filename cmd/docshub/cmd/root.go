// Package cmd provides the CLI commands for docshub.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/unifieddocs/docshub/internal/analytics"
	"github.com/unifieddocs/docshub/internal/config"
	"github.com/unifieddocs/docshub/internal/index"
	"github.com/unifieddocs/docshub/internal/logging"
	"github.com/unifieddocs/docshub/internal/store"
	"github.com/unifieddocs/docshub/pkg/version"
)

var (
	cfgPath   string
	debugMode bool

	cfg *config.Config

	loggingCleanup func()
)

// NewRootCmd creates the root command for the docshub CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docshub",
		Short: "Quality-ranked documentation index and MCP server",
		Long: `docshub indexes documentation across repositories into a local
full-text index, scores each repository's documentation quality, and
serves ranked search over the Model Context Protocol.

Running docshub with no arguments starts the MCP server over stdio.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return cmd.Help()
			}
			// MCP over stdio: stdout carries JSON-RPC only, so the
			// default action starts the server with no banner.
			return runServe(cmd)
		},
	}

	cmd.SetVersionTemplate("docshub version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file (default ~/.docshub/config.yaml)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.docshub/logs/")

	cmd.PersistentPreRunE = setup
	cmd.PersistentPostRunE = teardown

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newDocsCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newAnalyticsCmd())
	cmd.AddCommand(newRebuildCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setup loads configuration and installs file logging before any
// command runs.
func setup(_ *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(cfgPath)
	if err != nil {
		return err
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	if cfg.Logging.Path != "" {
		logCfg.FilePath = cfg.Logging.Path
	}
	if debugMode {
		logCfg.Level = "debug"
		logCfg.WriteToStderr = true
	}

	cleanup, err := logging.SetupDefault(logCfg)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	loggingCleanup = cleanup
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// openStore opens the documents database from the loaded config.
func openStore() (*store.Store, error) {
	return store.Open(cfg.Database.Path)
}

// openAnalytics opens the analytics database from the loaded config.
func openAnalytics() (*analytics.Analytics, error) {
	return analytics.Open(cfg.Database.AnalyticsPath)
}

// newSource returns the configured documentation source, or nil when
// no local corpus is set.
func newSource(override string) index.Source {
	dir := override
	if dir == "" {
		dir = cfg.Indexing.SourceDir
	}
	if dir == "" {
		return nil
	}
	return index.NewFSSource(dir)
}

// searchFilters builds store filters from the shared filter flags.
func searchFilters(category string, minStars int, source string) *store.SearchFilters {
	return &store.SearchFilters{
		MinStars: minStars,
		Category: category,
		Source:   store.Source(source),
	}
}

func logger() *slog.Logger {
	return slog.Default()
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
