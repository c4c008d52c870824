// Package config loads docshub configuration from defaults, an optional
// YAML file, and DOCSHUB_* environment variable overrides, in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/unifieddocs/docshub/internal/errors"
)

// Config represents the complete docshub configuration.
type Config struct {
	Version  int            `yaml:"version" json:"version"`
	Database DatabaseConfig `yaml:"database" json:"database"`
	Response ResponseConfig `yaml:"response" json:"response"`
	Indexing IndexingConfig `yaml:"indexing" json:"indexing"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
}

// DatabaseConfig configures the persistent stores.
type DatabaseConfig struct {
	// Path is the documents database file.
	Path string `yaml:"path" json:"path"`
	// AnalyticsPath is the search analytics database file.
	AnalyticsPath string `yaml:"analytics_path" json:"analytics_path"`
}

// ResponseConfig configures the response bounder.
type ResponseConfig struct {
	// MaxBytes is the hard response size ceiling in bytes.
	MaxBytes int `yaml:"max_bytes" json:"max_bytes"`
	// MaxSearchResults caps items considered for a search response.
	MaxSearchResults int `yaml:"max_search_results" json:"max_search_results"`
	// MaxListItems caps items considered for a list response.
	MaxListItems int `yaml:"max_list_items" json:"max_list_items"`
	// ContentPreviewChars caps per-document content previews.
	ContentPreviewChars int `yaml:"content_preview_chars" json:"content_preview_chars"`
}

// IndexingConfig configures the batch update runner.
type IndexingConfig struct {
	// Concurrency bounds how many repositories index at once.
	Concurrency int `yaml:"concurrency" json:"concurrency"`
	// Manifest is the curated repositories YAML file.
	Manifest string `yaml:"manifest" json:"manifest"`
	// SourceDir is a local documentation corpus laid out as
	// <owner>/<name>/...; empty disables the filesystem source.
	SourceDir string `yaml:"source_dir" json:"source_dir"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	Path  string `yaml:"path" json:"path"`
}

// DefaultDataDir returns the default data directory (~/.docshub/).
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".docshub")
	}
	return filepath.Join(home, ".docshub")
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	dataDir := DefaultDataDir()
	return &Config{
		Version: 1,
		Database: DatabaseConfig{
			Path:          filepath.Join(dataDir, "docs.db"),
			AnalyticsPath: filepath.Join(dataDir, "analytics.db"),
		},
		Response: ResponseConfig{
			MaxBytes:            500 * 1024,
			MaxSearchResults:    20,
			MaxListItems:        50,
			ContentPreviewChars: 1000,
		},
		Indexing: IndexingConfig{
			Concurrency: 4,
			Manifest:    filepath.Join(dataDir, "repositories.yaml"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration: defaults, then the YAML file at path (if it
// exists), then environment overrides. An empty path checks the default
// location (~/.docshub/config.yaml).
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		path = filepath.Join(DefaultDataDir(), "config.yaml")
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.New(errors.ErrCodeConfigInvalid,
				fmt.Sprintf("parse %s: %v", path, err), err)
		}
	case os.IsNotExist(err):
		// Defaults only.
	default:
		return nil, errors.New(errors.ErrCodeConfigNotFound,
			fmt.Sprintf("read %s: %v", path, err), err)
	}

	cfg.applyEnv()
	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// expandPaths resolves a leading "~/" in path values, so the shipped
// templates work verbatim.
func (c *Config) expandPaths() {
	c.Database.Path = expandTilde(c.Database.Path)
	c.Database.AnalyticsPath = expandTilde(c.Database.AnalyticsPath)
	c.Indexing.Manifest = expandTilde(c.Indexing.Manifest)
	c.Indexing.SourceDir = expandTilde(c.Indexing.SourceDir)
	c.Logging.Path = expandTilde(c.Logging.Path)
}

func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// applyEnv applies DOCSHUB_* environment overrides. Env always wins
// over file values.
func (c *Config) applyEnv() {
	if v := os.Getenv("DOCSHUB_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("DOCSHUB_ANALYTICS_PATH"); v != "" {
		c.Database.AnalyticsPath = v
	}
	if v := os.Getenv("DOCSHUB_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("DOCSHUB_LOG_PATH"); v != "" {
		c.Logging.Path = v
	}
	if v := os.Getenv("DOCSHUB_MAX_RESPONSE_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Response.MaxBytes = n
		}
	}
	if v := os.Getenv("DOCSHUB_SOURCE_DIR"); v != "" {
		c.Indexing.SourceDir = v
	}
	if v := os.Getenv("DOCSHUB_INDEX_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Indexing.Concurrency = n
		}
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New(errors.ErrCodeConfigInvalid, "database.path is required", nil)
	}
	if c.Response.MaxBytes <= 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "response.max_bytes must be positive", nil)
	}
	if c.Response.MaxSearchResults <= 0 || c.Response.MaxListItems <= 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "response caps must be positive", nil)
	}
	if c.Indexing.Concurrency <= 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "indexing.concurrency must be positive", nil)
	}
	return nil
}
