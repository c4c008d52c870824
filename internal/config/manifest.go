package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/unifieddocs/docshub/internal/errors"
)

// Manifest is the curated repository manifest loaded from
// repositories.yaml. Entries become repositories with provenance
// "curated" when imported into the store.
type Manifest struct {
	CuratedRepositories []CuratedRepo `yaml:"curated_repositories"`
	Discovery           Discovery     `yaml:"discovery"`
}

// CuratedRepo is a single curated repository entry.
type CuratedRepo struct {
	// Repo is the "owner/name" identity.
	Repo        string   `yaml:"repo"`
	Category    string   `yaml:"category"`
	Description string   `yaml:"description"`
	Priority    string   `yaml:"priority"`
	DocPaths    []string `yaml:"doc_paths"`
	Topics      []string `yaml:"topics"`
}

// Discovery controls automated repository discovery done by external
// collaborators; the core only records the flag.
type Discovery struct {
	Enabled  bool `yaml:"enabled"`
	MinStars int  `yaml:"min_stars"`
}

// Owner returns the owner half of the repo identity.
func (r CuratedRepo) Owner() string {
	owner, _, _ := strings.Cut(r.Repo, "/")
	return owner
}

// Name returns the name half of the repo identity.
func (r CuratedRepo) Name() string {
	_, name, _ := strings.Cut(r.Repo, "/")
	return name
}

// LoadManifest reads and validates a curated repository manifest.
// Entries without an "owner/name" identity are rejected.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Manifest{Discovery: Discovery{Enabled: true}}, nil
		}
		return nil, errors.New(errors.ErrCodeConfigNotFound,
			fmt.Sprintf("read manifest %s: %v", path, err), err)
	}
	return ParseManifest(data)
}

// ParseManifest parses manifest YAML bytes.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("parse manifest: %v", err), err)
	}

	for _, r := range m.CuratedRepositories {
		owner, name, ok := strings.Cut(r.Repo, "/")
		if !ok || owner == "" || name == "" {
			return nil, errors.New(errors.ErrCodeConfigInvalid,
				fmt.Sprintf("manifest entry %q is not owner/name", r.Repo), nil)
		}
	}
	return &m, nil
}
