package index

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/unifieddocs/docshub/internal/errors"
	"github.com/unifieddocs/docshub/internal/format"
	"github.com/unifieddocs/docshub/internal/store"
)

// FSSource serves documentation from a local directory tree laid out
// as <root>/<owner>/<name>/..., for indexing local corpora or fixtures
// without any network access.
type FSSource struct {
	root     string
	registry *format.Registry
}

// NewFSSource creates a filesystem source rooted at dir.
func NewFSSource(dir string) *FSSource {
	return &FSSource{root: dir, registry: format.NewRegistry()}
}

func (s *FSSource) repoDir(repo *store.Repository) string {
	return filepath.Join(s.root, repo.Owner, repo.Name)
}

// ListDocPaths walks the repository's directory and returns every
// supported documentation file, relative to the repository root. When
// the repository declares doc paths, only files under those prefixes
// are returned.
func (s *FSSource) ListDocPaths(ctx context.Context, repo *store.Repository) ([]string, error) {
	dir := s.repoDir(repo)
	if _, err := os.Stat(dir); err != nil {
		return nil, errors.NotFoundError("no local docs for " + repo.FullName)
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !s.registry.IsSupported(rel) {
			return nil
		}
		if len(repo.DocPaths) > 0 && !matchesDocPaths(rel, repo.DocPaths) {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// FetchDocument reads one document from disk.
func (s *FSSource) FetchDocument(ctx context.Context, repo *store.Repository, path string) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	data, err := os.ReadFile(filepath.Join(s.repoDir(repo), filepath.FromSlash(path)))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeStoreFailed, err)
	}
	return string(data), nil
}

// matchesDocPaths reports whether rel sits under any declared doc
// path. A declared path matches both itself and everything below it.
func matchesDocPaths(rel string, docPaths []string) bool {
	for _, dp := range docPaths {
		dp = strings.TrimSuffix(filepath.ToSlash(dp), "/")
		if rel == dp || strings.HasPrefix(rel, dp+"/") {
			return true
		}
	}
	return false
}
