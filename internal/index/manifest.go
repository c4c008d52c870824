package index

import (
	"context"
	"log/slog"

	"github.com/unifieddocs/docshub/internal/config"
	"github.com/unifieddocs/docshub/internal/store"
)

// ImportManifest upserts every curated manifest entry into the store
// with curated provenance. It returns the imported repositories; a
// single bad entry is logged and skipped.
func ImportManifest(ctx context.Context, s *store.Store, m *config.Manifest, logger *slog.Logger) ([]*store.Repository, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var imported []*store.Repository
	for _, entry := range m.CuratedRepositories {
		repo := &store.Repository{
			Owner:       entry.Owner(),
			Name:        entry.Name(),
			FullName:    entry.Repo,
			Category:    entry.Category,
			Description: entry.Description,
			Source:      store.SourceCurated,
			Priority:    entry.Priority,
			DocPaths:    entry.DocPaths,
			Topics:      entry.Topics,
		}
		id, err := s.UpsertRepository(ctx, repo)
		if err != nil {
			logger.Warn("manifest_entry_skipped",
				slog.String("repo", entry.Repo),
				slog.String("error", err.Error()))
			continue
		}
		repo.ID = id
		imported = append(imported, repo)
	}

	logger.Info("manifest_imported", slog.Int("repositories", len(imported)))
	return imported, nil
}
