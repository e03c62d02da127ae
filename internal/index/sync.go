package index

import (
	"context"
	"log/slog"
	"time"

	"github.com/starford/chordanalyzr/internal/catalog"
	"github.com/starford/chordanalyzr/internal/relation"
	"github.com/starford/chordanalyzr/internal/theory"
)

// Sync brings the store up to date with cat. The relation set is rebuilt
// only when the stored catalog fingerprint differs from cat's; it reports
// whether a rebuild happened.
func Sync(ctx context.Context, db RelationStore, cat *catalog.Catalog, logger *slog.Logger) (bool, error) {
	stored, err := db.Fingerprint(ctx)
	if err != nil {
		return false, err
	}
	if stored == cat.Fingerprint() {
		logger.Debug("sync: relation store up to date", slog.String("fingerprint", stored))
		return false, nil
	}

	start := time.Now()
	rels := relation.BuildRelations(cat.ListModes(), theory.All(), cat.ListChordTypes(), theory.All())
	if err := db.Materialize(ctx, cat, rels); err != nil {
		return false, err
	}
	logger.Info("sync: relation store materialized",
		slog.Int("relations", len(rels)),
		slog.String("fingerprint", cat.Fingerprint()),
		slog.Duration("duration", time.Since(start)))
	return true, nil
}
