package index

import (
	"context"

	"github.com/starford/chordanalyzr/internal/catalog"
	"github.com/starford/chordanalyzr/internal/relation"
)

// RelationStore defines the operations on a materialized relation set.
// Consumers should depend on this interface rather than the concrete *DB type.
type RelationStore interface {
	relation.Source
	relation.RootSource
	Materialize(ctx context.Context, cat *catalog.Catalog, rels []relation.Relation) error
	Fingerprint(ctx context.Context) (string, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// Verify *DB satisfies RelationStore at compile time.
var _ RelationStore = (*DB)(nil)
