package relation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/starford/chordanalyzr/internal/apperr"
	"github.com/starford/chordanalyzr/internal/catalog"
	"github.com/starford/chordanalyzr/internal/theory"
)

// Source returns every relation for one mode and key root: all chord types
// on all twelve chord roots. The returned slice is read-only.
type Source interface {
	Relations(ctx context.Context, mode catalog.Mode, keyRoot theory.PitchClass) ([]Relation, error)
}

// RootSource is implemented by sources that can look relations up by chord
// root directly instead of scanning a whole (mode, key) shard.
type RootSource interface {
	RelationsForRoot(ctx context.Context, mode catalog.Mode, keyRoot, chordRoot theory.PitchClass) ([]Relation, error)
}

// Computed recomputes relations on every call.
type Computed struct {
	chordTypes []catalog.ChordType
}

// NewComputed creates a source over the chord types of cat.
func NewComputed(cat *catalog.Catalog) *Computed {
	return &Computed{chordTypes: cat.ListChordTypes()}
}

// Relations implements Source.
func (c *Computed) Relations(_ context.Context, mode catalog.Mode, keyRoot theory.PitchClass) ([]Relation, error) {
	return BuildRelations([]catalog.Mode{mode}, []theory.PitchClass{keyRoot}, c.chordTypes, theory.All()), nil
}

type shardKey struct {
	mode string
	key  theory.PitchClass
}

// EagerCache precomputes every (mode, key) shard up front. Once
// NewEagerCache returns the cache is never written again, so reads need no
// locking.
type EagerCache struct {
	shards map[shardKey][]Relation
	total  int
}

// NewEagerCache builds all shards for cat, one goroutine per mode.
func NewEagerCache(ctx context.Context, cat *catalog.Catalog, logger *slog.Logger) (*EagerCache, error) {
	start := time.Now()
	modes := cat.ListModes()
	chordTypes := cat.ListChordTypes()
	keys := theory.All()

	parts := make([]map[shardKey][]Relation, len(modes))
	g, gCtx := errgroup.WithContext(ctx)
	for i, m := range modes {
		g.Go(func() error {
			part := make(map[shardKey][]Relation, len(keys))
			for _, key := range keys {
				if err := gCtx.Err(); err != nil {
					return err
				}
				part[shardKey{m.Name, key}] = BuildRelations([]catalog.Mode{m}, []theory.PitchClass{key}, chordTypes, keys)
			}
			parts[i] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("relation: build cache: %w", err)
	}

	c := &EagerCache{shards: make(map[shardKey][]Relation, len(modes)*len(keys))}
	for _, part := range parts {
		for k, rels := range part {
			c.shards[k] = rels
			c.total += len(rels)
		}
	}

	logger.Info("relation cache built",
		slog.Int("modes", len(modes)),
		slog.Int("chord_types", len(chordTypes)),
		slog.Int("relations", c.total),
		slog.Duration("duration", time.Since(start)))
	return c, nil
}

// Relations implements Source.
func (c *EagerCache) Relations(_ context.Context, mode catalog.Mode, keyRoot theory.PitchClass) ([]Relation, error) {
	rels, ok := c.shards[shardKey{mode.Name, theory.Normalize(int(keyRoot))}]
	if !ok {
		return nil, apperr.NotFound("mode", mode.Name)
	}
	return rels, nil
}

// Len returns the number of cached relations.
func (c *EagerCache) Len() int {
	return c.total
}

// LazyCache computes a shard the first time it is requested. Concurrent
// requests for the same shard share one computation.
type LazyCache struct {
	computed *Computed
	group    singleflight.Group

	mu     sync.RWMutex
	shards map[shardKey][]Relation
}

// NewLazyCache creates an empty cache over the chord types of cat.
func NewLazyCache(cat *catalog.Catalog) *LazyCache {
	return &LazyCache{
		computed: NewComputed(cat),
		shards:   make(map[shardKey][]Relation),
	}
}

// Relations implements Source.
func (c *LazyCache) Relations(ctx context.Context, mode catalog.Mode, keyRoot theory.PitchClass) ([]Relation, error) {
	k := shardKey{mode.Name, theory.Normalize(int(keyRoot))}

	c.mu.RLock()
	rels, ok := c.shards[k]
	c.mu.RUnlock()
	if ok {
		return rels, nil
	}

	v, err, _ := c.group.Do(fmt.Sprintf("%s|%d", k.mode, k.key), func() (any, error) {
		rels, err := c.computed.Relations(ctx, mode, k.key)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.shards[k] = rels
		c.mu.Unlock()
		return rels, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Relation), nil
}

// Len returns the number of shards computed so far.
func (c *LazyCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.shards)
}
