package relation

import (
	"context"
	"sort"
	"strconv"

	"github.com/starford/chordanalyzr/internal/apperr"
	"github.com/starford/chordanalyzr/internal/catalog"
	"github.com/starford/chordanalyzr/internal/theory"
)

// Engine answers relation queries by mode and key name. It is safe for
// concurrent use as long as its Source is.
type Engine struct {
	cat *catalog.Catalog
	src Source
}

// NewEngine creates an engine reading relations from src.
func NewEngine(cat *catalog.Catalog, src Source) *Engine {
	return &Engine{cat: cat, src: src}
}

// Catalog returns the catalog the engine resolves names against.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.cat
}

// Resolve looks up a mode by name and a key through the naming table.
func (e *Engine) Resolve(modeName, keyName string) (catalog.Mode, theory.Note, error) {
	mode, err := e.cat.GetMode(modeName)
	if err != nil {
		return catalog.Mode{}, theory.Note{}, err
	}
	key, err := theory.LookupNote("key", keyName)
	if err != nil {
		return catalog.Mode{}, theory.Note{}, err
	}
	return mode, key, nil
}

// Scale generates the scale for a mode and key name.
func (e *Engine) Scale(modeName, keyName string) (Scale, theory.Note, error) {
	mode, key, err := e.Resolve(modeName, keyName)
	if err != nil {
		return Scale{}, theory.Note{}, err
	}
	return GenerateScale(mode, key.PitchClass), key, nil
}

// ExactMatches returns the chords built entirely from notes of the scale.
func (e *Engine) ExactMatches(ctx context.Context, modeName, keyName string) ([]Relation, error) {
	return e.BoundedMatches(ctx, modeName, keyName, 0)
}

// BoundedMatches returns the chords with at most maxDiff notes outside the
// scale, ordered by chord root and then chord type name.
func (e *Engine) BoundedMatches(ctx context.Context, modeName, keyName string, maxDiff int) ([]Relation, error) {
	if err := checkMaxDiff(maxDiff); err != nil {
		return nil, err
	}
	mode, key, err := e.Resolve(modeName, keyName)
	if err != nil {
		return nil, err
	}
	rels, err := e.src.Relations(ctx, mode, key.PitchClass)
	if err != nil {
		return nil, err
	}
	return selectRelations(rels, key, maxDiff, nil), nil
}

// MatchesForChordNote is BoundedMatches restricted to chords rooted on
// chordNote. The chord note is compared by pitch class, so "A#" and "Bb"
// select the same chords.
func (e *Engine) MatchesForChordNote(ctx context.Context, modeName, keyName, chordNote string, maxDiff int) ([]Relation, error) {
	if err := checkMaxDiff(maxDiff); err != nil {
		return nil, err
	}
	mode, key, err := e.Resolve(modeName, keyName)
	if err != nil {
		return nil, err
	}
	root, err := theory.LookupNote("chord_note", chordNote)
	if err != nil {
		return nil, err
	}

	var rels []Relation
	if rs, ok := e.src.(RootSource); ok {
		rels, err = rs.RelationsForRoot(ctx, mode, key.PitchClass, root.PitchClass)
	} else {
		rels, err = e.src.Relations(ctx, mode, key.PitchClass)
	}
	if err != nil {
		return nil, err
	}
	return selectRelations(rels, key, maxDiff, &root.PitchClass), nil
}

func checkMaxDiff(maxDiff int) error {
	if maxDiff < 0 {
		return apperr.InvalidArgument("max_diff", strconv.Itoa(maxDiff))
	}
	return nil
}

// selectRelations copies the matching relations, stamps them with the
// requested key spelling and sorts them.
func selectRelations(rels []Relation, key theory.Note, maxDiff int, root *theory.PitchClass) []Relation {
	out := make([]Relation, 0, len(rels))
	for _, r := range rels {
		if r.DiffCount > maxDiff {
			continue
		}
		if root != nil && r.ChordRoot != *root {
			continue
		}
		r.KeyName = key.Name
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ChordRoot != out[j].ChordRoot {
			return out[i].ChordRoot < out[j].ChordRoot
		}
		return out[i].ChordType < out[j].ChordType
	})
	return out
}
