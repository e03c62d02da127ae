// Package chordservice shapes relation query results for the transports: it
// names chords and spells scale and chord notes in the context of the key.
package chordservice

import (
	"context"

	"github.com/starford/chordanalyzr/internal/catalog"
	"github.com/starford/chordanalyzr/internal/relation"
	"github.com/starford/chordanalyzr/internal/theory"
)

// ScaleNote is one degree of a spelled scale.
type ScaleNote struct {
	SeqNote    int    `json:"seqNote"`
	NoteName   string `json:"noteName"`
	PitchClass int    `json:"pitchClass"`
}

// ChordDetail is a chord/scale relation with display names attached.
type ChordDetail struct {
	Mode                   string   `json:"mode"`
	KeyName                string   `json:"keyName"`
	KeyNote                int      `json:"keyNote"`
	ChordNote              int      `json:"chordNote"`
	ChordNoteName          string   `json:"chordNoteName"`
	ChordType              string   `json:"chordType"`
	ChordSymbol            string   `json:"chordSymbol"`
	ChordName              string   `json:"chordName"`
	ModeNotes              []int    `json:"modeNotes"`
	ChordNotes             []int    `json:"chordNotes"`
	ChordNoteNames         []string `json:"chordNoteNames"`
	ModeChordNoteDiff      []int    `json:"modeChordNoteDiff"`
	ModeChordNoteDiffCount int      `json:"modeChordNoteDiffCount"`
}

// ChordQuery selects chords for a scale. ChordNote is optional.
type ChordQuery struct {
	Mode      string
	Key       string
	MaxDiff   int
	ChordNote string
}

// Service answers catalog, scale and chord lookups.
type Service struct {
	engine *relation.Engine
}

// NewService creates a new chord service.
func NewService(engine *relation.Engine) *Service {
	return &Service{engine: engine}
}

// ListModes returns every mode ordered by name.
func (s *Service) ListModes(_ context.Context) []catalog.Mode {
	return s.engine.Catalog().ListModes()
}

// ListChordTypes returns every chord type ordered by name.
func (s *Service) ListChordTypes(_ context.Context) []catalog.ChordType {
	return s.engine.Catalog().ListChordTypes()
}

// Scale returns the spelled notes of mode rooted at key.
func (s *Service) Scale(_ context.Context, mode, key string) ([]ScaleNote, error) {
	scale, keyNote, err := s.engine.Scale(mode, key)
	if err != nil {
		return nil, err
	}
	names := theory.SpellScale(keyNote, scale.Notes)
	out := make([]ScaleNote, len(scale.Notes))
	for i, p := range scale.Notes {
		out[i] = ScaleNote{SeqNote: i + 1, NoteName: names[i], PitchClass: int(p)}
	}
	return out, nil
}

// Chords returns the chords with at most q.MaxDiff notes outside the scale,
// optionally restricted to chords rooted on q.ChordNote.
func (s *Service) Chords(ctx context.Context, q ChordQuery) ([]ChordDetail, error) {
	var (
		rels []relation.Relation
		err  error
	)
	if q.ChordNote != "" {
		rels, err = s.engine.MatchesForChordNote(ctx, q.Mode, q.Key, q.ChordNote, q.MaxDiff)
	} else {
		rels, err = s.engine.BoundedMatches(ctx, q.Mode, q.Key, q.MaxDiff)
	}
	if err != nil {
		return nil, err
	}

	// Lookups above already validated both names.
	scale, keyNote, err := s.engine.Scale(q.Mode, q.Key)
	if err != nil {
		return nil, err
	}
	namer := newNamer(keyNote, scale)
	if q.ChordNote != "" {
		if n, err := theory.LookupNote("chord_note", q.ChordNote); err == nil {
			namer.roots[n.PitchClass] = n
		}
	}

	out := make([]ChordDetail, len(rels))
	for i, r := range rels {
		out[i] = namer.detail(r)
	}
	return out, nil
}

// namer spells chord roots and chord notes for one key.
type namer struct {
	flats bool
	roots map[theory.PitchClass]theory.Note
}

func newNamer(key theory.Note, scale relation.Scale) *namer {
	n := &namer{
		flats: theory.PrefersFlats(key),
		roots: make(map[theory.PitchClass]theory.Note, len(scale.Notes)),
	}
	for i, name := range theory.SpellScale(key, scale.Notes) {
		if note, err := theory.LookupNote("scale", name); err == nil {
			n.roots[scale.Notes[i]] = note
		}
	}
	return n
}

func (n *namer) root(p theory.PitchClass) theory.Note {
	if note, ok := n.roots[p]; ok {
		return note
	}
	note, _ := theory.LookupNote("chord_note", theory.DisplayName(p, n.flats))
	return note
}

func (n *namer) detail(r relation.Relation) ChordDetail {
	root := n.root(r.ChordRoot)
	names := make([]string, len(r.ChordNotes))
	for i, p := range r.ChordNotes {
		name, ok := theory.SpellInterval(root, r.ChordOffsets[i])
		if !ok {
			name = theory.DisplayName(p, n.flats)
		}
		names[i] = name
	}
	return ChordDetail{
		Mode:                   r.Mode,
		KeyName:                r.KeyName,
		KeyNote:                int(r.KeyRoot),
		ChordNote:              int(r.ChordRoot),
		ChordNoteName:          root.Name,
		ChordType:              r.ChordType,
		ChordSymbol:            r.ChordSymbol,
		ChordName:              root.Name + r.ChordSymbol,
		ModeNotes:              ints(r.ScaleNotes),
		ChordNotes:             ints(r.ChordNotes),
		ChordNoteNames:         names,
		ModeChordNoteDiff:      ints(r.Diff),
		ModeChordNoteDiffCount: r.DiffCount,
	}
}

func ints(ps []theory.PitchClass) []int {
	out := make([]int, len(ps))
	for i, p := range ps {
		out[i] = int(p)
	}
	return out
}
