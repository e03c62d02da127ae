package relation

import (
	"github.com/starford/chordanalyzr/internal/catalog"
	"github.com/starford/chordanalyzr/internal/theory"
)

// Relation joins one scale with one chord. Diff lists the chord notes that
// fall outside the scale, in chord order; DiffCount is len(Diff), so a chord is
// diatonic to the scale exactly when DiffCount is 0. Note slices are shared
// between relations and must be treated as read-only.
type Relation struct {
	Mode         string              `json:"mode"`
	KeyRoot      theory.PitchClass   `json:"keyRoot"`
	KeyName      string              `json:"keyName"`
	ChordType    string              `json:"chordType"`
	ChordSymbol  string              `json:"chordSymbol"`
	ChordRoot    theory.PitchClass   `json:"chordRoot"`
	ScaleNotes   []theory.PitchClass `json:"scaleNotes"`
	ChordNotes   []theory.PitchClass `json:"chordNotes"`
	ChordOffsets []int               `json:"chordOffsets"`
	Diff         []theory.PitchClass `json:"diff"`
	DiffCount    int                 `json:"diffCount"`
}

// Relate computes the relation between a scale and a chord.
func Relate(s Scale, c Chord) Relation {
	in := theory.NewSet(s.Notes)
	diff := make([]theory.PitchClass, 0, len(c.Notes))
	for _, p := range c.Notes {
		if !in.Contains(p) {
			diff = append(diff, p)
		}
	}
	return Relation{
		Mode:         s.Mode,
		KeyRoot:      s.KeyRoot,
		KeyName:      theory.DisplayName(s.KeyRoot, false),
		ChordType:    c.Type,
		ChordSymbol:  c.Symbol,
		ChordRoot:    c.Root,
		ScaleNotes:   s.Notes,
		ChordNotes:   c.Notes,
		ChordOffsets: c.Offsets,
		Diff:         diff,
		DiffCount:    len(diff),
	}
}

// BuildRelations computes one relation for every combination of mode, key
// root, chord type and chord root. Output order follows the inputs: modes
// outermost, then key roots, chord types and chord roots. The builder has no
// state, so equal inputs always give equal output.
func BuildRelations(modes []catalog.Mode, keyRoots []theory.PitchClass, chordTypes []catalog.ChordType, chordRoots []theory.PitchClass) []Relation {
	// Chords do not depend on the scale; generate them once.
	chords := make([]Chord, 0, len(chordTypes)*len(chordRoots))
	for _, ct := range chordTypes {
		for _, root := range chordRoots {
			chords = append(chords, GenerateChord(ct, root))
		}
	}

	out := make([]Relation, 0, len(modes)*len(keyRoots)*len(chords))
	for _, m := range modes {
		for _, key := range keyRoots {
			s := GenerateScale(m, key)
			for _, c := range chords {
				out = append(out, Relate(s, c))
			}
		}
	}
	return out
}
