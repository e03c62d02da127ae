// Package relation computes how chords relate to scales: it generates scale
// and chord notes, builds the chord/scale relation set and answers queries
// over it.
package relation

import (
	"github.com/starford/chordanalyzr/internal/catalog"
	"github.com/starford/chordanalyzr/internal/theory"
)

// Scale is a mode rooted on a key. Notes follow the mode's interval order,
// so Notes[0] is always the key root.
type Scale struct {
	Mode    string
	KeyRoot theory.PitchClass
	Notes   []theory.PitchClass
}

// Chord is a chord type rooted on a pitch class. Notes holds each pitch class
// once, in the order its first interval appears; Offsets[i] is the interval
// that produced Notes[i].
type Chord struct {
	Type    string
	Symbol  string
	Root    theory.PitchClass
	Notes   []theory.PitchClass
	Offsets []int
}

// GenerateScale builds the scale for mode rooted at keyRoot.
func GenerateScale(mode catalog.Mode, keyRoot theory.PitchClass) Scale {
	notes := make([]theory.PitchClass, len(mode.Intervals))
	for i, iv := range mode.Intervals {
		notes[i] = keyRoot.Transpose(iv)
	}
	return Scale{Mode: mode.Name, KeyRoot: theory.Normalize(int(keyRoot)), Notes: notes}
}

// GenerateChord builds the chord for ct rooted at root. Offsets that reduce to
// the same pitch class (an octave apart) contribute a single note.
func GenerateChord(ct catalog.ChordType, root theory.PitchClass) Chord {
	c := Chord{
		Type:    ct.Name,
		Symbol:  ct.Symbol,
		Root:    theory.Normalize(int(root)),
		Notes:   make([]theory.PitchClass, 0, len(ct.Intervals)),
		Offsets: make([]int, 0, len(ct.Intervals)),
	}
	var seen theory.Set
	for _, iv := range ct.Intervals {
		p := root.Transpose(iv)
		if seen.Contains(p) {
			continue
		}
		seen[p] = true
		c.Notes = append(c.Notes, p)
		c.Offsets = append(c.Offsets, iv)
	}
	return c
}
