package theory

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/starford/chordanalyzr/internal/apperr"
)

// Note is a named pitch class. Several notes share a pitch class (C# and Db).
type Note struct {
	PitchClass PitchClass `json:"pitchClass"`
	Letter     string     `json:"letter"`
	Name       string     `json:"name"`
}

var (
	letters      = []string{"C", "D", "E", "F", "G", "A", "B"}
	naturalPitch = map[string]PitchClass{"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11}
	accidentals  = []struct {
		suffix string
		shift  int
	}{
		{"bb", -2}, {"b", -1}, {"", 0}, {"#", 1}, {"##", 2},
	}

	canonicalNames = [Semitones]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	flatNames      = [Semitones]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}

	// naming is the full spelling table keyed by normalized name.
	naming = buildNaming()
)

func buildNaming() map[string]Note {
	out := make(map[string]Note, len(letters)*len(accidentals))
	for _, l := range letters {
		for _, a := range accidentals {
			name := l + a.suffix
			out[name] = Note{
				PitchClass: Normalize(int(naturalPitch[l]) + a.shift),
				Letter:     l,
				Name:       name,
			}
		}
	}
	return out
}

// NormalizeName trims the input, upper-cases the first character and
// lower-cases the rest, so "c#" becomes "C#" and "DB" becomes "Db".
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + strings.ToLower(name[size:])
}

// LookupNote resolves a note name through the naming table. field names the
// request parameter for error reporting.
func LookupNote(field, name string) (Note, error) {
	n, ok := naming[NormalizeName(name)]
	if !ok {
		return Note{}, apperr.UnknownNoteName(field, name)
	}
	return n, nil
}

// Notes returns every entry of the naming table, ordered by pitch class and
// then by accidental from flattest to sharpest.
func Notes() []Note {
	out := make([]Note, 0, len(naming))
	for _, l := range letters {
		for _, a := range accidentals {
			out = append(out, naming[l+a.suffix])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PitchClass != out[j].PitchClass {
			return out[i].PitchClass < out[j].PitchClass
		}
		return accidentalRank(out[i]) < accidentalRank(out[j])
	})
	return out
}

func accidentalRank(n Note) int {
	suffix := strings.TrimPrefix(n.Name, n.Letter)
	for i, a := range accidentals {
		if a.suffix == suffix {
			return i
		}
	}
	return len(accidentals)
}

// DisplayName returns the canonical name of p, preferring flats when asked.
func DisplayName(p PitchClass, preferFlats bool) string {
	p = Normalize(int(p))
	if preferFlats {
		return flatNames[p]
	}
	return canonicalNames[p]
}

// PrefersFlats reports whether names in the context of key should be spelled
// with flats.
func PrefersFlats(key Note) bool {
	return strings.HasSuffix(key.Name, "b")
}
