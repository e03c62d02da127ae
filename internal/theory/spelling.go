package theory

// letterSteps maps a chord offset (up to two octaves) to the number of letter
// names it spans. Six semitones reads as a flat fifth and eight as a sharp
// fifth; above the octave, fifteen is a sharp ninth and eighteen a sharp eleventh.
var letterSteps = [2 * Semitones]int{
	0, 1, 1, 2, 2, 3, 4, 4, 4, 5, 6, 6,
	0, 1, 1, 1, 2, 3, 3, 4, 4, 5, 6, 6,
}

func letterIndex(letter string) int {
	for i, l := range letters {
		if l == letter {
			return i
		}
	}
	return 0
}

// spellWithLetter names p using the given letter, or reports false when that
// would need more than a double accidental.
func spellWithLetter(letter string, p PitchClass) (string, bool) {
	shift := Interval(naturalPitch[letter], p)
	if shift > Semitones/2 {
		shift -= Semitones
	}
	for _, a := range accidentals {
		if a.shift == shift {
			return letter + a.suffix, true
		}
	}
	return "", false
}

// SpellScale names the notes of a scale rooted at key. Seven-note scales use
// one letter per degree starting from the key's letter; anything else, and any
// degree that cannot be spelled that way, falls back to key-context names.
func SpellScale(key Note, notes []PitchClass) []string {
	flats := PrefersFlats(key)
	start := letterIndex(key.Letter)
	out := make([]string, len(notes))
	for i, p := range notes {
		if i == 0 && p == key.PitchClass {
			out[i] = key.Name
			continue
		}
		if len(notes) == len(letters) {
			if name, ok := spellWithLetter(letters[(start+i)%len(letters)], p); ok {
				out[i] = name
				continue
			}
		}
		out[i] = DisplayName(p, flats)
	}
	return out
}

// SpellInterval names the note that lies semitones above root, choosing the
// letter implied by the interval. It reports false when the result would need
// more than a double accidental.
func SpellInterval(root Note, semitones int) (string, bool) {
	if semitones < 0 {
		return "", false
	}
	steps := letterSteps[semitones%len(letterSteps)]
	letter := letters[(letterIndex(root.Letter)+steps)%len(letters)]
	return spellWithLetter(letter, root.PitchClass.Transpose(semitones))
}
