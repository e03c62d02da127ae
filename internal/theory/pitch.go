// Package theory implements the twelve-tone pitch-class space and the note
// naming table used to resolve and display note names.
package theory

// Semitones is the size of the pitch-class space.
const Semitones = 12

// PitchClass is one of the twelve equal-tempered pitch classes, 0 (C) to 11 (B).
type PitchClass int

// Normalize maps any integer onto the pitch-class space.
func Normalize(n int) PitchClass {
	return PitchClass(((n % Semitones) + Semitones) % Semitones)
}

// Interval returns the ascending semitone distance from a to b.
func Interval(a, b PitchClass) int {
	return int(Normalize(int(b) - int(a)))
}

// Transpose returns p moved by the given number of semitones.
func (p PitchClass) Transpose(semitones int) PitchClass {
	return Normalize(int(p) + semitones)
}

// String returns the canonical (sharp) name of the pitch class.
func (p PitchClass) String() string {
	return canonicalNames[Normalize(int(p))]
}

// All returns the twelve pitch classes in ascending order.
func All() []PitchClass {
	out := make([]PitchClass, Semitones)
	for i := range out {
		out[i] = PitchClass(i)
	}
	return out
}

// Set is a fixed-size membership table over the pitch-class space.
type Set [Semitones]bool

// NewSet builds a set from the given pitch classes.
func NewSet(pcs []PitchClass) Set {
	var s Set
	for _, p := range pcs {
		s[Normalize(int(p))] = true
	}
	return s
}

// Contains reports whether p is a member of s.
func (s Set) Contains(p PitchClass) bool {
	return s[Normalize(int(p))]
}
