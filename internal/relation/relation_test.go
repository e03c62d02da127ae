package relation

import (
	"reflect"
	"testing"

	"github.com/starford/chordanalyzr/internal/catalog"
	"github.com/starford/chordanalyzr/internal/theory"
)

func mustMode(t *testing.T, name string) catalog.Mode {
	t.Helper()
	m, err := catalog.Default().GetMode(name)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func mustChordType(t *testing.T, name string) catalog.ChordType {
	t.Helper()
	ct, err := catalog.Default().GetChordType(name)
	if err != nil {
		t.Fatal(err)
	}
	return ct
}

func TestGenerateScale_CIonian(t *testing.T) {
	s := GenerateScale(mustMode(t, "Ionian"), 0)
	want := []theory.PitchClass{0, 2, 4, 5, 7, 9, 11}
	if !reflect.DeepEqual(s.Notes, want) {
		t.Errorf("C Ionian = %v, want %v", s.Notes, want)
	}
}

func TestGenerateScale_Properties(t *testing.T) {
	for _, m := range catalog.Default().ListModes() {
		for _, key := range theory.All() {
			s := GenerateScale(m, key)
			if len(s.Notes) != len(m.Intervals) {
				t.Fatalf("%s/%d: len = %d, want %d", m.Name, key, len(s.Notes), len(m.Intervals))
			}
			if s.Notes[0] != key {
				t.Fatalf("%s/%d: first note = %d", m.Name, key, s.Notes[0])
			}
			seen := theory.Set{}
			for _, p := range s.Notes {
				if p < 0 || p > 11 {
					t.Fatalf("%s/%d: out of range note %d", m.Name, key, p)
				}
				if seen.Contains(p) {
					t.Fatalf("%s/%d: repeated note %d", m.Name, key, p)
				}
				seen[p] = true
			}
		}
	}
}

func TestGenerateChord_Properties(t *testing.T) {
	for _, ct := range catalog.Default().ListChordTypes() {
		for _, root := range theory.All() {
			c := GenerateChord(ct, root)
			if len(c.Notes) > len(ct.Intervals) {
				t.Fatalf("%s/%d: %d notes from %d intervals", ct.Name, root, len(c.Notes), len(ct.Intervals))
			}
			if len(c.Notes) != len(c.Offsets) {
				t.Fatalf("%s/%d: notes and offsets differ in length", ct.Name, root)
			}
			if c.Notes[0] != root {
				t.Fatalf("%s/%d: chord does not start on its root", ct.Name, root)
			}
			seen := theory.Set{}
			for _, p := range c.Notes {
				if seen.Contains(p) {
					t.Fatalf("%s/%d: duplicate note %d", ct.Name, root, p)
				}
				seen[p] = true
			}
		}
	}
}

func TestGenerateChord_FoldsOctaves(t *testing.T) {
	ct := catalog.ChordType{Name: "Octave", Intervals: []int{0, 12, 7, 19}}
	c := GenerateChord(ct, 2)
	if !reflect.DeepEqual(c.Notes, []theory.PitchClass{2, 9}) {
		t.Errorf("notes = %v", c.Notes)
	}
	if !reflect.DeepEqual(c.Offsets, []int{0, 7}) {
		t.Errorf("offsets = %v", c.Offsets)
	}
}

func TestRelate_DiatonicAndForeign(t *testing.T) {
	scale := GenerateScale(mustMode(t, "Ionian"), 0)
	major := mustChordType(t, "Major triad")

	g := Relate(scale, GenerateChord(major, 7))
	if !reflect.DeepEqual(g.ChordNotes, []theory.PitchClass{7, 11, 2}) {
		t.Errorf("G major notes = %v", g.ChordNotes)
	}
	if g.DiffCount != 0 || len(g.Diff) != 0 {
		t.Errorf("G major diff = %v (%d), want none", g.Diff, g.DiffCount)
	}

	fs := Relate(scale, GenerateChord(major, 6))
	if !reflect.DeepEqual(fs.ChordNotes, []theory.PitchClass{6, 10, 1}) {
		t.Errorf("F# major notes = %v", fs.ChordNotes)
	}
	if fs.DiffCount != 3 || !reflect.DeepEqual(fs.Diff, []theory.PitchClass{6, 10, 1}) {
		t.Errorf("F# major diff = %v (%d), want 3", fs.Diff, fs.DiffCount)
	}

	d := Relate(scale, GenerateChord(major, 2))
	if d.DiffCount != 1 || d.Diff[0] != 6 {
		t.Errorf("D major diff = %v, want [6]", d.Diff)
	}
}

func TestBuildRelations_Invariants(t *testing.T) {
	cat := catalog.Default()
	rels := BuildRelations(cat.ListModes(), theory.All(), cat.ListChordTypes(), theory.All())

	want := len(cat.ListModes()) * 12 * len(cat.ListChordTypes()) * 12
	if len(rels) != want {
		t.Fatalf("len = %d, want %d", len(rels), want)
	}
	for _, r := range rels {
		scale := theory.NewSet(r.ScaleNotes)
		subset := true
		var diff []theory.PitchClass
		for _, p := range r.ChordNotes {
			if !scale.Contains(p) {
				subset = false
				diff = append(diff, p)
			}
		}
		if (r.DiffCount == 0) != subset {
			t.Fatalf("%+v: diffCount/subset mismatch", r)
		}
		if r.DiffCount != len(r.Diff) || len(diff) != len(r.Diff) {
			t.Fatalf("%+v: diff = %v, want %v", r, r.Diff, diff)
		}
		for i := range diff {
			if diff[i] != r.Diff[i] {
				t.Fatalf("%+v: diff = %v, want %v", r, r.Diff, diff)
			}
		}
	}
}

func TestBuildRelations_Deterministic(t *testing.T) {
	cat := catalog.Default()
	a := BuildRelations(cat.ListModes(), theory.All(), cat.ListChordTypes(), theory.All())
	b := BuildRelations(cat.ListModes(), theory.All(), cat.ListChordTypes(), theory.All())
	if !reflect.DeepEqual(a, b) {
		t.Fatal("two builds with equal inputs differ")
	}
}

func TestBuildRelations_InputOrder(t *testing.T) {
	modes := []catalog.Mode{mustMode(t, "Lydian"), mustMode(t, "Dorian")}
	cts := []catalog.ChordType{mustChordType(t, "Minor triad"), mustChordType(t, "Major triad")}
	rels := BuildRelations(modes, []theory.PitchClass{5, 0}, cts, []theory.PitchClass{3, 1})
	if len(rels) != 16 {
		t.Fatalf("len = %d", len(rels))
	}
	first, last := rels[0], rels[len(rels)-1]
	if first.Mode != "Lydian" || first.KeyRoot != 5 || first.ChordType != "Minor triad" || first.ChordRoot != 3 {
		t.Errorf("first = %+v", first)
	}
	if last.Mode != "Dorian" || last.KeyRoot != 0 || last.ChordType != "Major triad" || last.ChordRoot != 1 {
		t.Errorf("last = %+v", last)
	}
}

func TestBuildRelations_Empty(t *testing.T) {
	if rels := BuildRelations(nil, theory.All(), nil, theory.All()); len(rels) != 0 {
		t.Errorf("len = %d, want 0", len(rels))
	}
}
