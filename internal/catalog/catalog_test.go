package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/chordanalyzr/internal/apperr"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c := Default()
	if len(c.ListModes()) < 7 {
		t.Errorf("modes = %d, want at least the seven diatonic modes", len(c.ListModes()))
	}
	if len(c.ListChordTypes()) == 0 {
		t.Error("no chord types")
	}
	if c.Fingerprint() == "" {
		t.Error("empty fingerprint")
	}
}

func TestListModes_SortedByName(t *testing.T) {
	modes := Default().ListModes()
	for i := 1; i < len(modes); i++ {
		if modes[i-1].Name >= modes[i].Name {
			t.Fatalf("modes not sorted: %q before %q", modes[i-1].Name, modes[i].Name)
		}
	}
	if modes[0].Name != "Aeolian" {
		t.Errorf("first mode = %q, want Aeolian", modes[0].Name)
	}
}

func TestListChordTypes_SortedByName(t *testing.T) {
	cts := Default().ListChordTypes()
	for i := 1; i < len(cts); i++ {
		if cts[i-1].Name >= cts[i].Name {
			t.Fatalf("chord types not sorted: %q before %q", cts[i-1].Name, cts[i].Name)
		}
	}
}

func TestDiatonicModes(t *testing.T) {
	c := Default()
	want := map[string][]int{
		"Ionian":     {0, 2, 4, 5, 7, 9, 11},
		"Dorian":     {0, 2, 3, 5, 7, 9, 10},
		"Phrygian":   {0, 1, 3, 5, 7, 8, 10},
		"Lydian":     {0, 2, 4, 6, 7, 9, 11},
		"Mixolydian": {0, 2, 4, 5, 7, 9, 10},
		"Aeolian":    {0, 2, 3, 5, 7, 8, 10},
		"Locrian":    {0, 1, 3, 5, 6, 8, 10},
	}
	for name, ivs := range want {
		m, err := c.GetMode(name)
		if err != nil {
			t.Fatalf("GetMode(%q): %v", name, err)
		}
		if len(m.Intervals) != len(ivs) {
			t.Fatalf("%s intervals = %v, want %v", name, m.Intervals, ivs)
		}
		for i := range ivs {
			if m.Intervals[i] != ivs[i] {
				t.Errorf("%s intervals = %v, want %v", name, m.Intervals, ivs)
				break
			}
		}
	}
}

func TestGetChordType(t *testing.T) {
	ct, err := Default().GetChordType("Major triad")
	if err != nil {
		t.Fatal(err)
	}
	if ct.Symbol != "" || len(ct.Intervals) != 3 || ct.Intervals[1] != 4 || ct.Intervals[2] != 7 {
		t.Errorf("Major triad = %+v", ct)
	}
	dom, err := Default().GetChordType("Dominant seventh")
	if err != nil {
		t.Fatal(err)
	}
	if dom.Symbol != "7" {
		t.Errorf("dominant seventh symbol = %q", dom.Symbol)
	}
}

func TestGetMode_NotFound(t *testing.T) {
	_, err := Default().GetMode("Foobar")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if apperr.Field(err) != "mode" {
		t.Errorf("field = %q", apperr.Field(err))
	}
	// Lookup is exact; case variants are distinct names.
	if _, err := Default().GetMode("ionian"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("lower-case lookup err = %v", err)
	}
}

func TestGetChordType_NotFound(t *testing.T) {
	_, err := Default().GetChordType("Hyper triad")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListModes_ReturnsCopies(t *testing.T) {
	c := Default()
	modes := c.ListModes()
	modes[0].Intervals[1] = 99
	again := c.ListModes()
	if again[0].Intervals[1] == 99 {
		t.Error("catalog mutated through returned slice")
	}
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"not zero based": `
modes: [{name: Bad, intervals: [1, 2, 3]}]
chord_types: [{name: Major triad, intervals: [0, 4, 7]}]`,
		"not increasing": `
modes: [{name: Bad, intervals: [0, 4, 2]}]
chord_types: [{name: Major triad, intervals: [0, 4, 7]}]`,
		"out of octave": `
modes: [{name: Bad, intervals: [0, 12]}]
chord_types: [{name: Major triad, intervals: [0, 4, 7]}]`,
		"chord without root": `
modes: [{name: Good, intervals: [0, 2]}]
chord_types: [{name: Rootless, intervals: [4, 7]}]`,
		"duplicate chord offset": `
modes: [{name: Good, intervals: [0, 2]}]
chord_types: [{name: Doubled, intervals: [0, 4, 4]}]`,
		"duplicate mode": `
modes: [{name: Same, intervals: [0, 2]}, {name: Same, intervals: [0, 3]}]
chord_types: [{name: Major triad, intervals: [0, 4, 7]}]`,
		"missing name": `
modes: [{intervals: [0, 2]}]
chord_types: [{name: Major triad, intervals: [0, 4, 7]}]`,
		"no chord types": `
modes: [{name: Good, intervals: [0, 2]}]`,
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := `
modes:
  - {name: Tiny, intervals: [0, 7]}
chord_types:
  - {name: Power chord, symbol: "5", intervals: [0, 7]}
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.ListModes()) != 1 || c.ListModes()[0].Name != "Tiny" {
		t.Errorf("modes = %+v", c.ListModes())
	}
	if c.Fingerprint() == Default().Fingerprint() {
		t.Error("different catalogs share a fingerprint")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "catalog: read") {
		t.Errorf("err = %v", err)
	}
}
