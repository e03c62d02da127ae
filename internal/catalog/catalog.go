// Package catalog holds the immutable mode and chord-type reference data.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/chordanalyzr/internal/apperr"
	"github.com/starford/chordanalyzr/internal/checksum"
)

//go:embed catalog.yaml
var embedded []byte

// maxChordOffset bounds chord extensions to two octaves.
const maxChordOffset = 23

// Mode is a named scale pattern of semitone offsets from the key root.
type Mode struct {
	Name      string `yaml:"name" json:"name"`
	Intervals []int  `yaml:"intervals" json:"intervals"`
}

// Validate checks that the pattern starts at 0 and strictly increases within an octave.
func (m Mode) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Name, validation.Required),
		validation.Field(&m.Intervals,
			validation.Required,
			validation.Each(validation.Min(0), validation.Max(11)),
			validation.By(strictlyIncreasingFromZero),
		),
	)
}

// ChordType is a named set of semitone offsets from the chord root.
type ChordType struct {
	Name      string `yaml:"name" json:"name"`
	Symbol    string `yaml:"symbol" json:"symbol"`
	Intervals []int  `yaml:"intervals" json:"intervals"`
}

// Validate checks that the offsets contain the root and do not repeat.
func (c ChordType) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Intervals,
			validation.Required,
			validation.Each(validation.Min(0), validation.Max(maxChordOffset)),
			validation.By(containsRootOnce),
		),
	)
}

func strictlyIncreasingFromZero(value any) error {
	ivs, _ := value.([]int)
	if len(ivs) == 0 {
		return nil
	}
	if ivs[0] != 0 {
		return errors.New("must start at 0")
	}
	for i := 1; i < len(ivs); i++ {
		if ivs[i] <= ivs[i-1] {
			return errors.New("must be strictly increasing")
		}
	}
	return nil
}

func containsRootOnce(value any) error {
	ivs, _ := value.([]int)
	if len(ivs) == 0 {
		return nil
	}
	if !slices.Contains(ivs, 0) {
		return errors.New("must contain 0")
	}
	seen := make(map[int]struct{}, len(ivs))
	for _, iv := range ivs {
		if _, dup := seen[iv]; dup {
			return fmt.Errorf("duplicate offset %d", iv)
		}
		seen[iv] = struct{}{}
	}
	return nil
}

type document struct {
	Modes      []Mode      `yaml:"modes"`
	ChordTypes []ChordType `yaml:"chord_types"`
}

// Catalog is read-only after construction and safe for concurrent use.
type Catalog struct {
	modes       []Mode
	chordTypes  []ChordType
	modeIdx     map[string]int
	chordIdx    map[string]int
	fingerprint string
}

// Load reads the catalog from path, or the embedded catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(embedded)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data)
}

// Default returns the embedded catalog. It panics if the embedded data is invalid.
func Default() *Catalog {
	c, err := Parse(embedded)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded data: %v", err))
	}
	return c
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	return New(doc.Modes, doc.ChordTypes)
}

// New validates the records and builds a catalog ordered by name.
func New(modes []Mode, chordTypes []ChordType) (*Catalog, error) {
	if len(modes) == 0 {
		return nil, errors.New("catalog: no modes defined")
	}
	if len(chordTypes) == 0 {
		return nil, errors.New("catalog: no chord types defined")
	}

	c := &Catalog{
		modes:      make([]Mode, len(modes)),
		chordTypes: make([]ChordType, len(chordTypes)),
		modeIdx:    make(map[string]int, len(modes)),
		chordIdx:   make(map[string]int, len(chordTypes)),
	}
	for i, m := range modes {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("catalog: mode %q: %w", m.Name, err)
		}
		c.modes[i] = Mode{Name: m.Name, Intervals: slices.Clone(m.Intervals)}
	}
	for i, ct := range chordTypes {
		if err := ct.Validate(); err != nil {
			return nil, fmt.Errorf("catalog: chord type %q: %w", ct.Name, err)
		}
		c.chordTypes[i] = ChordType{Name: ct.Name, Symbol: ct.Symbol, Intervals: slices.Clone(ct.Intervals)}
	}

	// Plain byte-wise ordering on the name.
	sort.Slice(c.modes, func(i, j int) bool { return c.modes[i].Name < c.modes[j].Name })
	sort.Slice(c.chordTypes, func(i, j int) bool { return c.chordTypes[i].Name < c.chordTypes[j].Name })

	for i, m := range c.modes {
		if _, dup := c.modeIdx[m.Name]; dup {
			return nil, fmt.Errorf("catalog: duplicate mode %q", m.Name)
		}
		c.modeIdx[m.Name] = i
	}
	for i, ct := range c.chordTypes {
		if _, dup := c.chordIdx[ct.Name]; dup {
			return nil, fmt.Errorf("catalog: duplicate chord type %q", ct.Name)
		}
		c.chordIdx[ct.Name] = i
	}

	fp, err := checksum.SumJSON(document{Modes: c.modes, ChordTypes: c.chordTypes})
	if err != nil {
		return nil, fmt.Errorf("catalog: fingerprint: %w", err)
	}
	c.fingerprint = fp
	return c, nil
}

// ListModes returns all modes ordered by name.
func (c *Catalog) ListModes() []Mode {
	out := make([]Mode, len(c.modes))
	for i, m := range c.modes {
		out[i] = Mode{Name: m.Name, Intervals: slices.Clone(m.Intervals)}
	}
	return out
}

// ListChordTypes returns all chord types ordered by name.
func (c *Catalog) ListChordTypes() []ChordType {
	out := make([]ChordType, len(c.chordTypes))
	for i, ct := range c.chordTypes {
		out[i] = ChordType{Name: ct.Name, Symbol: ct.Symbol, Intervals: slices.Clone(ct.Intervals)}
	}
	return out
}

// GetMode looks a mode up by its exact name.
func (c *Catalog) GetMode(name string) (Mode, error) {
	i, ok := c.modeIdx[name]
	if !ok {
		return Mode{}, apperr.NotFound("mode", name)
	}
	m := c.modes[i]
	return Mode{Name: m.Name, Intervals: slices.Clone(m.Intervals)}, nil
}

// GetChordType looks a chord type up by its exact name.
func (c *Catalog) GetChordType(name string) (ChordType, error) {
	i, ok := c.chordIdx[name]
	if !ok {
		return ChordType{}, apperr.NotFound("chord_type", name)
	}
	ct := c.chordTypes[i]
	return ChordType{Name: ct.Name, Symbol: ct.Symbol, Intervals: slices.Clone(ct.Intervals)}, nil
}

// Fingerprint is a SHA-256 digest of the catalog contents. Two catalogs with
// the same records share a fingerprint.
func (c *Catalog) Fingerprint() string {
	return c.fingerprint
}
