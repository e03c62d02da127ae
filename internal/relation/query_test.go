package relation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"testing"

	"github.com/starford/chordanalyzr/internal/apperr"
	"github.com/starford/chordanalyzr/internal/catalog"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// engines returns one engine per source implementation; every query test runs
// against all of them.
func engines(t *testing.T) map[string]*Engine {
	t.Helper()
	cat := catalog.Default()
	eager, err := NewEagerCache(context.Background(), cat, discardLogger())
	if err != nil {
		t.Fatalf("NewEagerCache: %v", err)
	}
	return map[string]*Engine{
		"computed": NewEngine(cat, NewComputed(cat)),
		"eager":    NewEngine(cat, eager),
		"lazy":     NewEngine(cat, NewLazyCache(cat)),
	}
}

func TestExactMatches_CIonian(t *testing.T) {
	for name, e := range engines(t) {
		t.Run(name, func(t *testing.T) {
			rels, err := e.ExactMatches(context.Background(), "Ionian", "C")
			if err != nil {
				t.Fatal(err)
			}
			if len(rels) == 0 {
				t.Fatal("no diatonic chords")
			}
			found := map[string]bool{}
			for _, r := range rels {
				if r.DiffCount != 0 {
					t.Fatalf("non-diatonic relation %+v", r)
				}
				if r.Mode != "Ionian" || r.KeyRoot != 0 || r.KeyName != "C" {
					t.Fatalf("wrong scale on %+v", r)
				}
				found[r.ChordSymbol+"@"+r.ChordRoot.String()] = true
			}
			for _, want := range []string{"@C", "m@D", "m@E", "@F", "@G", "m@A", "dim@B", "7@G", "maj7@C"} {
				if !found[want] {
					t.Errorf("missing %s", want)
				}
			}
			if found["@D"] || found["m@C"] {
				t.Error("unexpected non-diatonic chord")
			}
		})
	}
}

func TestQueries_Ordering(t *testing.T) {
	for name, e := range engines(t) {
		t.Run(name, func(t *testing.T) {
			rels, err := e.BoundedMatches(context.Background(), "Dorian", "Eb", 2)
			if err != nil {
				t.Fatal(err)
			}
			for i := 1; i < len(rels); i++ {
				a, b := rels[i-1], rels[i]
				if a.ChordRoot > b.ChordRoot || (a.ChordRoot == b.ChordRoot && a.ChordType >= b.ChordType) {
					t.Fatalf("out of order at %d: %s/%s then %s/%s", i, a.ChordRoot, a.ChordType, b.ChordRoot, b.ChordType)
				}
			}
		})
	}
}

func TestBoundedMatches_Monotonic(t *testing.T) {
	for name, e := range engines(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			exact, err := e.ExactMatches(ctx, "Mixolydian", "g")
			if err != nil {
				t.Fatal(err)
			}
			zero, err := e.BoundedMatches(ctx, "Mixolydian", "g", 0)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(exact, zero) {
				t.Fatal("BoundedMatches(0) differs from ExactMatches")
			}

			prev := zero
			for n := 1; n <= 4; n++ {
				cur, err := e.BoundedMatches(ctx, "Mixolydian", "g", n)
				if err != nil {
					t.Fatal(err)
				}
				have := map[string]bool{}
				for _, r := range cur {
					if r.DiffCount > n {
						t.Fatalf("n=%d: relation with diffCount %d", n, r.DiffCount)
					}
					have[r.ChordType+"@"+r.ChordRoot.String()] = true
				}
				for _, r := range prev {
					if !have[r.ChordType+"@"+r.ChordRoot.String()] {
						t.Fatalf("n=%d dropped %s@%s", n, r.ChordType, r.ChordRoot)
					}
				}
				if len(cur) < len(prev) {
					t.Fatalf("n=%d shrank: %d < %d", n, len(cur), len(prev))
				}
				prev = cur
			}
		})
	}
}

func TestBoundedMatches_UnboundedReturnsEverything(t *testing.T) {
	cat := catalog.Default()
	e := NewEngine(cat, NewComputed(cat))
	rels, err := e.BoundedMatches(context.Background(), "Aeolian", "A", 100)
	if err != nil {
		t.Fatal(err)
	}
	if want := len(cat.ListChordTypes()) * 12; len(rels) != want {
		t.Errorf("len = %d, want %d", len(rels), want)
	}
}

func TestMatchesForChordNote_G(t *testing.T) {
	for name, e := range engines(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rels, err := e.MatchesForChordNote(ctx, "Ionian", "C", "G", 0)
			if err != nil {
				t.Fatal(err)
			}
			types := map[string]int{}
			for _, r := range rels {
				if r.ChordRoot != 7 || r.DiffCount != 0 {
					t.Fatalf("unexpected relation %+v", r)
				}
				types[r.ChordType]++
			}
			for ct, n := range types {
				if n != 1 {
					t.Errorf("chord type %q returned %d times", ct, n)
				}
			}
			if types["Major triad"] != 1 || types["Dominant seventh"] != 1 {
				t.Errorf("missing G or G7: %v", types)
			}
			if types["Minor triad"] != 0 || types["Major seventh"] != 0 {
				t.Errorf("non-diatonic chord present: %v", types)
			}

			exact, _ := e.ExactMatches(ctx, "Ionian", "C")
			var onG []Relation
			for _, r := range exact {
				if r.ChordRoot == 7 {
					onG = append(onG, r)
				}
			}
			if !reflect.DeepEqual(onG, rels) {
				t.Error("chord note filter disagrees with ExactMatches")
			}
		})
	}
}

func TestMatchesForChordNote_Enharmonic(t *testing.T) {
	cat := catalog.Default()
	e := NewEngine(cat, NewComputed(cat))
	ctx := context.Background()
	sharp, err := e.MatchesForChordNote(ctx, "Ionian", "F", "a#", 1)
	if err != nil {
		t.Fatal(err)
	}
	flat, err := e.MatchesForChordNote(ctx, "Ionian", "F", "Bb", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(sharp) == 0 || !reflect.DeepEqual(sharp, flat) {
		t.Errorf("A# and Bb disagree: %d vs %d", len(sharp), len(flat))
	}
}

func TestQueries_KeyNameNormalized(t *testing.T) {
	cat := catalog.Default()
	e := NewEngine(cat, NewComputed(cat))
	rels, err := e.ExactMatches(context.Background(), "Ionian", "db")
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range rels {
		if r.KeyName != "Db" || r.KeyRoot != 1 {
			t.Fatalf("key = %q/%d, want Db/1", r.KeyName, r.KeyRoot)
		}
	}
}

func TestQueries_Errors(t *testing.T) {
	cat := catalog.Default()
	e := NewEngine(cat, NewComputed(cat))
	ctx := context.Background()

	cases := []struct {
		name  string
		call  func() error
		kind  error
		field string
	}{
		{"negative max", func() error { _, err := e.BoundedMatches(ctx, "Ionian", "C", -1); return err }, apperr.ErrInvalidArgument, "max_diff"},
		{"negative max bad mode", func() error { _, err := e.BoundedMatches(ctx, "Foobar", "C", -1); return err }, apperr.ErrInvalidArgument, "max_diff"},
		{"negative max chord note", func() error { _, err := e.MatchesForChordNote(ctx, "Ionian", "C", "G", -1); return err }, apperr.ErrInvalidArgument, "max_diff"},
		{"unknown mode", func() error { _, err := e.ExactMatches(ctx, "Foobar", "C"); return err }, apperr.ErrNotFound, "mode"},
		{"unknown mode bad key", func() error { _, err := e.ExactMatches(ctx, "Foobar", "H"); return err }, apperr.ErrNotFound, "mode"},
		{"unknown key", func() error { _, err := e.ExactMatches(ctx, "Ionian", "H"); return err }, apperr.ErrUnknownNoteName, "key"},
		{"malformed key", func() error { _, err := e.BoundedMatches(ctx, "Ionian", "c#b", 1); return err }, apperr.ErrUnknownNoteName, "key"},
		{"unknown chord note", func() error { _, err := e.MatchesForChordNote(ctx, "Ionian", "C", "X", 0); return err }, apperr.ErrUnknownNoteName, "chord_note"},
	}
	for _, c := range cases {
		err := c.call()
		if !errors.Is(err, c.kind) {
			t.Errorf("%s: err = %v, want %v", c.name, err, c.kind)
			continue
		}
		if apperr.Field(err) != c.field {
			t.Errorf("%s: field = %q, want %q", c.name, apperr.Field(err), c.field)
		}
	}
}

func TestScale(t *testing.T) {
	cat := catalog.Default()
	e := NewEngine(cat, NewComputed(cat))
	s, key, err := e.Scale("Aeolian", "a")
	if err != nil {
		t.Fatal(err)
	}
	if key.Name != "A" || s.KeyRoot != 9 || len(s.Notes) != 7 || s.Notes[2] != 0 {
		t.Errorf("A Aeolian = %+v (key %+v)", s, key)
	}
}

func TestSources_Agree(t *testing.T) {
	all := engines(t)
	ctx := context.Background()
	want, err := all["computed"].BoundedMatches(ctx, "Harmonic Minor", "F#", 3)
	if err != nil {
		t.Fatal(err)
	}
	for name, e := range all {
		got, err := e.BoundedMatches(ctx, "Harmonic Minor", "F#", 3)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("%s disagrees with computed source", name)
		}
	}
}

func TestLazyCache_ConcurrentReaders(t *testing.T) {
	cat := catalog.Default()
	lazy := NewLazyCache(cat)
	e := NewEngine(cat, lazy)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.ExactMatches(context.Background(), "Lydian", "D"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	if lazy.Len() != 1 {
		t.Errorf("shards = %d, want 1", lazy.Len())
	}
}

func TestEagerCache_Len(t *testing.T) {
	cat := catalog.Default()
	c, err := NewEagerCache(context.Background(), cat, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if want := len(cat.ListModes()) * 144 * len(cat.ListChordTypes()); c.Len() != want {
		t.Errorf("Len = %d, want %d", c.Len(), want)
	}
}

func TestEagerCache_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewEagerCache(ctx, catalog.Default(), discardLogger()); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestEagerCache_UnknownMode(t *testing.T) {
	c, err := NewEagerCache(context.Background(), catalog.Default(), discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Relations(context.Background(), catalog.Mode{Name: "Foobar"}, 0)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
