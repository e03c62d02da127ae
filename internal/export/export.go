// Package export writes the static JSON data set consumed by offline
// frontends: the mode list, spelled scales and diatonic chords per mode, and
// an index with file checksums.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/chordanalyzr/internal/catalog"
	"github.com/starford/chordanalyzr/internal/checksum"
	"github.com/starford/chordanalyzr/internal/chordservice"
	"github.com/starford/chordanalyzr/internal/storage"
	"github.com/starford/chordanalyzr/internal/theory"
)

// IndexFile is the name of the manifest written last.
const IndexFile = "index.json"

// FileEntry describes one exported file in the manifest.
type FileEntry struct {
	Name     string `json:"name"`
	Checksum string `json:"checksum"`
	Size     int    `json:"size"`
}

// Manifest is the content of index.json.
type Manifest struct {
	GeneratedAt time.Time   `json:"generatedAt"`
	Modes       []string    `json:"modes"`
	Keys        []string    `json:"keys"`
	Files       []FileEntry `json:"files"`
}

// Exporter renders the data set through a storage provider.
type Exporter struct {
	svc    *chordservice.Service
	store  storage.Provider
	logger *slog.Logger
	now    func() time.Time
}

// New creates an exporter.
func New(svc *chordservice.Service, store storage.Provider, logger *slog.Logger) *Exporter {
	return &Exporter{svc: svc, store: store, logger: logger, now: time.Now}
}

// Slug turns a mode name into a file-name fragment: "Harmonic Minor" becomes
// "harmonic-minor".
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// ExportKeys returns the key names included in the export: every name with at
// most one accidental except B#, Cb, E# and Fb.
func ExportKeys() []string {
	skip := map[string]bool{"B#": true, "Cb": true, "E#": true, "Fb": true}
	var out []string
	for _, n := range theory.Notes() {
		if strings.HasSuffix(n.Name, "##") || strings.HasSuffix(n.Name, "bb") || skip[n.Name] {
			continue
		}
		out = append(out, n.Name)
	}
	return out
}

// Run writes modes.json, one scales and one chords file per mode, and finally
// index.json. Files from earlier runs that are no longer produced are removed.
func (e *Exporter) Run(ctx context.Context) (*Manifest, error) {
	start := e.now()
	modes := e.svc.ListModes(ctx)
	keys := ExportKeys()

	var (
		mu    sync.Mutex
		files []FileEntry
	)
	write := func(name string, v any) error {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("export: encode %s: %w", name, err)
		}
		if err := e.store.Write(name, data); err != nil {
			return err
		}
		mu.Lock()
		files = append(files, FileEntry{Name: name, Checksum: checksum.Sum(data), Size: len(data)})
		mu.Unlock()
		return nil
	}

	if err := write("modes.json", modes); err != nil {
		return nil, err
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, m := range modes {
		g.Go(func() error {
			return e.exportMode(gCtx, m, keys, write)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = m.Name
	}
	manifest := &Manifest{GeneratedAt: start.UTC(), Modes: names, Keys: keys, Files: files}
	if err := write(IndexFile, manifest); err != nil {
		return nil, err
	}

	if err := e.removeStale(files); err != nil {
		return nil, err
	}

	e.logger.Info("export: data written",
		slog.Int("modes", len(modes)),
		slog.Int("files", len(files)),
		slog.Duration("duration", e.now().Sub(start)))
	return manifest, nil
}

func (e *Exporter) exportMode(ctx context.Context, m catalog.Mode, keys []string, write func(string, any) error) error {
	scales := make(map[string][]chordservice.ScaleNote, len(keys))
	var chords []chordservice.ChordDetail
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		notes, err := e.svc.Scale(ctx, m.Name, key)
		if err != nil {
			return fmt.Errorf("export: scale %s %s: %w", key, m.Name, err)
		}
		scales[key] = notes

		cs, err := e.svc.Chords(ctx, chordservice.ChordQuery{Mode: m.Name, Key: key})
		if err != nil {
			return fmt.Errorf("export: chords %s %s: %w", key, m.Name, err)
		}
		chords = append(chords, cs...)
	}

	slug := Slug(m.Name)
	if err := write("scales-"+slug+".json", scales); err != nil {
		return err
	}
	return write("chords-"+slug+".json", chords)
}

// removeStale deletes JSON files not produced by this run.
func (e *Exporter) removeStale(files []FileEntry) error {
	keep := make(map[string]bool, len(files)+1)
	keep[IndexFile] = true
	for _, f := range files {
		keep[f.Name] = true
	}
	existing, err := e.store.List("", ".json")
	if err != nil {
		return err
	}
	for _, f := range existing {
		if keep[f.Path] {
			continue
		}
		if err := e.store.Delete(f.Path); err != nil {
			return err
		}
		e.logger.Debug("export: removed stale file", slog.String("path", f.Path))
	}
	return nil
}
