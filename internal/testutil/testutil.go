// Package testutil provides shared test helpers for setting up relation stores.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/chordanalyzr/internal/catalog"
	"github.com/starford/chordanalyzr/internal/index"
)

// TempDBPath returns the path of a fresh temporary file that is removed
// when the test ends.
func TempDBPath(t *testing.T) string {
	t.Helper()
	dbFile, err := os.CreateTemp("", "chordanalyzr-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })
	return dbFile.Name()
}

// TestDB creates a temporary SQLite relation store populated from cat. It is
// closed automatically.
func TestDB(t *testing.T, cat *catalog.Catalog) *index.DB {
	t.Helper()
	db, err := index.Open(TempDBPath(t))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := index.Sync(context.Background(), db, cat, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		t.Fatal(err)
	}
	return db
}
