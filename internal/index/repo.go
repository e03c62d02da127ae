package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/chordanalyzr/internal/apperr"
	"github.com/starford/chordanalyzr/internal/catalog"
	"github.com/starford/chordanalyzr/internal/relation"
	"github.com/starford/chordanalyzr/internal/theory"
)

const (
	metaFingerprint    = "catalog_fingerprint"
	metaMaterializedAt = "materialized_at"
)

const selectRelationSQL = `
	SELECT mode, key_root, key_name, chord_type, chord_symbol, chord_root,
	       scale_notes, chord_notes, chord_offsets, diff, diff_count
	FROM relations`

// Materialize replaces the stored relation set with rels inside a single
// transaction and records the fingerprint of cat alongside it.
func (db *DB) Materialize(ctx context.Context, cat *catalog.Catalog, rels []relation.Relation) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	for _, q := range []string{`DELETE FROM relations`, `DELETE FROM modes`, `DELETE FROM chord_types`} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("index: clear: %w", err)
		}
	}

	modeStmt, err := tx.PrepareContext(ctx, `INSERT INTO modes (name, intervals) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare mode insert: %w", err)
	}
	defer modeStmt.Close()
	for _, m := range cat.ListModes() {
		ivs, _ := json.Marshal(m.Intervals)
		if _, err := modeStmt.ExecContext(ctx, m.Name, string(ivs)); err != nil {
			return fmt.Errorf("index: insert mode %q: %w", m.Name, err)
		}
	}

	ctStmt, err := tx.PrepareContext(ctx, `INSERT INTO chord_types (name, symbol, intervals) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare chord type insert: %w", err)
	}
	defer ctStmt.Close()
	for _, ct := range cat.ListChordTypes() {
		ivs, _ := json.Marshal(ct.Intervals)
		if _, err := ctStmt.ExecContext(ctx, ct.Name, ct.Symbol, string(ivs)); err != nil {
			return fmt.Errorf("index: insert chord type %q: %w", ct.Name, err)
		}
	}

	relStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO relations (mode, key_root, key_name, chord_type, chord_symbol, chord_root,
		                       scale_notes, chord_notes, chord_offsets, diff, diff_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare relation insert: %w", err)
	}
	defer relStmt.Close()
	for _, r := range rels {
		scale, _ := json.Marshal(r.ScaleNotes)
		chord, _ := json.Marshal(r.ChordNotes)
		offsets, _ := json.Marshal(r.ChordOffsets)
		diff, _ := json.Marshal(r.Diff)
		if _, err := relStmt.ExecContext(ctx,
			r.Mode, int(r.KeyRoot), r.KeyName, r.ChordType, r.ChordSymbol, int(r.ChordRoot),
			string(scale), string(chord), string(offsets), string(diff), r.DiffCount,
		); err != nil {
			return fmt.Errorf("index: insert relation %s/%s/%s/%s: %w", r.Mode, r.KeyRoot, r.ChordType, r.ChordRoot, err)
		}
	}

	for k, v := range map[string]string{
		metaFingerprint:    cat.Fingerprint(),
		metaMaterializedAt: time.Now().UTC().Format(time.RFC3339),
	} {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO meta (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, k, v); err != nil {
			return fmt.Errorf("index: write meta %s: %w", k, err)
		}
	}

	return tx.Commit()
}

// Fingerprint returns the catalog fingerprint recorded by the last
// Materialize, or empty string if nothing has been materialized.
func (db *DB) Fingerprint(ctx context.Context) (string, error) {
	var fp string
	err := db.conn.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, metaFingerprint).Scan(&fp)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: fingerprint: %w", err)
	}
	return fp, nil
}

// Count returns the number of stored relations.
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM relations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}

// Relations implements relation.Source.
func (db *DB) Relations(ctx context.Context, mode catalog.Mode, keyRoot theory.PitchClass) ([]relation.Relation, error) {
	rels, err := db.query(ctx, selectRelationSQL+` WHERE mode = ? AND key_root = ? ORDER BY chord_type, chord_root`,
		mode.Name, int(keyRoot))
	if err != nil {
		return nil, err
	}
	if len(rels) == 0 {
		return nil, apperr.NotFound("mode", mode.Name)
	}
	return rels, nil
}

// RelationsForRoot implements relation.RootSource.
func (db *DB) RelationsForRoot(ctx context.Context, mode catalog.Mode, keyRoot, chordRoot theory.PitchClass) ([]relation.Relation, error) {
	return db.query(ctx, selectRelationSQL+` WHERE mode = ? AND key_root = ? AND chord_root = ? ORDER BY chord_type`,
		mode.Name, int(keyRoot), int(chordRoot))
}

func (db *DB) query(ctx context.Context, q string, args ...any) ([]relation.Relation, error) {
	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("index: query relations: %w", err)
	}
	defer rows.Close()

	var out []relation.Relation
	for rows.Next() {
		var (
			r                             relation.Relation
			keyRoot, chordRoot            int
			scale, chord, offsets, diffJS string
		)
		if err := rows.Scan(&r.Mode, &keyRoot, &r.KeyName, &r.ChordType, &r.ChordSymbol, &chordRoot,
			&scale, &chord, &offsets, &diffJS, &r.DiffCount); err != nil {
			return nil, err
		}
		r.KeyRoot = theory.PitchClass(keyRoot)
		r.ChordRoot = theory.PitchClass(chordRoot)
		if err := decodeColumns(&r, scale, chord, offsets, diffJS); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func decodeColumns(r *relation.Relation, scale, chord, offsets, diff string) error {
	for _, c := range []struct {
		raw string
		dst any
	}{
		{scale, &r.ScaleNotes},
		{chord, &r.ChordNotes},
		{offsets, &r.ChordOffsets},
		{diff, &r.Diff},
	} {
		if err := json.Unmarshal([]byte(c.raw), c.dst); err != nil {
			return fmt.Errorf("index: decode relation %s/%s: %w", r.Mode, r.ChordType, err)
		}
	}
	return nil
}
