// Package index materializes the chord/scale relation set into SQLite so it
// can be served without recomputation and queried from outside the process.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS modes (
	name      TEXT PRIMARY KEY,
	intervals TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS chord_types (
	name      TEXT PRIMARY KEY,
	symbol    TEXT NOT NULL DEFAULT '',
	intervals TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS relations (
	mode          TEXT    NOT NULL REFERENCES modes(name) ON DELETE CASCADE,
	key_root      INTEGER NOT NULL,
	key_name      TEXT    NOT NULL,
	chord_type    TEXT    NOT NULL REFERENCES chord_types(name) ON DELETE CASCADE,
	chord_symbol  TEXT    NOT NULL DEFAULT '',
	chord_root    INTEGER NOT NULL,
	scale_notes   TEXT    NOT NULL,
	chord_notes   TEXT    NOT NULL,
	chord_offsets TEXT    NOT NULL,
	diff          TEXT    NOT NULL,
	diff_count    INTEGER NOT NULL,
	PRIMARY KEY (mode, key_root, chord_type, chord_root)
);

CREATE INDEX IF NOT EXISTS idx_relations_diff ON relations(mode, key_root, diff_count);
CREATE INDEX IF NOT EXISTS idx_relations_root ON relations(mode, key_root, chord_root);
`

// DB wraps a sql.DB holding a materialized relation set.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
