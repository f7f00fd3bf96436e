// Package store persists households and their data in a single SQLite table.
//
// Every record is an item addressed by (pk, sk): household-scoped records share
// pk "HOUSE#<id>" and are told apart by an sk prefix (TAG#, RECIPE#, RULE#, WEEK#).
// The body column holds the record as JSON.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS items (
	pk         TEXT NOT NULL,
	sk         TEXT NOT NULL,
	kind       TEXT NOT NULL,
	lookup     TEXT NOT NULL DEFAULT '',
	body       TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (pk, sk)
);

CREATE INDEX IF NOT EXISTS idx_items_kind_lookup ON items(kind, lookup);
CREATE UNIQUE INDEX IF NOT EXISTS idx_items_tag_name ON items(pk, lookup) WHERE kind = 'tag';
CREATE UNIQUE INDEX IF NOT EXISTS idx_items_user_email ON items(lookup) WHERE kind = 'user';
`

// DB wraps a sql.DB with item operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// PingContext checks that the database is reachable.
func (db *DB) PingContext(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}
