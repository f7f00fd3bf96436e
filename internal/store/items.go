package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/starford/mealprep/internal/apperr"
)

// Item kinds.
const (
	kindHousehold = "household"
	kindUser      = "user"
	kindTag       = "tag"
	kindRecipe    = "recipe"
	kindRule      = "rule"
	kindPlan      = "plan"
	kindCatalog   = "catalog"
)

func householdPK(id string) string { return "HOUSE#" + id }
func userPK(id string) string      { return "USER#" + id }

const catalogPK = "CATALOG"

// item is one row of the items table.
type item struct {
	pk, sk, kind, lookup string
}

// put inserts or replaces an item. Unique index violations map to apperr.ErrAlreadyExists.
func (db *DB) put(ctx context.Context, it item, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", it.kind, err)
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO items (pk, sk, kind, lookup, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(pk, sk) DO UPDATE SET
			lookup     = excluded.lookup,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, it.pk, it.sk, it.kind, it.lookup, string(body), time.Now().UTC())
	if err != nil {
		var sqlErr sqlite3.Error
		if errors.As(err, &sqlErr) && sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("store: put %s: %w", it.kind, apperr.ErrAlreadyExists)
		}
		return fmt.Errorf("store: put %s: %w", it.kind, err)
	}
	return nil
}

// get decodes the item at (pk, sk) into v, or returns apperr.ErrNotFound.
func (db *DB) get(ctx context.Context, pk, sk string, v any) error {
	var body string
	err := db.conn.QueryRowContext(ctx, `SELECT body FROM items WHERE pk = ? AND sk = ?`, pk, sk).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("store: get %s: %w", sk, err)
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return fmt.Errorf("store: decode %s: %w", sk, err)
	}
	return nil
}

// getByLookup decodes the first item of kind with the given lookup value.
func (db *DB) getByLookup(ctx context.Context, kind, lookup string, v any) error {
	var body string
	err := db.conn.QueryRowContext(ctx,
		`SELECT body FROM items WHERE kind = ? AND lookup = ? ORDER BY rowid LIMIT 1`, kind, lookup).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("store: lookup %s: %w", kind, err)
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return fmt.Errorf("store: decode %s: %w", kind, err)
	}
	return nil
}

// query returns the bodies of all items under pk whose sk starts with prefix,
// in insertion order.
func (db *DB) query(ctx context.Context, pk, prefix string) ([][]byte, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT body FROM items WHERE pk = ? AND substr(sk, 1, ?) = ? ORDER BY rowid`,
		pk, len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("store: query %s: %w", prefix, err)
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		out = append(out, []byte(body))
	}
	return out, rows.Err()
}

// del removes the item at (pk, sk). Missing items return apperr.ErrNotFound.
func (db *DB) del(ctx context.Context, pk, sk string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM items WHERE pk = ? AND sk = ?`, pk, sk)
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", sk, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func decodeAll[T any](bodies [][]byte) ([]T, error) {
	out := make([]T, 0, len(bodies))
	for _, b := range bodies {
		var v T
		if err := json.Unmarshal(b, &v); err != nil {
			return nil, fmt.Errorf("store: decode: %w", err)
		}
		out = append(out, v)
	}
	return out, nil
}
