// Package store persists assembled entity records in SQLite, the hand-off
// surface for downstream indexing. Quotes and relations are additionally
// broken out into their own tables so consumers can query lines and name
// links without unpacking record JSON.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgallion1/wikistruct/internal/structurer"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS entities (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	name TEXT NOT NULL,
	revision INTEGER NOT NULL DEFAULT 0,
	record TEXT NOT NULL,
	updated_at INTEGER NOT NULL,
	UNIQUE(kind, name)
);
CREATE TABLE IF NOT EXISTS quotes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	name TEXT NOT NULL,
	version TEXT NOT NULL,
	occasion TEXT NOT NULL,
	line TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_quotes_entity ON quotes(kind, name);
CREATE TABLE IF NOT EXISTS relations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	name TEXT NOT NULL,
	related TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_relations_entity ON relations(kind, name);
`

// Store wraps the SQLite database holding structured entities.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertEntity stores or replaces one entity record.
func (s *Store) UpsertEntity(ctx context.Context, kind, name string, revision int64, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record %s/%s: %w", kind, name, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entities (kind, name, revision, record, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(kind, name) DO UPDATE SET
			revision = excluded.revision,
			record = excluded.record,
			updated_at = excluded.updated_at`,
		kind, name, revision, string(data), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("upsert entity %s/%s: %w", kind, name, err)
	}
	return nil
}

// ReplaceQuotes replaces all quote rows for one entity.
func (s *Store) ReplaceQuotes(ctx context.Context, kind, name string, quotes map[string][]structurer.QuoteEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM quotes WHERE kind = ? AND name = ?`, kind, name); err != nil {
		return fmt.Errorf("clear quotes %s/%s: %w", kind, name, err)
	}
	for version, entries := range quotes {
		for _, q := range entries {
			if q.Line == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO quotes (kind, name, version, occasion, line) VALUES (?, ?, ?, ?, ?)`,
				kind, name, version, q.Occasion, q.Line); err != nil {
				return fmt.Errorf("insert quote %s/%s: %w", kind, name, err)
			}
		}
	}
	return tx.Commit()
}

// ReplaceRelations replaces all relation rows for one entity.
func (s *Store) ReplaceRelations(ctx context.Context, kind, name string, related []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM relations WHERE kind = ? AND name = ?`, kind, name); err != nil {
		return fmt.Errorf("clear relations %s/%s: %w", kind, name, err)
	}
	for _, r := range related {
		if r == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO relations (kind, name, related) VALUES (?, ?, ?)`,
			kind, name, r); err != nil {
			return fmt.Errorf("insert relation %s/%s: %w", kind, name, err)
		}
	}
	return tx.Commit()
}

// EntitySummary is one row of a listing.
type EntitySummary struct {
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Revision  int64  `json:"revision"`
	UpdatedAt int64  `json:"updated_at"`
}

// ListEntities returns summaries, optionally filtered by kind.
func (s *Store) ListEntities(ctx context.Context, kind string) ([]EntitySummary, error) {
	query := `SELECT kind, name, revision, updated_at FROM entities`
	var args []any
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY kind, name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	defer rows.Close()

	var out []EntitySummary
	for rows.Next() {
		var e EntitySummary
		if err := rows.Scan(&e.Kind, &e.Name, &e.Revision, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetEntity returns the record JSON and revision for one entity, or
// (nil, 0, nil) when absent.
func (s *Store) GetEntity(ctx context.Context, kind, name string) (json.RawMessage, int64, error) {
	var record string
	var revision int64
	err := s.db.QueryRowContext(ctx,
		`SELECT record, revision FROM entities WHERE kind = ? AND name = ?`,
		kind, name).Scan(&record, &revision)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("get entity %s/%s: %w", kind, name, err)
	}
	return json.RawMessage(record), revision, nil
}

// DeleteEntity removes an entity with its quotes and relations. Returns
// whether an entity row was deleted.
func (s *Store) DeleteEntity(ctx context.Context, kind, name string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM entities WHERE kind = ? AND name = ?`, kind, name)
	if err != nil {
		return false, fmt.Errorf("delete entity %s/%s: %w", kind, name, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM quotes WHERE kind = ? AND name = ?`, kind, name); err != nil {
		return false, fmt.Errorf("delete quotes %s/%s: %w", kind, name, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM relations WHERE kind = ? AND name = ?`, kind, name); err != nil {
		return false, fmt.Errorf("delete relations %s/%s: %w", kind, name, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, tx.Commit()
}
