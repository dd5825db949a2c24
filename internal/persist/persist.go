// Package persist stores durable state in sqlite: the committed layout
// configuration and saved snapshots. The in-memory collections remain the
// working state; this is the survive-a-restart layer.
package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/assetdesk/assetdesk/internal/layout"
	"github.com/assetdesk/assetdesk/internal/store"
)

// Open opens (creating if needed) the sqlite database at path.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("persist: opening %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("persist: configuring %s: %w", path, err)
	}
	return db, nil
}

// Store reads and writes the persisted tables.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateTables creates the persistence schema. Idempotent.
func (s *Store) CreateTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS layout_configs (
			context    TEXT PRIMARY KEY,
			document   TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS snapshots (
			exported_at TIMESTAMP PRIMARY KEY,
			document    TEXT NOT NULL
		);
	`)
	return err
}

// SaveLayoutConfig upserts every context's layout document.
func (s *Store) SaveLayoutConfig(ctx context.Context, cfg layout.Config) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("persist: starting transaction: %w", err)
	}
	now := time.Now().UTC()
	for key, l := range cfg {
		doc, err := json.Marshal(l)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("persist: encoding layout %s: %w", key, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO layout_configs (context, document, updated_at) VALUES (?, ?, ?)
			ON CONFLICT (context) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
			string(key), string(doc), now)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("persist: writing layout %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("persist: committing layouts: %w", err)
	}
	return nil
}

// LoadLayoutConfig reads the persisted layouts. Each document is validated
// against the layout schema before it is accepted; a document that fails
// validation fails the whole load rather than half-applying. The boolean
// reports whether anything was persisted at all.
func (s *Store) LoadLayoutConfig(ctx context.Context) (layout.Config, bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT context, document FROM layout_configs`)
	if err != nil {
		return nil, false, fmt.Errorf("persist: reading layouts: %w", err)
	}
	defer rows.Close()

	cfg := layout.Config{}
	for rows.Next() {
		var key, doc string
		if err := rows.Scan(&key, &doc); err != nil {
			return nil, false, fmt.Errorf("persist: scanning layout row: %w", err)
		}
		if err := layout.ValidateDocument([]byte(doc)); err != nil {
			return nil, false, fmt.Errorf("persist: layout %s failed schema validation: %w", key, err)
		}
		var l layout.Layout
		if err := json.Unmarshal([]byte(doc), &l); err != nil {
			return nil, false, fmt.Errorf("persist: decoding layout %s: %w", key, err)
		}
		cfg[layout.ContextKey(key)] = &l
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return cfg, len(cfg) > 0, nil
}

// SaveSnapshot stores an export document keyed by its timestamp.
func (s *Store) SaveSnapshot(ctx context.Context, snap store.Snapshot) error {
	doc, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("persist: encoding snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO snapshots (exported_at, document) VALUES (?, ?)`,
		snap.ExportedAt.UTC(), string(doc))
	if err != nil {
		return fmt.Errorf("persist: writing snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the most recent stored snapshot, if any.
func (s *Store) LatestSnapshot(ctx context.Context) (store.Snapshot, bool, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM snapshots ORDER BY exported_at DESC LIMIT 1`).Scan(&doc)
	if err == sql.ErrNoRows {
		return store.Snapshot{}, false, nil
	}
	if err != nil {
		return store.Snapshot{}, false, fmt.Errorf("persist: reading snapshot: %w", err)
	}
	var snap store.Snapshot
	if err := json.Unmarshal([]byte(doc), &snap); err != nil {
		return store.Snapshot{}, false, fmt.Errorf("persist: decoding snapshot: %w", err)
	}
	return snap, true, nil
}
