// Package activity maintains the activity feed: a queryable projection of
// domain events keyed by the entity they touch. The feed is observability
// data only; the per-asset assignment history on the entities themselves is
// the audit source of truth.
package activity

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/assetdesk/assetdesk/internal/types"
)

// Store is the interface for reading and writing activity entries.
type Store interface {
	// WriteEntries writes one or more activity entries.
	WriteEntries(ctx context.Context, entries []types.ActivityEntry) error

	// QueryByEntity returns activity entries for a specific entity.
	QueryByEntity(ctx context.Context, entityType, entityID string, opts QueryOptions) ([]types.ActivityEntry, error)

	// Search matches the query against entry summaries.
	Search(ctx context.Context, query string, opts SearchOptions) ([]types.ActivityEntry, error)
}

// QueryOptions filter QueryByEntity results.
type QueryOptions struct {
	Since      *time.Time
	Until      *time.Time
	Categories []string
	Limit      int
}

// DefaultQueryOptions returns the standard query window: everything, capped
// at 100 entries.
func DefaultQueryOptions() QueryOptions { return QueryOptions{Limit: 100} }

// SearchOptions filter Search results.
type SearchOptions struct {
	EntityType string
	Since      *time.Time
	Limit      int
}

// DefaultSearchOptions returns the standard search window.
func DefaultSearchOptions() SearchOptions { return SearchOptions{Limit: 20} }

// SQLiteStore implements Store on the sqlite database that also holds the
// persisted configuration.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store over an open database handle.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// CreateTable creates the activity_entries table. Run at startup; sqlite
// makes this idempotent.
func (s *SQLiteStore) CreateTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS activity_entries (
			event_id    TEXT NOT NULL,
			event_type  TEXT NOT NULL,
			occurred_at TIMESTAMP NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id   TEXT NOT NULL,
			summary     TEXT NOT NULL,
			category    TEXT NOT NULL,
			payload     TEXT,
			PRIMARY KEY (entity_type, entity_id, occurred_at, event_id)
		);

		CREATE INDEX IF NOT EXISTS idx_activity_entity_time
			ON activity_entries (entity_type, entity_id, occurred_at DESC);
	`)
	return err
}

// WriteEntries inserts activity entries.
func (s *SQLiteStore) WriteEntries(ctx context.Context, entries []types.ActivityEntry) error {
	if len(entries) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(`INSERT OR IGNORE INTO activity_entries (
		event_id, event_type, occurred_at, entity_type, entity_id, summary, category, payload
	) VALUES `)
	args := make([]any, 0, len(entries)*8)
	for i, e := range entries {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args, e.EventID, e.EventType, e.OccurredAt, e.EntityType, e.EntityID, e.Summary, e.Category, string(e.Payload))
	}
	_, err := s.db.ExecContext(ctx, b.String(), args...)
	return err
}

// QueryByEntity returns entries for one entity, newest first.
func (s *SQLiteStore) QueryByEntity(ctx context.Context, entityType, entityID string, opts QueryOptions) ([]types.ActivityEntry, error) {
	if opts.Limit <= 0 || opts.Limit > 500 {
		opts.Limit = 100
	}
	conditions := []string{"entity_type = ?", "entity_id = ?"}
	args := []any{entityType, entityID}
	if opts.Since != nil {
		conditions = append(conditions, "occurred_at >= ?")
		args = append(args, *opts.Since)
	}
	if opts.Until != nil {
		conditions = append(conditions, "occurred_at <= ?")
		args = append(args, *opts.Until)
	}
	if len(opts.Categories) > 0 {
		ph := strings.TrimSuffix(strings.Repeat("?,", len(opts.Categories)), ",")
		conditions = append(conditions, "category IN ("+ph+")")
		for _, c := range opts.Categories {
			args = append(args, c)
		}
	}
	args = append(args, opts.Limit)

	q := fmt.Sprintf(`
		SELECT event_id, event_type, occurred_at, entity_type, entity_id, summary, category, payload
		FROM activity_entries
		WHERE %s
		ORDER BY occurred_at DESC
		LIMIT ?`, strings.Join(conditions, " AND "))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Search matches against summaries case-insensitively, newest first.
func (s *SQLiteStore) Search(ctx context.Context, query string, opts SearchOptions) ([]types.ActivityEntry, error) {
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	conditions := []string{"summary LIKE ? COLLATE NOCASE"}
	args := []any{"%" + query + "%"}
	if opts.EntityType != "" {
		conditions = append(conditions, "entity_type = ?")
		args = append(args, opts.EntityType)
	}
	if opts.Since != nil {
		conditions = append(conditions, "occurred_at >= ?")
		args = append(args, *opts.Since)
	}
	args = append(args, opts.Limit)

	q := fmt.Sprintf(`
		SELECT event_id, event_type, occurred_at, entity_type, entity_id, summary, category, payload
		FROM activity_entries
		WHERE %s
		ORDER BY occurred_at DESC
		LIMIT ?`, strings.Join(conditions, " AND "))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]types.ActivityEntry, error) {
	var out []types.ActivityEntry
	for rows.Next() {
		var e types.ActivityEntry
		var payload string
		if err := rows.Scan(&e.EventID, &e.EventType, &e.OccurredAt, &e.EntityType, &e.EntityID, &e.Summary, &e.Category, &payload); err != nil {
			return nil, err
		}
		if payload != "" {
			e.Payload = []byte(payload)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
