package persist

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetdesk/assetdesk/internal/layout"
	"github.com/assetdesk/assetdesk/internal/store"
	"github.com/assetdesk/assetdesk/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := NewStore(db)
	require.NoError(t, s.CreateTables(context.Background()))
	// Idempotent: a restart runs it again.
	require.NoError(t, s.CreateTables(context.Background()))
	return s
}

func TestLayoutConfigRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, ok, err := s.LoadLayoutConfig(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "fresh database has no persisted layouts")

	cfg := layout.Default()
	cfg[layout.ContextUserProfile].Tabs = append(cfg[layout.ContextUserProfile].Tabs,
		layout.Tab{ID: "extra", Title: "Extra"})
	require.NoError(t, s.SaveLayoutConfig(ctx, cfg))

	loaded, ok, err := s.LoadLayoutConfig(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, loaded, len(layout.AllContexts))
	assert.Len(t, loaded[layout.ContextUserProfile].Tabs, 3)
	assert.Equal(t, cfg[layout.ContextLicenseInstance].Tabs, loaded[layout.ContextLicenseInstance].Tabs)
}

func TestSaveLayoutConfigUpserts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveLayoutConfig(ctx, layout.Default()))

	cfg := layout.Default()
	cfg[layout.ContextUserProfile].Tabs[0].Title = "Renamed"
	require.NoError(t, s.SaveLayoutConfig(ctx, cfg))

	loaded, ok, err := s.LoadLayoutConfig(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, loaded, len(layout.AllContexts), "upsert must not duplicate rows")
	assert.Equal(t, "Renamed", loaded[layout.ContextUserProfile].Tabs[0].Title)
}

func TestLoadLayoutConfigRejectsCorruptDocument(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	s := NewStore(db)
	ctx := context.Background()
	require.NoError(t, s.CreateTables(ctx))
	require.NoError(t, s.SaveLayoutConfig(ctx, layout.Default()))

	// A hand-edited row with an invalid column count must fail the load.
	_, err = db.ExecContext(ctx,
		`UPDATE layout_configs SET document = ? WHERE context = ?`,
		`{"context":"userProfile","tabs":[{"id":"t","title":"T","sections":[{"id":"s","title":"S","columns":9,"fields":[]}]}]}`,
		string(layout.ContextUserProfile))
	require.NoError(t, err)

	_, _, err = s.LoadLayoutConfig(ctx)
	assert.Error(t, err)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, ok, err := s.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	older := store.Snapshot{
		ExportedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		Users:      []types.User{{ID: "u-1", FirstName: "Dana"}},
	}
	newer := store.Snapshot{
		ExportedAt: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		Users:      []types.User{{ID: "u-1"}, {ID: "u-2"}},
	}
	require.NoError(t, s.SaveSnapshot(ctx, older))
	require.NoError(t, s.SaveSnapshot(ctx, newer))

	got, ok, err := s.LatestSnapshot(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, got.Users, 2)
	assert.True(t, got.ExportedAt.Equal(newer.ExportedAt))
}
