package activity

import (
	"context"
	"testing"
	"time"

	"github.com/assetdesk/assetdesk/internal/event"
	"github.com/assetdesk/assetdesk/internal/types"
)

var feedBase = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func seedEntries(t *testing.T, s Store) {
	t.Helper()
	entries := []types.ActivityEntry{
		{EventID: "e-1", EventType: "asset_created", OccurredAt: feedBase, EntityType: "asset", EntityID: "SOFT-WID-0001", Summary: "Asset SOFT-WID-0001 created", Category: "asset"},
		{EventID: "e-2", EventType: "asset_updated", OccurredAt: feedBase.Add(time.Hour), EntityType: "asset", EntityID: "SOFT-WID-0001", Summary: "Asset SOFT-WID-0001 updated", Category: "asset"},
		{EventID: "e-3", EventType: "request_submitted", OccurredAt: feedBase.Add(2 * time.Hour), EntityType: "request", EntityID: "r-1", Summary: `Marcus Okafor requested "Widget Pro"`, Category: "workflow"},
		{EventID: "e-4", EventType: "layout_committed", OccurredAt: feedBase.Add(3 * time.Hour), EntityType: "layout", EntityID: "userProfile", Summary: "Layout for userProfile updated", Category: "config"},
	}
	if err := s.WriteEntries(context.Background(), entries); err != nil {
		t.Fatalf("WriteEntries: %v", err)
	}
}

func TestQueryByEntityNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	seedEntries(t, s)

	got, err := s.QueryByEntity(context.Background(), "asset", "SOFT-WID-0001", DefaultQueryOptions())
	if err != nil {
		t.Fatalf("QueryByEntity: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].EventID != "e-2" || got[1].EventID != "e-1" {
		t.Errorf("entries not newest-first: %s, %s", got[0].EventID, got[1].EventID)
	}
}

func TestQueryByEntityTimeWindow(t *testing.T) {
	s := NewMemoryStore()
	seedEntries(t, s)

	since := feedBase.Add(30 * time.Minute)
	got, err := s.QueryByEntity(context.Background(), "asset", "SOFT-WID-0001", QueryOptions{Since: &since, Limit: 10})
	if err != nil {
		t.Fatalf("QueryByEntity: %v", err)
	}
	if len(got) != 1 || got[0].EventID != "e-2" {
		t.Errorf("since filter wrong: %+v", got)
	}

	until := feedBase.Add(30 * time.Minute)
	got, err = s.QueryByEntity(context.Background(), "asset", "SOFT-WID-0001", QueryOptions{Until: &until, Limit: 10})
	if err != nil {
		t.Fatalf("QueryByEntity: %v", err)
	}
	if len(got) != 1 || got[0].EventID != "e-1" {
		t.Errorf("until filter wrong: %+v", got)
	}
}

func TestQueryByEntityCategories(t *testing.T) {
	s := NewMemoryStore()
	seedEntries(t, s)

	got, err := s.QueryByEntity(context.Background(), "asset", "SOFT-WID-0001", QueryOptions{Categories: []string{"workflow"}, Limit: 10})
	if err != nil {
		t.Fatalf("QueryByEntity: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("category filter should exclude asset entries, got %d", len(got))
	}
}

func TestQueryByEntityLimit(t *testing.T) {
	s := NewMemoryStore()
	seedEntries(t, s)

	got, err := s.QueryByEntity(context.Background(), "asset", "SOFT-WID-0001", QueryOptions{Limit: 1})
	if err != nil {
		t.Fatalf("QueryByEntity: %v", err)
	}
	if len(got) != 1 || got[0].EventID != "e-2" {
		t.Errorf("limit should keep the newest entry, got %+v", got)
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	s := NewMemoryStore()
	seedEntries(t, s)

	got, err := s.Search(context.Background(), "WIDGET PRO", DefaultSearchOptions())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].EventID != "e-3" {
		t.Errorf("search miss: %+v", got)
	}
}

func TestSearchEntityTypeFilter(t *testing.T) {
	s := NewMemoryStore()
	seedEntries(t, s)

	got, err := s.Search(context.Background(), "updated", SearchOptions{EntityType: "layout", Limit: 10})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].EventID != "e-4" {
		t.Errorf("entity type filter wrong: %+v", got)
	}
}

func TestIndexerWritesFeedEntry(t *testing.T) {
	s := NewMemoryStore()
	idx := NewIndexer(s)

	evt := event.DomainEvent{
		ID:         "e-9",
		EventType:  "asset_created",
		OccurredAt: feedBase,
		EntityType: "asset",
		EntityID:   "HARD-LAP-0001",
		Summary:    "Asset HARD-LAP-0001 created",
		Category:   "asset",
	}
	if err := idx.HandleEvent(context.Background(), evt); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	got, err := s.QueryByEntity(context.Background(), "asset", "HARD-LAP-0001", DefaultQueryOptions())
	if err != nil {
		t.Fatalf("QueryByEntity: %v", err)
	}
	if len(got) != 1 || got[0].EventID != "e-9" {
		t.Fatalf("indexed entry missing: %+v", got)
	}
	if got[0].Summary != evt.Summary || got[0].Category != "asset" {
		t.Errorf("entry fields lost: %+v", got[0])
	}
}
