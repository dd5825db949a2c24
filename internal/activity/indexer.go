package activity

import (
	"context"

	"github.com/assetdesk/assetdesk/internal/event"
	"github.com/assetdesk/assetdesk/internal/types"
)

// Indexer consumes domain events off the bus and writes feed entries to the
// store. It satisfies eventbus.Handler.
type Indexer struct {
	store Store
}

// NewIndexer creates an indexer writing to the given store.
func NewIndexer(store Store) *Indexer {
	return &Indexer{store: store}
}

// HandleEvent converts one domain event into its feed entry.
func (idx *Indexer) HandleEvent(ctx context.Context, evt event.DomainEvent) error {
	entry := types.ActivityEntry{
		EventID:    evt.ID,
		EventType:  evt.EventType,
		OccurredAt: evt.OccurredAt,
		EntityType: evt.EntityType,
		EntityID:   evt.EntityID,
		Summary:    evt.Summary,
		Category:   evt.Category,
		Payload:    evt.Payload,
	}
	return idx.store.WriteEntries(ctx, []types.ActivityEntry{entry})
}
