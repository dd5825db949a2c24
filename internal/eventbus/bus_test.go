package eventbus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/assetdesk/assetdesk/internal/event"
)

// recorder collects dispatched events and signals each arrival.
type recorder struct {
	mu     sync.Mutex
	events []event.DomainEvent
	seen   chan struct{}
	err    error
}

func newRecorder(capacity int) *recorder {
	return &recorder{seen: make(chan struct{}, capacity)}
}

func (r *recorder) HandleEvent(ctx context.Context, evt event.DomainEvent) error {
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
	r.seen <- struct{}{}
	return r.err
}

func (r *recorder) wait(t *testing.T, n int) []event.DomainEvent {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.seen:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d of %d", i+1, n)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event.DomainEvent(nil), r.events...)
}

func testEvent(id string) event.DomainEvent {
	return event.DomainEvent{ID: id, EventType: "asset_created", EntityType: "asset", EntityID: "SOFT-WID-0001"}
}

func TestPublishDispatchesToAllSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := New(16)
	first := newRecorder(4)
	second := newRecorder(4)
	bus.Subscribe("first", first)
	bus.Subscribe("second", second)
	bus.Start(ctx)

	bus.Publish(ctx, testEvent("e-1"))
	bus.Publish(ctx, testEvent("e-2"))

	got := first.wait(t, 2)
	if got[0].ID != "e-1" || got[1].ID != "e-2" {
		t.Errorf("events out of order: %s, %s", got[0].ID, got[1].ID)
	}
	if len(second.wait(t, 2)) != 2 {
		t.Error("second subscriber missed events")
	}
}

func TestHandlerErrorDoesNotStopDispatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := New(16)
	failing := newRecorder(4)
	failing.err = errors.New("indexer down")
	healthy := newRecorder(4)
	bus.Subscribe("failing", failing)
	bus.Subscribe("healthy", healthy)
	bus.Start(ctx)

	bus.Publish(ctx, testEvent("e-1"))

	if len(healthy.wait(t, 1)) != 1 {
		t.Error("healthy subscriber should still receive the event")
	}
}

func TestPublishFullBufferDrops(t *testing.T) {
	// No consumer started: the buffer fills and further publishes must not
	// block.
	bus := New(1)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		bus.Publish(ctx, testEvent("e-1"))
		bus.Publish(ctx, testEvent("e-2"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full buffer")
	}
}

func TestCancelDrainsBufferedEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	bus := New(16)
	rec := newRecorder(8)
	bus.Subscribe("rec", rec)

	// Queue before the consumer starts, then cancel immediately: the drain
	// pass must still deliver what was buffered.
	bus.Publish(ctx, testEvent("e-1"))
	bus.Publish(ctx, testEvent("e-2"))
	bus.Start(ctx)
	cancel()

	if got := rec.wait(t, 2); len(got) != 2 {
		t.Errorf("expected both buffered events, got %d", len(got))
	}
}
