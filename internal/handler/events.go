package handler

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/assetdesk/assetdesk/internal/event"
)

// EventStream pushes domain events to connected websocket clients. It is a
// bus subscriber: every published event fans out to every connection. Slow
// clients are dropped rather than allowed to stall dispatch.
type EventStream struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]context.CancelFunc
}

// NewEventStream creates an empty stream.
func NewEventStream() *EventStream {
	return &EventStream{conns: make(map[*websocket.Conn]context.CancelFunc)}
}

// HandleEvent implements the bus subscriber side: fan the event out to
// every connected client.
func (s *EventStream) HandleEvent(ctx context.Context, evt event.DomainEvent) error {
	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		if err := wsjson.Write(ctx, c, evt); err != nil {
			log.Printf("events: dropping client: %v", err)
			s.drop(c)
		}
	}
	return nil
}

func (s *EventStream) drop(c *websocket.Conn) {
	s.mu.Lock()
	cancel, ok := s.conns[c]
	delete(s.conns, c)
	s.mu.Unlock()
	if ok {
		cancel()
		c.CloseNow()
	}
}

// ServeHTTP upgrades to a websocket and holds the connection open until the
// client goes away. The read loop exists only to notice closure; clients
// are write-only receivers of the event stream.
// GET /v1/events
func (s *EventStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("events: websocket accept: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	s.mu.Lock()
	s.conns[conn] = cancel
	s.mu.Unlock()

	defer s.drop(conn)
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("events: connection closed: %v", websocket.CloseStatus(err))
			}
			return
		}
	}
}
