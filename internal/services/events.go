package services

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	EventImportFinished      = "import.finished"
	EventVerificationCreated = "verification.created"
	EventVerificationUpdated = "verification.updated"
	EventHostStats           = "system.stats"
	eventWriteTimeout        = 5 * time.Second
	eventBufferSize          = 64
)

type Event struct {
	Type string      `json:"type"`
	At   time.Time   `json:"at"`
	Data interface{} `json:"data"`
}

// EventHub fans admin events out to connected websocket clients. Slow or
// dead clients are dropped on the first failed write.
type EventHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	ch      chan Event
}

func NewEventHub() *EventHub {
	return &EventHub{
		clients: map[*websocket.Conn]bool{},
		ch:      make(chan Event, eventBufferSize),
	}
}

func (h *EventHub) Run(ctx context.Context) {
	for {
		select {
		case ev := <-h.ch:
			h.send(ev)
		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// Publish queues an event; it never blocks and drops the event when the
// buffer is full.
func (h *EventHub) Publish(eventType string, data interface{}) {
	if h == nil {
		return
	}
	select {
	case h.ch <- Event{Type: eventType, At: time.Now().UTC(), Data: data}:
	default:
	}
}

func (h *EventHub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
}

func (h *EventHub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

func (h *EventHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *EventHub) send(ev Event) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
		if err := conn.WriteJSON(ev); err != nil {
			h.Remove(conn)
			_ = conn.Close()
		}
	}
}

func (h *EventHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.Close()
		delete(h.clients, conn)
	}
}
