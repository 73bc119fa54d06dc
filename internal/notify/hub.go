package notify

import (
	"sync"

	"github.com/JaggerH/CopyWriter/internal/infrastructure/logger"
)

// Conn is the write surface of a live subscriber connection. The transport
// layer owns the connection lifecycle; the hub only writes to it.
type Conn interface {
	WriteJSON(v interface{}) error
}

// BroadcastMessage is the envelope pushed to every live subscriber.
type BroadcastMessage struct {
	Type   string                 `json:"type"`
	TaskID string                 `json:"task_id"`
	Data   map[string]interface{} `json:"data"`
}

// Hub tracks currently connected live subscribers. Register, Unregister and
// Broadcast are safe to call concurrently.
type Hub struct {
	mu    sync.Mutex
	conns map[Conn]struct{}
	log   *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		conns: make(map[Conn]struct{}),
		log:   log,
	}
}

func (h *Hub) Register(c Conn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	count := len(h.conns)
	h.mu.Unlock()
	h.log.Infow("ws_subscriber_registered", "subscribers", count)
}

func (h *Hub) Unregister(c Conn) {
	h.mu.Lock()
	delete(h.conns, c)
	count := len(h.conns)
	h.mu.Unlock()
	h.log.Infow("ws_subscriber_unregistered", "subscribers", count)
}

// Broadcast sends msg to a snapshot of current subscribers. Connections that
// fail to accept the write are pruned after the pass; the set is never
// mutated while it is being iterated.
func (h *Hub) Broadcast(msg BroadcastMessage) {
	h.mu.Lock()
	snapshot := make([]Conn, 0, len(h.conns))
	for c := range h.conns {
		snapshot = append(snapshot, c)
	}
	h.mu.Unlock()

	var dead []Conn
	for _, c := range snapshot {
		if err := c.WriteJSON(msg); err != nil {
			dead = append(dead, c)
		}
	}

	if len(dead) > 0 {
		h.mu.Lock()
		for _, c := range dead {
			delete(h.conns, c)
		}
		h.mu.Unlock()
		h.log.Warnw("ws_subscribers_pruned", "count", len(dead), "type", msg.Type)
	}
}

// Count returns the current subscriber count.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
