package handlers

import (
	"sync"

	"github.com/gofiber/contrib/websocket"

	"github.com/JaggerH/CopyWriter/internal/infrastructure/logger"
	"github.com/JaggerH/CopyWriter/internal/notify"
)

type WSHandler struct {
	hub    *notify.Hub
	logger *logger.Logger
}

func NewWSHandler(hub *notify.Hub, logger *logger.Logger) *WSHandler {
	return &WSHandler{hub: hub, logger: logger}
}

// lockedConn serializes writes; the hub broadcasts from many pipeline
// goroutines and websocket connections do not allow concurrent writers.
type lockedConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (l *lockedConn) WriteJSON(v interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn.WriteJSON(v)
}

// Handle keeps the subscription open until the client disconnects. Nothing
// the client sends is interpreted; the read loop only detects closure.
func (h *WSHandler) Handle(c *websocket.Conn) {
	sub := &lockedConn{conn: c}
	h.hub.Register(sub)
	h.logger.Infow("ws_client_connected", "remote", c.RemoteAddr().String())

	defer func() {
		h.hub.Unregister(sub)
		c.Close()
		h.logger.Infow("ws_client_disconnected", "remote", c.RemoteAddr().String())
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
