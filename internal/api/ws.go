package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/quantex/oms/internal/workflow"
	"github.com/quantex/oms/pkg/logger"
)

const writeTimeout = 5 * time.Second

// client is one websocket subscriber. Writes are serialized through mu;
// gorilla/websocket does not allow concurrent writers on a connection.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(snap workflow.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(snap)
}

// Hub pushes workflow snapshots to websocket subscribers. Clients are
// read-only: inbound messages are drained and ignored.
type Hub struct {
	engine   *workflow.Engine
	logger   *logger.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub creates a hub subscribed to engine state changes.
func NewHub(engine *workflow.Engine, log *logger.Logger) *Hub {
	h := &Hub{
		engine: engine,
		logger: log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}

	engine.Subscribe(h.broadcast)
	return h
}

// Serve upgrades the connection and streams snapshots until the client
// disconnects.
// GET /ws
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &client{conn: conn}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.logger.WithField("remote", conn.RemoteAddr().String()).Debug("WebSocket client connected")

	// Current state first so the client never starts blank.
	h.send(c, h.engine.Snapshot())

	// Drain inbound frames; exit on close.
	go func() {
		defer h.drop(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) broadcast(snap workflow.Snapshot) {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.send(c, snap)
	}
}

func (h *Hub) send(c *client, snap workflow.Snapshot) {
	if err := c.write(snap); err != nil {
		h.drop(c)
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	h.mu.Unlock()

	_ = c.conn.Close()
	h.logger.Debug("WebSocket client disconnected")
}
