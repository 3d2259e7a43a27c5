package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/alphalab/internal/signals"
	"github.com/wonny/alphalab/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 8
)

// Hub broadcasts freshly generated signal tables to WebSocket
// subscribers. Slow clients are dropped rather than allowed to block
// the broadcast path.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *logger.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan *signals.Table
}

// NewHub creates a signal broadcast hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger:  log,
		clients: make(map[*client]struct{}),
	}
}

// ServeWS upgrades the connection and registers the subscriber.
// GET /ws/signals
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &client{
		conn: conn,
		send: make(chan *signals.Table, sendBufferSize),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.WithField("clients", count).Info("WebSocket client connected")

	go h.writePump(c)
	go h.readPump(c)
}

// Broadcast fans the table out to every connected client. A client with
// a full send buffer is disconnected.
func (h *Hub) Broadcast(table *signals.Table) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- table:
		default:
			go h.drop(c)
		}
	}
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	}
	h.mu.Unlock()

	if ok {
		c.conn.Close()
		h.logger.Info("WebSocket client dropped")
	}
}

// readPump discards inbound frames and watches for disconnect.
func (h *Hub) readPump(c *client) {
	defer h.drop(c)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.drop(c)
	}()

	for {
		select {
		case table, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(table); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
