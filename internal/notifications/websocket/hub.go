// Package websocket pushes in-app notifications to connected clients.
package websocket

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Message is the wire format pushed to clients
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// Connection represents one client connection
type Connection struct {
	ID     string
	UserID string
	conn   *websocket.Conn
	send   chan Message
}

// Hub tracks connections per user and fans messages out to them
type Hub struct {
	connections map[string][]*Connection // keyed by user id
	mu          sync.RWMutex
	upgrader    websocket.Upgrader
	logger      *zap.Logger
}

// NewHub creates a websocket hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		connections: make(map[string][]*Connection),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

// HandleConnection upgrades an authenticated request and starts the pumps
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("upgrade connection: %w", err)
	}

	c := &Connection{
		ID:     uuid.New().String(),
		UserID: userID,
		conn:   conn,
		send:   make(chan Message, 64),
	}

	h.mu.Lock()
	h.connections[userID] = append(h.connections[userID], c)
	h.mu.Unlock()

	h.logger.Debug("websocket connected",
		zap.String("connectionId", c.ID),
		zap.String("userId", userID))

	go h.writePump(c)
	go h.readPump(c)
	return nil
}

func (h *Hub) readPump(c *Connection) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		// Clients only listen; drain until the connection drops
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	}
}

func (h *Hub) writePump(c *Connection) {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendToUser delivers a message to every open connection of a user.
// Returns an error when the user has no connections; callers treat
// delivery as best-effort.
func (h *Hub) SendToUser(userID string, message Message) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conns := h.connections[userID]
	if len(conns) == 0 {
		return fmt.Errorf("user %s not connected", userID)
	}

	for _, c := range conns {
		select {
		case c.send <- message:
		default:
			// Buffer full; skip rather than block the caller
		}
	}
	return nil
}

// ConnectionCount returns the number of open connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, conns := range h.connections {
		count += len(conns)
	}
	return count
}

func (h *Hub) remove(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.connections[c.UserID]
	for i, other := range conns {
		if other.ID == c.ID {
			conns = append(conns[:i], conns[i+1:]...)
			close(c.send)
			break
		}
	}
	if len(conns) == 0 {
		delete(h.connections, c.UserID)
	} else {
		h.connections[c.UserID] = conns
	}
}

// Close drops every connection
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, conns := range h.connections {
		for _, c := range conns {
			c.conn.Close()
		}
	}
	h.connections = make(map[string][]*Connection)
}
