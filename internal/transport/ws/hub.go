// Package ws provides the WebSocket conversation channel.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ErrBufferFull is returned when a connection's send buffer is full.
var ErrBufferFull = errors.New("send buffer full")

// ErrConnectionClosed is returned when sending to an unregistered connection.
var ErrConnectionClosed = errors.New("connection closed")

// Connection represents a single WebSocket connection.
type Connection struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte

	// guarded by Hub.mu
	conversationID string

	writeMu sync.Mutex
}

// Hub tracks connections and the conversation each one is bound to.
type Hub struct {
	// Connections indexed by connection ID
	connections map[string]*Connection

	// conversations maps conversation_id to set of connection IDs
	conversations map[string]map[string]bool

	broadcast chan *conversationMessage
	done      chan struct{}

	logger *slog.Logger
	mu     sync.RWMutex
}

type conversationMessage struct {
	conversationID string
	data           []byte
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		connections:   make(map[string]*Connection),
		conversations: make(map[string]map[string]bool),
		broadcast:     make(chan *conversationMessage, 256),
		done:          make(chan struct{}),
		logger:        logger,
	}
}

// Run delivers broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			return

		case msg := <-h.broadcast:
			h.mu.RLock()
			for connID := range h.conversations[msg.conversationID] {
				conn, exists := h.connections[connID]
				if !exists {
					continue
				}
				select {
				case conn.Send <- msg.data:
				default:
					h.logger.Warn("connection buffer full, closing", "conn_id", connID)
					go h.Unregister(conn)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// NewConnection wraps ws in a Connection. It is not registered yet.
func (h *Hub) NewConnection(ws *websocket.Conn) *Connection {
	return &Connection{
		ID:   uuid.New().String(),
		Conn: ws,
		Send: make(chan []byte, 256),
	}
}

// Register registers a connection with the hub.
func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	h.connections[conn.ID] = conn
	h.mu.Unlock()
	h.logger.Debug("connection registered", "conn_id", conn.ID)
}

// Unregister unregisters a connection and closes its send channel.
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[conn.ID]; !ok {
		return
	}
	delete(h.connections, conn.ID)
	h.unbindLocked(conn)
	close(conn.Send)
	h.logger.Debug("connection unregistered", "conn_id", conn.ID)
}

// Bind binds a connection to a conversation, replacing any earlier binding.
func (h *Hub) Bind(conn *Connection, conversationID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.unbindLocked(conn)
	conn.conversationID = conversationID
	if h.conversations[conversationID] == nil {
		h.conversations[conversationID] = make(map[string]bool)
	}
	h.conversations[conversationID][conn.ID] = true
}

func (h *Hub) unbindLocked(conn *Connection) {
	id := conn.conversationID
	if id == "" || h.conversations[id] == nil {
		return
	}
	delete(h.conversations[id], conn.ID)
	if len(h.conversations[id]) == 0 {
		delete(h.conversations, id)
	}
}

// ConversationID returns the conversation conn is bound to, or "".
func (h *Hub) ConversationID(conn *Connection) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return conn.conversationID
}

// BroadcastJSON sends v to every connection bound to the conversation.
func (h *Hub) BroadcastJSON(conversationID string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- &conversationMessage{conversationID: conversationID, data: data}:
		return nil
	case <-h.done:
		return ErrConnectionClosed
	}
}

// SendJSON sends v to a single connection.
func (h *Hub) SendJSON(conn *Connection, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.connections[conn.ID]; !ok {
		return ErrConnectionClosed
	}
	select {
	case conn.Send <- data:
		return nil
	default:
		return ErrBufferFull
	}
}

// ConnectionCount returns the number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// ConversationConnections returns how many connections are bound to a conversation.
func (h *Hub) ConversationConnections(conversationID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conversations[conversationID])
}

// WriteMessage writes a message to the connection with proper locking.
func (c *Connection) WriteMessage(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

// SetWriteDeadline sets the write deadline for the connection.
func (c *Connection) SetWriteDeadline(t time.Time) error {
	return c.Conn.SetWriteDeadline(t)
}

// SetReadDeadline sets the read deadline for the connection.
func (c *Connection) SetReadDeadline(t time.Time) error {
	return c.Conn.SetReadDeadline(t)
}

// Close closes the connection.
func (c *Connection) Close() error {
	return c.Conn.Close()
}
