package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/xiaot623/gogo/chatapi/internal/protocol"
)

// Frame is a decoded server message. Only the fields of its type are set.
type Frame struct {
	protocol.BaseMessage
	Content string `json:"content,omitempty"`
	Model   string `json:"model,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Client is a WebSocket client for the conversation channel.
type Client struct {
	conn           *websocket.Conn
	conversationID string
	writeMu        sync.Mutex
}

// Dial connects to the server at addr, e.g. ws://localhost:8000/ws.
func Dial(ctx context.Context, addr string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	return c.conn.Close()
}

// ConversationID returns the id confirmed by the last hello.
func (c *Client) ConversationID() string {
	return c.conversationID
}

// Hello binds the connection to conversationID, or to a new conversation
// when it is empty, and waits for hello_ack.
func (c *Client) Hello(conversationID string) (string, error) {
	msg := protocol.HelloMessage{
		BaseMessage: protocol.BaseMessage{
			Type:           protocol.TypeHello,
			Ts:             time.Now().UnixMilli(),
			ConversationID: conversationID,
		},
	}
	if err := c.write(msg); err != nil {
		return "", fmt.Errorf("write hello: %w", err)
	}

	frame, err := c.Next()
	if err != nil {
		return "", fmt.Errorf("read hello_ack: %w", err)
	}
	if frame.Type == protocol.TypeError {
		return "", fmt.Errorf("hello failed: %s - %s", frame.Code, frame.Message)
	}
	if frame.Type != protocol.TypeHelloAck {
		return "", fmt.Errorf("expected hello_ack, got: %s", frame.Type)
	}

	c.conversationID = frame.ConversationID
	return c.conversationID, nil
}

// Send sends a user message and returns its request id. The reply arrives
// through Next.
func (c *Client) Send(content, systemPrompt string) (string, error) {
	requestID := fmt.Sprintf("req_%d", time.Now().UnixNano())
	msg := protocol.ChatMessage{
		BaseMessage: protocol.BaseMessage{
			Type:           protocol.TypeMessage,
			Ts:             time.Now().UnixMilli(),
			RequestID:      requestID,
			ConversationID: c.conversationID,
		},
		Content:      content,
		SystemPrompt: systemPrompt,
	}
	return requestID, c.write(msg)
}

// Reset asks the server to discard the conversation's history.
func (c *Client) Reset() error {
	return c.write(protocol.ResetMessage{
		BaseMessage: protocol.BaseMessage{
			Type:           protocol.TypeReset,
			Ts:             time.Now().UnixMilli(),
			ConversationID: c.conversationID,
		},
	})
}

// Next blocks until the next server message arrives.
func (c *Client) Next() (*Frame, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("unmarshal frame: %w", err)
	}
	return &frame, nil
}

func (c *Client) write(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}
