package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/chatapi/internal/config"
	"github.com/xiaot623/gogo/chatapi/internal/domain"
	"github.com/xiaot623/gogo/chatapi/internal/protocol"
	"github.com/xiaot623/gogo/chatapi/internal/service"
)

// ChatService is the part of the service the channel needs.
type ChatService interface {
	Converse(ctx context.Context, in service.ChatInput) (*domain.ChatReply, error)
	DeleteConversation(ctx context.Context, id string) error
}

// Server handles WebSocket connections.
type Server struct {
	hub      *Hub
	chat     ChatService
	logger   *slog.Logger
	upgrader websocket.Upgrader

	pingInterval   time.Duration
	writeTimeout   time.Duration
	readTimeout    time.Duration
	maxMessageSize int64
}

// NewServer creates a new WebSocket server.
func NewServer(cfg *config.Config, h *Hub, chat ChatService, logger *slog.Logger) *Server {
	return &Server{
		hub:            h,
		chat:           chat,
		logger:         logger,
		pingInterval:   orDefault(cfg.PingInterval, 30*time.Second),
		writeTimeout:   orDefault(cfg.WriteTimeout, 10*time.Second),
		readTimeout:    orDefault(cfg.ReadTimeout, 60*time.Second),
		maxMessageSize: cfg.MaxMessageSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(cfg.CORSOrigins) == 0 {
					return true
				}
				return slices.Contains(cfg.CORSOrigins, "*") || slices.Contains(cfg.CORSOrigins, origin)
			},
		},
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// RegisterRoutes registers the WebSocket endpoint.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", s.HandleWebSocket)
}

// HandleWebSocket handles WebSocket upgrade and connection lifecycle.
func (s *Server) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Warn("failed to upgrade websocket", "error", err)
		return nil
	}

	conn := s.hub.NewConnection(ws)
	s.hub.Register(conn)

	if s.maxMessageSize > 0 {
		ws.SetReadLimit(s.maxMessageSize)
	}

	go s.writePump(conn)
	go s.readPump(conn)

	return nil
}

// readPump reads messages from the WebSocket connection.
func (s *Server) readPump(conn *Connection) {
	defer func() {
		s.hub.Unregister(conn)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		return nil
	})

	for {
		_, message, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Warn("websocket read error", "conn_id", conn.ID, "error", err)
			}
			break
		}

		conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		s.handleMessage(conn, message)
	}
}

// writePump writes messages to the WebSocket connection.
func (s *Server) writePump(conn *Connection) {
	ticker := time.NewTicker(s.pingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if !ok {
				// Hub closed the channel
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.logger.Warn("failed to write message", "conn_id", conn.ID, "error", err)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage dispatches incoming messages to appropriate handlers.
func (s *Server) handleMessage(conn *Connection, data []byte) {
	var baseMsg protocol.BaseMessage
	if err := json.Unmarshal(data, &baseMsg); err != nil {
		s.sendError(conn, "", protocol.ErrorCodeInvalidMessage, "invalid JSON message")
		return
	}

	switch baseMsg.Type {
	case protocol.TypeHello:
		s.handleHello(conn, data)
	case protocol.TypeMessage:
		s.handleChat(conn, data)
	case protocol.TypeReset:
		s.handleReset(conn, baseMsg)
	default:
		s.sendError(conn, baseMsg.RequestID, protocol.ErrorCodeInvalidMessage, "unknown message type: "+baseMsg.Type)
	}
}

// handleHello binds the connection to a conversation.
func (s *Server) handleHello(conn *Connection, data []byte) {
	var msg protocol.HelloMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, "", protocol.ErrorCodeInvalidMessage, "invalid hello message")
		return
	}

	conversationID := msg.ConversationID
	if conversationID == "" {
		conversationID = "conv_" + uuid.New().String()[:8]
	}

	s.hub.Bind(conn, conversationID)

	ack := protocol.HelloAckMessage{
		BaseMessage: protocol.BaseMessage{
			Type:           protocol.TypeHelloAck,
			Ts:             time.Now().UnixMilli(),
			RequestID:      msg.RequestID,
			ConversationID: conversationID,
		},
	}
	s.send(conn, ack)

	s.logger.Info("hello handshake completed", "conn_id", conn.ID, "conversation_id", conversationID)
}

// handleChat runs an exchange and broadcasts the reply to the conversation.
func (s *Server) handleChat(conn *Connection, data []byte) {
	var msg protocol.ChatMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, "", protocol.ErrorCodeInvalidMessage, "invalid message")
		return
	}

	conversationID := s.hub.ConversationID(conn)
	if conversationID == "" {
		s.sendError(conn, msg.RequestID, protocol.ErrorCodeConversationRequired, "must send hello first")
		return
	}
	if msg.Content == "" {
		s.sendError(conn, msg.RequestID, protocol.ErrorCodeInvalidMessage, "content is required")
		return
	}

	// Generation can be slow; don't block the read loop.
	go func() {
		reply, err := s.chat.Converse(context.Background(), service.ChatInput{
			ConversationID: conversationID,
			Message:        msg.Content,
			SystemPrompt:   msg.SystemPrompt,
			Channel:        service.ChannelWebSocket,
		})
		if err != nil {
			s.sendError(conn, msg.RequestID, errorCode(err), err.Error())
			return
		}

		out := protocol.ReplyMessage{
			BaseMessage: protocol.BaseMessage{
				Type:           protocol.TypeReply,
				Ts:             time.Now().UnixMilli(),
				RequestID:      msg.RequestID,
				ConversationID: conversationID,
			},
			Content: reply.Response,
			Model:   reply.Model,
		}
		if err := s.hub.BroadcastJSON(conversationID, out); err != nil {
			s.logger.Warn("failed to broadcast reply", "conversation_id", conversationID, "error", err)
		}
	}()
}

// handleReset deletes the bound conversation. Resetting a conversation with
// no history is not an error.
func (s *Server) handleReset(conn *Connection, msg protocol.BaseMessage) {
	conversationID := s.hub.ConversationID(conn)
	if conversationID == "" {
		s.sendError(conn, msg.RequestID, protocol.ErrorCodeConversationRequired, "must send hello first")
		return
	}

	if err := s.chat.DeleteConversation(context.Background(), conversationID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.sendError(conn, msg.RequestID, errorCode(err), err.Error())
		return
	}

	s.send(conn, protocol.ResetAckMessage{
		BaseMessage: protocol.BaseMessage{
			Type:           protocol.TypeResetAck,
			Ts:             time.Now().UnixMilli(),
			RequestID:      msg.RequestID,
			ConversationID: conversationID,
		},
	})
}

func errorCode(err error) string {
	var cfgErr *domain.ConfigurationError
	var genErr *domain.GenerationError
	switch {
	case errors.Is(err, domain.ErrInvalid), errors.Is(err, domain.ErrConflict):
		return protocol.ErrorCodeInvalidRequest
	case errors.As(err, &cfgErr):
		return protocol.ErrorCodeConfiguration
	case errors.As(err, &genErr):
		return protocol.ErrorCodeGenerationFailed
	default:
		return protocol.ErrorCodeInternalError
	}
}

func (s *Server) send(conn *Connection, v interface{}) {
	if err := s.hub.SendJSON(conn, v); err != nil {
		s.logger.Warn("failed to send message", "conn_id", conn.ID, "error", err)
	}
}

// sendError sends an error message to a connection.
func (s *Server) sendError(conn *Connection, requestID, code, message string) {
	s.send(conn, protocol.ErrorMessage{
		BaseMessage: protocol.BaseMessage{
			Type:           protocol.TypeError,
			Ts:             time.Now().UnixMilli(),
			RequestID:      requestID,
			ConversationID: s.hub.ConversationID(conn),
		},
		Code:    code,
		Message: message,
	})
}
