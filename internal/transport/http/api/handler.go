// Package api provides the HTTP handlers of the chat API.
package api

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/chatapi/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the API routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/health", h.Health)

	// Chat
	e.POST("/chat", h.Chat)
	e.POST("/chat/stream", h.ChatStream)

	// Conversations
	e.POST("/conversation", h.Converse)
	e.GET("/conversation/:conversation_id", h.GetConversation)
	e.DELETE("/conversation/:conversation_id", h.DeleteConversation)
	e.GET("/conversations", h.ListConversations)

	// Generation call log
	e.GET("/calls", h.ListCalls)

	// Activities
	e.GET("/activities", h.ListActivities)
	e.POST("/activities/:activity_name/signup", h.SignUp)
	e.DELETE("/activities/:activity_name/participant", h.RemoveParticipant)
}

// Root describes the API.
// GET /
func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Chat API",
		"endpoints": map[string]string{
			"/chat":                                   "Single message chat without memory",
			"/chat/stream":                            "Single message chat streamed as server-sent events",
			"/conversation":                           "Chat with conversation memory",
			"/conversation/{conversation_id}":         "Inspect or delete a conversation",
			"/conversations":                          "List active conversations",
			"/calls":                                  "Recent generation calls",
			"/activities":                             "Extracurricular activities",
			"/activities/{activity_name}/signup":      "Sign up for an activity",
			"/activities/{activity_name}/participant": "Remove a participant",
			"/health":                                 "API health",
			"/ws":                                     "WebSocket conversation channel",
		},
	})
}

// Health returns health status. It always answers 200.
// GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Health(c.Request().Context()))
}
