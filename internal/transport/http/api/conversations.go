package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/chatapi/internal/service"
)

// Converse sends a message within a conversation.
// POST /conversation
func (h *Handler) Converse(c echo.Context) error {
	var req ConversationRequest
	if err := bind(c, &req); err != nil {
		return errorJSON(c, err)
	}

	reply, err := h.service.Converse(c.Request().Context(), service.ChatInput{
		ConversationID: req.ConversationID,
		Message:        req.Message,
		SystemPrompt:   req.SystemPrompt,
		Channel:        service.ChannelHTTP,
	})
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, reply)
}

// GetConversation returns a conversation's turns.
// GET /conversation/:conversation_id
func (h *Handler) GetConversation(c echo.Context) error {
	snap, err := h.service.GetConversation(c.Request().Context(), c.Param("conversation_id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, snap)
}

// DeleteConversation discards a conversation.
// DELETE /conversation/:conversation_id
func (h *Handler) DeleteConversation(c echo.Context) error {
	id := c.Param("conversation_id")
	if err := h.service.DeleteConversation(c.Request().Context(), id); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Conversation %s deleted", id),
	})
}

// ListConversations lists active conversation ids.
// GET /conversations
func (h *Handler) ListConversations(c echo.Context) error {
	ids := h.service.ListConversations(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]interface{}{
		"active_conversations": ids,
		"count":                len(ids),
	})
}
