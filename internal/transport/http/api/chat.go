package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/chatapi/internal/domain"
	"github.com/xiaot623/gogo/chatapi/internal/service"
)

// ChatRequest is the body of POST /chat and POST /chat/stream.
type ChatRequest struct {
	Message      string `json:"message" validate:"required,notblank"`
	SystemPrompt string `json:"system_prompt"`
}

// ConversationRequest is the body of POST /conversation.
type ConversationRequest struct {
	Message        string `json:"message" validate:"required,notblank"`
	ConversationID string `json:"conversation_id" validate:"max=128"`
	SystemPrompt   string `json:"system_prompt"`
}

// bind decodes and validates a request body.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return &domain.ValidationError{Reason: "invalid request body"}
	}
	return c.Validate(req)
}

// Chat answers a single message without memory.
// POST /chat
func (h *Handler) Chat(c echo.Context) error {
	var req ChatRequest
	if err := bind(c, &req); err != nil {
		return errorJSON(c, err)
	}

	reply, err := h.service.Chat(c.Request().Context(), service.ChatInput{
		Message:      req.Message,
		SystemPrompt: req.SystemPrompt,
		Channel:      service.ChannelHTTP,
	})
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, reply)
}

// ChatStream streams a single reply as server-sent events.
// POST /chat/stream
func (h *Handler) ChatStream(c echo.Context) error {
	var req ChatRequest
	if err := bind(c, &req); err != nil {
		return errorJSON(c, err)
	}

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "streaming not supported"})
	}

	in := service.ChatInput{
		Message:      req.Message,
		SystemPrompt: req.SystemPrompt,
		Channel:      service.ChannelHTTP,
	}

	started := false
	start := func() {
		if started {
			return
		}
		started = true
		c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
		c.Response().Header().Set("Cache-Control", "no-cache")
		c.Response().Header().Set("Connection", "keep-alive")
		c.Response().WriteHeader(http.StatusOK)
	}
	writeEvent := func(payload interface{}) error {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(c.Response(), "data: %s\n\n", data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	_, err := h.service.ChatStream(c.Request().Context(), in, func(delta string) error {
		start()
		return writeEvent(map[string]string{"delta": delta})
	})
	if err != nil && !started {
		// Nothing sent yet, so the status code can still carry the failure.
		return errorJSON(c, err)
	}

	start()
	if err != nil {
		h.logger.Error("chat stream failed", "error", err)
		_ = writeEvent(map[string]string{"error": err.Error()})
	}
	fmt.Fprint(c.Response(), "data: [DONE]\n\n")
	flusher.Flush()
	return nil
}
