package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// ListCalls returns recent generation calls.
// GET /calls?limit=&conversation_id=
func (h *Handler) ListCalls(c echo.Context) error {
	limit := 0
	if l := c.QueryParam("limit"); l != "" {
		val, err := strconv.Atoi(l)
		if err != nil || val < 0 {
			return badRequest(c, "limit must be a non-negative integer")
		}
		limit = val
	}

	calls, err := h.service.ListGenerationCalls(c.Request().Context(), c.QueryParam("conversation_id"), limit)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"calls": calls,
	})
}
