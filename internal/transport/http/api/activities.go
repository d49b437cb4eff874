package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// participantQuery carries the email query parameter of the activity routes.
type participantQuery struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *Handler) participantEmail(c echo.Context) (string, error) {
	q := participantQuery{Email: c.QueryParam("email")}
	if err := c.Validate(&q); err != nil {
		return "", err
	}
	return q.Email, nil
}

// ListActivities returns all activities keyed by name.
// GET /activities
func (h *Handler) ListActivities(c echo.Context) error {
	activities, err := h.service.ListActivities(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, activities)
}

// SignUp adds a participant to an activity.
// POST /activities/:activity_name/signup?email=
func (h *Handler) SignUp(c echo.Context) error {
	name := c.Param("activity_name")
	email, err := h.participantEmail(c)
	if err != nil {
		return errorJSON(c, err)
	}

	if err := h.service.SignUp(c.Request().Context(), name, email); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Signed up %s for %s", email, name),
	})
}

// RemoveParticipant removes a participant from an activity.
// DELETE /activities/:activity_name/participant?email=
func (h *Handler) RemoveParticipant(c echo.Context) error {
	name := c.Param("activity_name")
	email, err := h.participantEmail(c)
	if err != nil {
		return errorJSON(c, err)
	}

	if err := h.service.RemoveParticipant(c.Request().Context(), name, email); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Removed %s from %s", email, name),
	})
}
