package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/chatapi/internal/domain"
)

func converse(t *testing.T, e *echo.Echo, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/conversation", body), rec)
	if err := h.Converse(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func TestConverseDefaultID(t *testing.T) {
	e := newTestEcho()
	h, _ := newTestHandler(t)

	rec := converse(t, e, h, `{"message":"Hello, I am a Python developer"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp domain.ChatReply
	decode(t, rec, &resp)
	if resp.ConversationID != "default" || resp.Response == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestConversationLifecycle(t *testing.T) {
	e := newTestEcho()
	h, _ := newTestHandler(t)

	for _, msg := range []string{"first", "second"} {
		rec := converse(t, e, h, `{"message":"`+msg+`","conversation_id":"user123"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	}

	// Inspect
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/conversation/user123", nil), rec)
	c.SetParamNames("conversation_id")
	c.SetParamValues("user123")
	if err := h.GetConversation(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var snap domain.ConversationSnapshot
	decode(t, rec, &snap)
	if len(snap.Turns) != 5 || snap.Turns[0].Role != domain.RoleSystem || snap.Turns[3].Content != "second" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	// List
	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/conversations", nil), rec)
	if err := h.ListConversations(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var list struct {
		Active []string `json:"active_conversations"`
		Count  int      `json:"count"`
	}
	decode(t, rec, &list)
	if list.Count != 1 || list.Active[0] != "user123" {
		t.Fatalf("unexpected list: %+v", list)
	}

	// Delete
	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodDelete, "/conversation/user123", nil), rec)
	c.SetParamNames("conversation_id")
	c.SetParamValues("user123")
	if err := h.DeleteConversation(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// Delete again
	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodDelete, "/conversation/user123", nil), rec)
	c.SetParamNames("conversation_id")
	c.SetParamValues("user123")
	if err := h.DeleteConversation(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetConversationNotFound(t *testing.T) {
	e := newTestEcho()
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/conversation/nope", nil), rec)
	c.SetParamNames("conversation_id")
	c.SetParamValues("nope")
	if err := h.GetConversation(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestConverseRejectsWhitespaceID(t *testing.T) {
	e := newTestEcho()
	h, _ := newTestHandler(t)

	rec := converse(t, e, h, `{"message":"hi","conversation_id":"my chat"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
