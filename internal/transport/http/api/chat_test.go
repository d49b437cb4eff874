package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xiaot623/gogo/chatapi/internal/adapter/llm"
	"github.com/xiaot623/gogo/chatapi/internal/domain"
)

func TestChat(t *testing.T) {
	e := newTestEcho()
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/chat", `{"message":"What services do I need?","system_prompt":"You are an Azure expert"}`), rec)
	if err := h.Chat(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp domain.ChatReply
	decode(t, rec, &resp)
	if !strings.Contains(resp.Response, "What services do I need?") || resp.Model != "gpt-4" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if strings.Contains(rec.Body.String(), "conversation_id") {
		t.Fatalf("chat reply should not carry a conversation id: %s", rec.Body.String())
	}
}

func TestChatValidation(t *testing.T) {
	e := newTestEcho()
	h, _ := newTestHandler(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing message", `{}`, "message is required"},
		{"blank message", `{"message":"   "}`, "message is required"},
		{"malformed body", `{"message":`, "invalid request body"},
		{"too long", `{"message":"` + strings.Repeat("a", 101) + `"}`, "message exceeds 100 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(jsonRequest(http.MethodPost, "/chat", tt.body), rec)
			if err := h.Chat(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			var resp map[string]string
			decode(t, rec, &resp)
			if !strings.Contains(resp["error"], tt.want) {
				t.Fatalf("expected error containing %q, got %q", tt.want, resp["error"])
			}
		})
	}
}

func TestChatUnconfigured(t *testing.T) {
	e := newTestEcho()
	cfgErr := &domain.ConfigurationError{Missing: []string{"AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_API_KEY"}}
	h, _ := newTestHandlerWithClient(t, llm.NewUnavailableClient(cfgErr))

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/chat", `{"message":"hi"}`), rec)
	if err := h.Chat(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_API_KEY") {
		t.Fatalf("expected missing settings in body, got %s", rec.Body.String())
	}
}

func TestChatStream(t *testing.T) {
	e := newTestEcho()
	h, db := newTestHandler(t)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/chat/stream", `{"message":"stream this please"}`), rec)
	if err := h.ChatStream(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected text/event-stream, got %q", ct)
	}

	var sb strings.Builder
	var events []string
	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		events = append(events, data)
		if data == "[DONE]" {
			continue
		}
		var ev map[string]string
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			t.Fatalf("decode event %q: %v", data, err)
		}
		sb.WriteString(ev["delta"])
	}

	if len(events) < 2 || events[len(events)-1] != "[DONE]" {
		t.Fatalf("expected deltas followed by [DONE], got %v", events)
	}
	if !strings.Contains(sb.String(), "stream this please") {
		t.Fatalf("unexpected reassembled reply %q", sb.String())
	}

	calls, err := db.ListGenerationCalls(c.Request().Context(), "", 0)
	if err != nil {
		t.Fatalf("ListGenerationCalls: %v", err)
	}
	if len(calls) != 1 || !calls[0].Stream {
		t.Fatalf("expected one streamed call, got %+v", calls)
	}
}

func TestChatStreamUnconfigured(t *testing.T) {
	e := newTestEcho()
	cfgErr := &domain.ConfigurationError{Missing: []string{"AZURE_OPENAI_ENDPOINT"}}
	h, _ := newTestHandlerWithClient(t, llm.NewUnavailableClient(cfgErr))

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/chat/stream", `{"message":"hi"}`), rec)
	if err := h.ChatStream(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
