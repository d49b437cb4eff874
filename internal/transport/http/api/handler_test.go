package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/chatapi/internal/adapter/llm"
	"github.com/xiaot623/gogo/chatapi/internal/config"
	"github.com/xiaot623/gogo/chatapi/internal/domain"
	"github.com/xiaot623/gogo/chatapi/internal/policy"
	"github.com/xiaot623/gogo/chatapi/internal/repository"
	"github.com/xiaot623/gogo/chatapi/internal/service"
	"github.com/xiaot623/gogo/chatapi/tests/helpers"
)

func newTestHandlerWithClient(t *testing.T, client llm.LLMClient) (*Handler, repository.Store) {
	t.Helper()
	cfg := &config.Config{
		Mode:            config.ModeMock,
		Azure:           config.AzureConfig{APIVersion: "2024-02-15-preview", Temperature: 0.7},
		LLMTimeout:      time.Second,
		MaxMessageChars: 100,
	}
	db := helpers.NewTestSQLiteStore(t)
	policyEngine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	logger := helpers.NewDiscardLogger()
	svc := service.New(db, client, cfg, policyEngine, "", logger)
	return NewHandler(svc, logger), db
}

func newTestHandler(t *testing.T) (*Handler, repository.Store) {
	return newTestHandlerWithClient(t, llm.NewMockClient())
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, rec.Body.String())
	}
}

func TestRoot(t *testing.T) {
	e := newTestEcho()
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	if err := h.Root(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		Message   string            `json:"message"`
		Endpoints map[string]string `json:"endpoints"`
	}
	decode(t, rec, &resp)
	if _, ok := resp.Endpoints["/conversation"]; !ok {
		t.Fatalf("expected /conversation endpoint, got %+v", resp.Endpoints)
	}
}

func TestHealth(t *testing.T) {
	e := newTestEcho()
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)
	if err := h.Health(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp service.HealthStatus
	decode(t, rec, &resp)
	if resp.Status != service.StatusHealthy || resp.APIVersion != "2024-02-15-preview" {
		t.Fatalf("unexpected health: %+v", resp)
	}
}

func TestHealthUnhealthyStill200(t *testing.T) {
	e := newTestEcho()
	cfgErr := &domain.ConfigurationError{Missing: []string{"AZURE_OPENAI_API_KEY"}}
	h, _ := newTestHandlerWithClient(t, llm.NewUnavailableClient(cfgErr))

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)
	if err := h.Health(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp service.HealthStatus
	decode(t, rec, &resp)
	if resp.Status != service.StatusUnhealthy || !strings.Contains(resp.Error, "AZURE_OPENAI_API_KEY") {
		t.Fatalf("unexpected health: %+v", resp)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&domain.NotFoundError{Resource: "Conversation", Key: "x"}, http.StatusNotFound},
		{domain.ErrAlreadySignedUp, http.StatusBadRequest},
		{domain.ErrActivityFull, http.StatusBadRequest},
		{&domain.ValidationError{Reason: "bad"}, http.StatusBadRequest},
		{&domain.ConfigurationError{Missing: []string{"A"}}, http.StatusInternalServerError},
		{&domain.GenerationError{Err: context.DeadlineExceeded}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
