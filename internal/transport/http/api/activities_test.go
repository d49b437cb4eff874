package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/chatapi/internal/domain"
)

func activityRequest(t *testing.T, e *echo.Echo, handler echo.HandlerFunc, method, activity, email string) *httptest.ResponseRecorder {
	t.Helper()
	target := "/activities/" + url.PathEscape(activity) + "/x?email=" + url.QueryEscape(email)
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(method, target, nil), rec)
	c.SetParamNames("activity_name")
	c.SetParamValues(activity)
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	decode(t, rec, &resp)
	return resp["error"]
}

func TestGetActivities(t *testing.T) {
	e := newTestEcho()
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/activities", nil), rec)
	if err := h.ListActivities(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]domain.Activity
	decode(t, rec, &resp)
	if _, ok := resp["Chess Club"]; !ok {
		t.Fatalf("expected Chess Club, got %v", resp)
	}
	if _, ok := resp["Programming Class"]; !ok {
		t.Fatalf("expected Programming Class, got %v", resp)
	}
}

func TestSignupForActivity(t *testing.T) {
	e := newTestEcho()
	h, _ := newTestHandler(t)

	rec := activityRequest(t, e, h.SignUp, http.MethodPost, "Chess Club", "newstudent@mergington.edu")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Signed up newstudent@mergington.edu for Chess Club") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	rec = activityRequest(t, e, h.SignUp, http.MethodPost, "Chess Club", "michael@mergington.edu")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); !strings.Contains(msg, "already signed up") {
		t.Fatalf("unexpected error: %s", msg)
	}

	rec = activityRequest(t, e, h.SignUp, http.MethodPost, "Nonexistent Club", "someone@mergington.edu")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSignupRequiresEmail(t *testing.T) {
	e := newTestEcho()
	h, _ := newTestHandler(t)

	rec := activityRequest(t, e, h.SignUp, http.MethodPost, "Chess Club", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "email is required" {
		t.Fatalf("unexpected error: %s", msg)
	}
}

func TestRemoveParticipant(t *testing.T) {
	e := newTestEcho()
	h, _ := newTestHandler(t)

	rec := activityRequest(t, e, h.RemoveParticipant, http.MethodDelete, "Chess Club", "daniel@mergington.edu")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Removed daniel@mergington.edu from Chess Club") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	rec = activityRequest(t, e, h.RemoveParticipant, http.MethodDelete, "Chess Club", "notfound@mergington.edu")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); !strings.Contains(msg, "Participant not found") {
		t.Fatalf("unexpected error: %s", msg)
	}

	rec = activityRequest(t, e, h.RemoveParticipant, http.MethodDelete, "Nonexistent Club", "someone@mergington.edu")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); !strings.Contains(msg, "Activity not found") {
		t.Fatalf("unexpected error: %s", msg)
	}
}
