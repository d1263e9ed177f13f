package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tareasapi/tareas/internal/handler/dto"
	"github.com/tareasapi/tareas/internal/metrics"
	"github.com/tareasapi/tareas/internal/service"
)

func TestHandler_Root(t *testing.T) {
	h := New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	h.Root(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", contentType)
	}

	var response map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response["message"] != "API funcionando correctamente" {
		t.Errorf("unexpected message: %s", response["message"])
	}
}

func TestHandler_NotFound(t *testing.T) {
	h := New()

	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	rec := httptest.NewRecorder()

	h.NotFound(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response["code"] != "NOT_FOUND" {
		t.Errorf("unexpected error code: %s", response["code"])
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := New()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()

	h.MethodNotAllowed(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rec.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response["code"] != "METHOD_NOT_ALLOWED" {
		t.Errorf("unexpected error code: %s", response["code"])
	}
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"missing field", service.ErrMissingField, http.StatusBadRequest, "MISSING_FIELD"},
		{"past date", service.ErrPastDate, http.StatusBadRequest, "PAST_DATE"},
		{"invalid status", service.ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS"},
		{"username taken", service.ErrUsernameTaken, http.StatusBadRequest, "USERNAME_TAKEN"},
		{"wrapped username taken", fmt.Errorf("register: %w", service.ErrUsernameTaken), http.StatusBadRequest, "USERNAME_TAKEN"},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"forbidden", service.ErrForbiddenTaskRead, http.StatusForbidden, "FORBIDDEN"},
		{"task not found", service.ErrTaskNotFound, http.StatusNotFound, "TASK_NOT_FOUND"},
		{"category in use", service.ErrCategoryInUse, http.StatusConflict, "CATEGORY_IN_USE"},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&logs, nil))

			req := httptest.NewRequest(http.MethodGet, "/tareas/x", nil)
			rec := httptest.NewRecorder()
			writeServiceError(rec, req, logger, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if body["code"] != tt.wantCode {
				t.Errorf("code = %q, want %q", body["code"], tt.wantCode)
			}
			if body["error"] == "" {
				t.Error("expected error message")
			}

			if tt.wantStatus == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") != "Bearer" {
				t.Error("401 must carry WWW-Authenticate: Bearer")
			}

			internal := tt.wantStatus == http.StatusInternalServerError
			if internal != strings.Contains(logs.String(), "internal_error") {
				t.Errorf("internal error logging mismatch, logs: %s", logs.String())
			}
			if internal && strings.Contains(body["error"], "connection reset") {
				t.Error("internal error details must not leak to clients")
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"nombre"`
	}

	req := httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(""))
	if err := decodeJSON(req, &dst); err != nil {
		t.Errorf("empty body should decode to zero value, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(`{"nombre":"Trabajo"}`))
	if err := decodeJSON(req, &dst); err != nil || dst.Name != "Trabajo" {
		t.Errorf("decodeJSON = %v, name %q", err, dst.Name)
	}

	req = httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(`{"nombre":`))
	if err := decodeJSON(req, &dst); err == nil {
		t.Error("expected error for truncated JSON")
	}
}

func TestWriteDecodeError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"syntax", &json.SyntaxError{}, http.StatusBadRequest, "INVALID_JSON"},
		{"too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeDecodeError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body dto.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body.Code != tt.wantCode {
				t.Errorf("code = %q, err = %v", body.Code, err)
			}
		})
	}
}

func TestMetricsHandler(t *testing.T) {
	recorder := metrics.NewInMemory()
	recorder.IncUserRegistered()
	recorder.IncLogin("failure")
	recorder.IncAuthRejected("expired")
	recorder.IncTaskCreated()
	recorder.IncTaskCreated()

	h := NewMetricsHandler(recorder)
	rec := httptest.NewRecorder()
	h.Metrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := rec.Body.String()
	for _, line := range []string{
		"tareas_users_registered_total 1",
		`tareas_logins_total{status="failure"} 1`,
		`tareas_auth_rejected_total{reason="expired"} 1`,
		"tareas_tasks_created_total 2",
	} {
		if !strings.Contains(body, line) {
			t.Errorf("metrics output missing %q:\n%s", line, body)
		}
	}
}

func TestMetricsHandler_NoSnapshotter(t *testing.T) {
	h := NewMetricsHandler(nil)
	rec := httptest.NewRecorder()
	h.Metrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
