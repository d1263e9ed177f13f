package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func corsRequest(t *testing.T, cfg CORSConfig, method, origin string, preflight bool) *httptest.ResponseRecorder {
	t.Helper()

	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(method, "/tareas", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if preflight {
		req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		origin     string
		method     string
		preflight  bool
		wantStatus int
		wantAllow  string
	}{
		{"nothing configured", nil, "https://app.example.com", http.MethodGet, false, http.StatusOK, ""},
		{"exact match", []string{"https://app.example.com"}, "https://app.example.com", http.MethodGet, false, http.StatusOK, "https://app.example.com"},
		{"case insensitive", []string{"HTTPS://APP.EXAMPLE.COM/"}, "https://app.example.com", http.MethodGet, false, http.StatusOK, "https://app.example.com"},
		{"disallowed preflight", []string{"https://app.example.com"}, "https://evil.test", http.MethodOptions, true, http.StatusForbidden, ""},
		{"allowed preflight", []string{"https://app.example.com"}, "https://app.example.com", http.MethodOptions, true, http.StatusNoContent, "https://app.example.com"},
		{"plain OPTIONS passes through", []string{"https://app.example.com"}, "https://app.example.com", http.MethodOptions, false, http.StatusOK, "https://app.example.com"},
		{"any origin", []string{"*"}, "https://whoever.test", http.MethodGet, false, http.StatusOK, "*"},
		{"subdomain pattern", []string{"*.example.com"}, "https://tasks.example.com", http.MethodGet, false, http.StatusOK, "https://tasks.example.com"},
		{"subdomain pattern rejects apex", []string{"*.example.com"}, "https://example.com", http.MethodGet, false, http.StatusOK, ""},
		{"subdomain pattern rejects lookalike", []string{"*.example.com"}, "https://badexample.com", http.MethodGet, false, http.StatusOK, ""},
		{"no origin header", []string{"https://app.example.com"}, "", http.MethodGet, false, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := corsRequest(t, CORSConfig{AllowedOrigins: tt.origins}, tt.method, tt.origin, tt.preflight)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantAllow)
			}
		})
	}
}

func TestCORS_PreflightHeaders(t *testing.T) {
	cfg := CORSConfig{AllowedOrigins: []string{"https://app.example.com"}, MaxAge: 10 * time.Minute}
	rec := corsRequest(t, cfg, http.MethodOptions, "https://app.example.com", true)

	h := rec.Header()
	if h.Get("Access-Control-Allow-Methods") != corsAllowMethods {
		t.Errorf("Allow-Methods = %q", h.Get("Access-Control-Allow-Methods"))
	}
	if h.Get("Access-Control-Allow-Headers") != corsAllowHeaders {
		t.Errorf("Allow-Headers = %q", h.Get("Access-Control-Allow-Headers"))
	}
	if h.Get("Access-Control-Max-Age") != "600" {
		t.Errorf("Max-Age = %q, want 600", h.Get("Access-Control-Max-Age"))
	}
	if h.Get("Access-Control-Allow-Credentials") != "" {
		t.Error("credentials must not be allowed")
	}
	if h.Get("Vary") != "Origin" {
		t.Errorf("Vary = %q", h.Get("Vary"))
	}
}

func TestCORS_ExposesRateLimitHeaders(t *testing.T) {
	rec := corsRequest(t, CORSConfig{AllowedOrigins: []string{"*"}}, http.MethodPost, "https://app.example.com", false)

	if got := rec.Header().Get("Access-Control-Expose-Headers"); got != corsExposeHeaders {
		t.Errorf("Expose-Headers = %q", got)
	}
	if rec.Header().Get("Access-Control-Allow-Methods") != "" {
		t.Error("simple requests should not carry preflight headers")
	}
}
