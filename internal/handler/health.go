package handler

import (
	"context"
	"net/http"
	"sync"
	"time"
)

const (
	checkOK            = "ok"
	checkNotConfigured = "not configured"

	defaultProbeTimeout = 3 * time.Second
)

// Pinger is implemented by every backing service the API can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependency is one named entry in the readiness report. A nil Pinger is
// reported as not configured and never fails readiness.
type Dependency struct {
	Name   string
	Pinger Pinger
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	deps    []Dependency
	timeout time.Duration
}

// NewHealthHandler returns a HealthHandler that probes deps in order.
func NewHealthHandler(deps ...Dependency) *HealthHandler {
	return &HealthHandler{deps: deps, timeout: defaultProbeTimeout}
}

// WithTimeout overrides the per-request probe deadline.
func (h *HealthHandler) WithTimeout(d time.Duration) *HealthHandler {
	if d > 0 {
		h.timeout = d
	}
	return h
}

// HealthResponse is the body of both probes.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz reports that the process is serving. It touches no dependency.
//
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: checkOK})
}

// Readyz pings every dependency concurrently and answers 503 when any
// configured one fails.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	checks, healthy := h.probe(ctx)

	resp := HealthResponse{Status: checkOK, Checks: checks}
	status := http.StatusOK
	if !healthy {
		resp.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func (h *HealthHandler) probe(ctx context.Context) (map[string]string, bool) {
	results := make([]string, len(h.deps))

	var wg sync.WaitGroup
	for i, dep := range h.deps {
		if dep.Pinger == nil {
			results[i] = checkNotConfigured
			continue
		}
		wg.Add(1)
		go func(i int, p Pinger) {
			defer wg.Done()
			if err := p.Ping(ctx); err != nil {
				results[i] = "error: " + err.Error()
				return
			}
			results[i] = checkOK
		}(i, dep.Pinger)
	}
	wg.Wait()

	checks := make(map[string]string, len(h.deps))
	healthy := true
	for i, dep := range h.deps {
		checks[dep.Name] = results[i]
		if results[i] != checkOK && results[i] != checkNotConfigured {
			healthy = false
		}
	}
	return checks, healthy
}
