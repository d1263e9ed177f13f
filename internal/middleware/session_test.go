package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tareasapi/tareas/internal/repository"
)

// fakeSession embeds a nil Store; the handlers under test never call it.
type fakeSession struct {
	repository.Store
	released int
}

func (s *fakeSession) Release() { s.released++ }

type fakeProvider struct {
	session *fakeSession
	err     error
}

func (p *fakeProvider) Acquire(context.Context) (repository.Session, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.session, nil
}

func (p *fakeProvider) Ping(context.Context) error { return p.err }
func (p *fakeProvider) Close()                     {}

func TestSession_ReleasedAfterRequest(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{session: &fakeSession{}}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	var seen repository.Store
	handler := Session(provider, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = StoreFromContext(r.Context())
		if provider.session.released != 0 {
			t.Error("session released before handler finished")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks", nil))

	if seen != repository.Store(provider.session) {
		t.Error("handler did not see the acquired session")
	}
	if provider.session.released != 1 {
		t.Errorf("released = %d, want 1", provider.session.released)
	}
}

func TestSession_ReleasedOnPanic(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{session: &fakeSession{}}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	handler := Recoverer(logger)(Session(provider, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if provider.session.released != 1 {
		t.Errorf("released = %d, want 1", provider.session.released)
	}
}

func TestSession_AcquireFailure(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{err: errors.New("pool exhausted")}
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	called := false
	handler := Session(provider, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks", nil))

	if called {
		t.Error("handler must not run without a session")
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if !bytes.Contains(logs.Bytes(), []byte("pool exhausted")) {
		t.Errorf("expected acquire error in logs: %s", logs.String())
	}
}

func TestStoreFromContext_Missing(t *testing.T) {
	t.Parallel()

	if StoreFromContext(context.Background()) != nil {
		t.Error("expected nil store without Session middleware")
	}
}
