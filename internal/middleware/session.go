package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/tareasapi/tareas/internal/repository"
)

const sessionKey contextKey = "store_session"

// Session returns a middleware that acquires one store session per request
// and releases it when the handler returns, including when it panics.
func Session(provider repository.Provider, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := provider.Acquire(r.Context())
			if err != nil {
				logger.Error("failed to acquire store session",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Servicio no disponible")
				return
			}
			defer session.Release()

			ctx := context.WithValue(r.Context(), sessionKey, repository.Store(session))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StoreFromContext returns the request's store session, or nil when the
// Session middleware did not run.
func StoreFromContext(ctx context.Context) repository.Store {
	store, _ := ctx.Value(sessionKey).(repository.Store)
	return store
}
