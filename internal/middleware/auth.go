package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/tareasapi/tareas/internal/auth"
	"github.com/tareasapi/tareas/internal/metrics"
)

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger  *slog.Logger
	Tokens  *auth.TokenIssuer
	Metrics metrics.Recorder
}

// Auth returns a middleware that authenticates requests with a bearer token.
// It verifies the token, and injects the subject user id into the request
// context. Every failure gets the same 401 body.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				rejectAuth(cfg.Logger, recorder, w, r, "missing_token")
				return
			}

			userID, err := cfg.Tokens.Verify(token)
			if err != nil {
				rejectAuth(cfg.Logger, recorder, w, r, auth.FailureReason(err))
				return
			}

			cfg.Logger.Debug("authentication successful",
				slog.String("user_id", userID),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively.
func extractBearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}

func rejectAuth(logger *slog.Logger, recorder metrics.Recorder, w http.ResponseWriter, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
	recorder.IncAuthRejected(reason)
	writeAuthError(w)
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "No se pudo validar el token")
}
