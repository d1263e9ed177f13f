package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tareasapi/tareas/internal/middleware"
	"github.com/tareasapi/tareas/internal/repository"
	"github.com/tareasapi/tareas/internal/service"
)

var errNoSession = errors.New("no store session in request context")

// writeServiceError maps service errors to HTTP responses. Anything that is
// not a service error is logged once here and answered with INTERNAL_ERROR.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var se *service.Error
	if !errors.As(err, &se) {
		logger.Error("internal_error",
			slog.String("error", err.Error()),
			slog.String("endpoint", r.Method+" "+r.URL.Path),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Error interno del servidor")
		return
	}

	if se.Kind == service.KindUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeError(w, statusFor(err, se), se.Code, se.Message)
}

func statusFor(err error, se *service.Error) int {
	// Username conflicts keep the 400 the public API has always returned.
	if errors.Is(err, service.ErrUsernameTaken) {
		return http.StatusBadRequest
	}

	switch se.Kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeDecodeError answers a body that could not be decoded. Bodies cut
// off by middleware.MaxBodySize get 413.
func writeDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Cuerpo de la solicitud demasiado grande")
		return
	}
	writeError(w, http.StatusBadRequest, "INVALID_JSON", "Cuerpo de la solicitud inválido")
}

// requestStore returns the request's store session. Every handler that
// touches persistence runs behind middleware.Session.
func requestStore(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (repository.Store, bool) {
	st := middleware.StoreFromContext(r.Context())
	if st == nil {
		writeServiceError(w, r, logger, errNoSession)
		return nil, false
	}
	return st, true
}
