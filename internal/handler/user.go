package handler

import (
	"log/slog"
	"net/http"

	"github.com/tareasapi/tareas/internal/handler/dto"
	"github.com/tareasapi/tareas/internal/service"
)

// UserHandler handles registration, login, logout and the user listing.
type UserHandler struct {
	svc    *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /users.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	st, ok := requestStore(w, r, h.logger)
	if !ok {
		return
	}

	token, err := h.svc.Register(r.Context(), st, service.RegisterInput{
		Username:     req.Username,
		Password:     req.Password,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TokenResponse{AccessToken: token.AccessToken, TokenType: token.TokenType})
}

// Login handles POST /users/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	st, ok := requestStore(w, r, h.logger)
	if !ok {
		return
	}

	token, err := h.svc.Login(r.Context(), st, req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TokenResponse{AccessToken: token.AccessToken, TokenType: token.TokenType})
}

// Logout handles POST /users/logout. Tokens are stateless, so there is
// nothing to revoke server side.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: h.svc.Logout()})
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	st, ok := requestStore(w, r, h.logger)
	if !ok {
		return
	}

	users, err := h.svc.ListUsers(r.Context(), st)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponses(users))
}
