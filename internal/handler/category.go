package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tareasapi/tareas/internal/auth"
	"github.com/tareasapi/tareas/internal/handler/dto"
	"github.com/tareasapi/tareas/internal/service"
)

// CategoryHandler handles HTTP requests for category operations.
type CategoryHandler struct {
	svc    *service.CategoryService
	logger *slog.Logger
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(svc *service.CategoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	st, ok := requestStore(w, r, h.logger)
	if !ok {
		return
	}

	userID := auth.MustUserIDFromContext(r.Context())
	category, err := h.svc.CreateCategory(r.Context(), st, userID, service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("category_created",
		"category_id", category.ID,
		"user_id", userID,
	)

	writeJSON(w, http.StatusOK, dto.ToCategoryResponse(category))
}

// List handles GET /categories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	st, ok := requestStore(w, r, h.logger)
	if !ok {
		return
	}

	categories, err := h.svc.ListCategories(r.Context(), st, auth.MustUserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToCategoryResponses(categories))
}

// Update handles PUT /categories/{id}.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.CategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	st, ok := requestStore(w, r, h.logger)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	category, err := h.svc.UpdateCategory(r.Context(), st, auth.MustUserIDFromContext(r.Context()), id, service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("category_updated", "category_id", category.ID)

	writeJSON(w, http.StatusOK, dto.ToCategoryResponse(category))
}

// Delete handles DELETE /categories/{id}.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	st, ok := requestStore(w, r, h.logger)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteCategory(r.Context(), st, auth.MustUserIDFromContext(r.Context()), id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("category_deleted", "category_id", id)

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Categoría eliminada exitosamente"})
}
