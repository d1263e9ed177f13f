package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tareasapi/tareas/internal/auth"
	"github.com/tareasapi/tareas/internal/handler/dto"
	"github.com/tareasapi/tareas/internal/service"
)

// TaskHandler handles HTTP requests for task operations.
type TaskHandler struct {
	svc    *service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(svc *service.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		svc:    svc,
		logger: logger,
	}
}

func taskInput(req dto.TaskRequest) service.TaskInput {
	return service.TaskInput{
		Text:       req.Text,
		TargetDate: req.TargetDate,
		Status:     req.Status,
		UserID:     req.UserID,
		CategoryID: req.CategoryID,
	}
}

// Create handles POST /tareas.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.TaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	st, ok := requestStore(w, r, h.logger)
	if !ok {
		return
	}

	userID := auth.MustUserIDFromContext(r.Context())
	task, err := h.svc.CreateTask(r.Context(), st, userID, taskInput(req))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("task_created",
		"task_id", task.ID,
		"user_id", userID,
		"category_id", task.CategoryID,
	)

	writeJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// Get handles GET /tareas/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	st, ok := requestStore(w, r, h.logger)
	if !ok {
		return
	}

	task, err := h.svc.GetTask(r.Context(), st, auth.MustUserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// Update handles PUT /tareas/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.TaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	st, ok := requestStore(w, r, h.logger)
	if !ok {
		return
	}

	task, err := h.svc.UpdateTask(r.Context(), st, auth.MustUserIDFromContext(r.Context()), chi.URLParam(r, "id"), taskInput(req))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("task_updated", "task_id", task.ID)

	writeJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// PatchStatus handles PATCH /tareas/{id}/estado. The new status comes from
// the "estado" query parameter, falling back to a JSON body. A body that
// cannot be decoded is reported only once the task is known to exist and
// belong to the caller.
func (h *TaskHandler) PatchStatus(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("estado")
	var decodeErr error
	if status == "" {
		var req dto.StatusRequest
		decodeErr = decodeJSON(r, &req)
		status = req.Status
	}

	st, ok := requestStore(w, r, h.logger)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	userID := auth.MustUserIDFromContext(r.Context())

	if decodeErr != nil {
		if err := h.svc.CheckTaskWritable(r.Context(), st, userID, id); err != nil {
			writeServiceError(w, r, h.logger, err)
			return
		}
		writeDecodeError(w, decodeErr)
		return
	}

	task, err := h.svc.PatchTaskStatus(r.Context(), st, userID, id, status)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("task_status_changed",
		"task_id", task.ID,
		"status", string(task.Status),
	)

	writeJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// Delete handles DELETE /tareas/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	st, ok := requestStore(w, r, h.logger)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteTask(r.Context(), st, auth.MustUserIDFromContext(r.Context()), id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("task_deleted", "task_id", id)

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Tarea eliminada exitosamente"})
}

// ListForUser handles GET /usuarios/{id}/tareas.
func (h *TaskHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	st, ok := requestStore(w, r, h.logger)
	if !ok {
		return
	}

	tasks, err := h.svc.ListTasksForUser(r.Context(), st, auth.MustUserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTaskResponses(tasks))
}
