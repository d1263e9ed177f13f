package dto

import "github.com/tareasapi/tareas/internal/model"

// TaskRequest represents the body of POST /tareas and PUT /tareas/{id}.
// CreatedOn is accepted for compatibility and ignored.
type TaskRequest struct {
	Text       string `json:"texto_tarea"`
	CreatedOn  string `json:"fecha_creacion,omitempty"`
	TargetDate string `json:"fecha_tentativa_finalizacion"`
	Status     string `json:"estado,omitempty"`
	UserID     string `json:"id_usuario,omitempty"`
	CategoryID string `json:"id_categoria"`
}

// StatusRequest is the optional JSON body of PATCH /tareas/{id}/estado.
type StatusRequest struct {
	Status string `json:"estado"`
}

// TaskResponse represents a task in API responses.
type TaskResponse struct {
	ID         string            `json:"id"`
	Text       string            `json:"texto_tarea"`
	CreatedOn  string            `json:"fecha_creacion"`
	TargetDate string            `json:"fecha_tentativa_finalizacion"`
	Status     string            `json:"estado"`
	UserID     string            `json:"id_usuario"`
	CategoryID string            `json:"id_categoria"`
	Category   *CategoryResponse `json:"categoria"`
}

// ToTaskResponse converts a Task model to TaskResponse DTO.
func ToTaskResponse(task *model.Task) TaskResponse {
	resp := TaskResponse{
		ID:         task.ID,
		Text:       task.Text,
		CreatedOn:  task.CreatedOn.Format(model.DateLayout),
		TargetDate: task.TargetDate.Format(model.DateLayout),
		Status:     task.Status.Label(),
		UserID:     task.UserID,
		CategoryID: task.CategoryID,
	}
	if task.Category != nil {
		category := ToCategoryResponse(task.Category)
		resp.Category = &category
	}
	return resp
}

// ToTaskResponses converts a slice of tasks.
func ToTaskResponses(tasks []*model.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, ToTaskResponse(task))
	}
	return out
}
