package dto

import "github.com/tareasapi/tareas/internal/model"

// CategoryRequest represents the body for creating or replacing a category.
type CategoryRequest struct {
	Name        string `json:"nombre"`
	Description string `json:"descripcion"`
}

// CategoryResponse represents a category in API responses.
type CategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"nombre"`
	Description string `json:"descripcion"`
}

// ToCategoryResponse converts a Category model to CategoryResponse DTO.
func ToCategoryResponse(category *model.Category) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
	}
}

// ToCategoryResponses converts a slice of categories.
func ToCategoryResponses(categories []*model.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for _, category := range categories {
		out = append(out, ToCategoryResponse(category))
	}
	return out
}
