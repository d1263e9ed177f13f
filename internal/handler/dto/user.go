package dto

import "github.com/tareasapi/tareas/internal/model"

// RegisterRequest represents the request body for POST /users.
type RegisterRequest struct {
	Username     string `json:"nombre_usuario"`
	Password     string `json:"contrasena"`
	ProfileImage string `json:"imagen_perfil,omitempty"`
}

// LoginRequest represents the request body for POST /users/login.
type LoginRequest struct {
	Username string `json:"nombre_usuario"`
	Password string `json:"contrasena"`
}

// TokenResponse is returned by registration and login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserResponse represents a user with their tasks.
type UserResponse struct {
	ID           string         `json:"id"`
	Username     string         `json:"nombre_usuario"`
	ProfileImage string         `json:"imagen_perfil"`
	Tasks        []TaskResponse `json:"tareas"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Username:     user.Username,
		ProfileImage: user.ProfileImage,
		Tasks:        ToTaskResponses(user.Tasks),
	}
}

// ToUserResponses converts a slice of users.
func ToUserResponses(users []*model.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, ToUserResponse(user))
	}
	return out
}
