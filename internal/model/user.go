// Package model defines domain entities for the application.
package model

import "time"

// DefaultProfileImage is stored when a user registers without an image.
const DefaultProfileImage = "default_profile_icon.png"

// User is an account that owns categories and tasks.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // never serialize
	ProfileImage string    `json:"profile_image"`
	CreatedAt    time.Time `json:"created_at"`

	// Tasks is only populated by listings that request it.
	Tasks []*Task `json:"tasks,omitempty"`
}

// ProfileImageOrDefault returns the image reference or the sentinel default.
func ProfileImageOrDefault(image string) string {
	if image == "" {
		return DefaultProfileImage
	}
	return image
}
