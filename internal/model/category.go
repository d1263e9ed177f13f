package model

import "time"

// Category groups tasks of a single owner.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsOwnedBy reports whether userID owns the category.
func (c *Category) IsOwnedBy(userID string) bool {
	return c.UserID == userID
}
