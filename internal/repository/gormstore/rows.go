package gormstore

import (
	"time"

	"github.com/tareasapi/tareas/internal/model"
)

type userRow struct {
	ID           string `gorm:"primaryKey;size:26"`
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	ProfileImage string `gorm:"not null;default:default_profile_icon.png"`
	CreatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

type categoryRow struct {
	ID          string   `gorm:"primaryKey;size:26"`
	UserID      string   `gorm:"index;not null;size:26"`
	User        *userRow `gorm:"foreignKey:UserID"`
	Name        string   `gorm:"not null"`
	Description string   `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (categoryRow) TableName() string { return "categories" }

type taskRow struct {
	ID         string       `gorm:"primaryKey;size:26"`
	UserID     string       `gorm:"index;not null;size:26"`
	User       *userRow     `gorm:"foreignKey:UserID"`
	CategoryID string       `gorm:"index;not null;size:26"`
	Category   *categoryRow `gorm:"foreignKey:CategoryID"`
	Text       string       `gorm:"not null"`
	CreatedOn  time.Time    `gorm:"not null"`
	TargetDate time.Time    `gorm:"not null"`
	Status     string       `gorm:"not null;default:NOT_STARTED"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (taskRow) TableName() string { return "tasks" }

func userFromModel(u *model.User) *userRow {
	return &userRow{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
	}
}

func (r *userRow) toModel() *model.User {
	return &model.User{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		ProfileImage: r.ProfileImage,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

func categoryFromModel(c *model.Category) *categoryRow {
	return &categoryRow{
		ID:          c.ID,
		UserID:      c.UserID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (r *categoryRow) toModel() *model.Category {
	return &model.Category{
		ID:          r.ID,
		UserID:      r.UserID,
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

func taskFromModel(t *model.Task) *taskRow {
	return &taskRow{
		ID:         t.ID,
		UserID:     t.UserID,
		CategoryID: t.CategoryID,
		Text:       t.Text,
		CreatedOn:  model.Today(t.CreatedOn),
		TargetDate: model.Today(t.TargetDate),
		Status:     string(t.Status),
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

func (r *taskRow) toModel() *model.Task {
	task := &model.Task{
		ID:         r.ID,
		UserID:     r.UserID,
		CategoryID: r.CategoryID,
		Text:       r.Text,
		CreatedOn:  model.Today(r.CreatedOn),
		TargetDate: model.Today(r.TargetDate),
		Status:     model.TaskStatus(r.Status),
		CreatedAt:  r.CreatedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
	}
	if r.Category != nil {
		task.Category = r.Category.toModel()
	}
	return task
}
