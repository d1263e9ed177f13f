package repository

import (
	"context"
	"errors"
	"time"

	"github.com/tareasapi/tareas/internal/model"
)

// Common errors returned by every Store implementation.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameExists   = errors.New("username already exists")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryInUse    = errors.New("category still has tasks")
	ErrTaskNotFound     = errors.New("task not found")
)

// Store is the entity CRUD surface used by the service layer.
// Reads of tasks always populate Task.Category when the category exists.
type Store interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateUserPasswordHash(ctx context.Context, id, passwordHash string) error
	ListUsers(ctx context.Context) ([]*model.User, error)

	CreateCategory(ctx context.Context, category *model.Category) error
	GetCategoryByID(ctx context.Context, id string) (*model.Category, error)
	UpdateCategory(ctx context.Context, category *model.Category) error
	DeleteCategory(ctx context.Context, id string) error
	ListCategoriesByUser(ctx context.Context, userID string) ([]*model.Category, error)
	CountTasksByCategory(ctx context.Context, categoryID string) (int64, error)

	CreateTask(ctx context.Context, task *model.Task) error
	GetTaskByID(ctx context.Context, id string) (*model.Task, error)
	UpdateTask(ctx context.Context, task *model.Task) error
	UpdateTaskStatus(ctx context.Context, id string, status model.TaskStatus, updatedAt time.Time) error
	DeleteTask(ctx context.Context, id string) error
	ListTasksByUser(ctx context.Context, userID string) ([]*model.Task, error)
	ListTasks(ctx context.Context) ([]*model.Task, error)
}

// Session is a Store bound to one request. Release must be called exactly
// once when the request finishes; further calls are no-ops.
type Session interface {
	Store
	Release()
}

// Provider hands out request-scoped sessions.
type Provider interface {
	Acquire(ctx context.Context) (Session, error)
	Ping(ctx context.Context) error
	Close()
}
