package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tareasapi/tareas/internal/model"
	"github.com/tareasapi/tareas/internal/repository"
)

// ---- users ----

func (s *session) CreateUser(ctx context.Context, user *model.User) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(userFromModel(user)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repository.ErrUsernameExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *session) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if isNotFound(err) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return row.toModel(), nil
}

func (s *session) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&row).Error; err != nil {
		if isNotFound(err) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return row.toModel(), nil
}

func (s *session) UpdateUserPasswordHash(ctx context.Context, id, passwordHash string) error {
	result := s.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", id).Update("password_hash", passwordHash)
	if result.Error != nil {
		return fmt.Errorf("update password hash: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}
	return nil
}

func (s *session) ListUsers(ctx context.Context) ([]*model.User, error) {
	var rows []userRow
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]*model.User, 0, len(rows))
	for i := range rows {
		users = append(users, rows[i].toModel())
	}
	return users, nil
}

// ---- categories ----

func (s *session) CreateCategory(ctx context.Context, category *model.Category) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(categoryFromModel(category)).Error
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrUserNotFound
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (s *session) GetCategoryByID(ctx context.Context, id string) (*model.Category, error) {
	var row categoryRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if isNotFound(err) {
			return nil, repository.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category by id: %w", err)
	}
	return row.toModel(), nil
}

func (s *session) UpdateCategory(ctx context.Context, category *model.Category) error {
	result := s.db.WithContext(ctx).Model(&categoryRow{}).Where("id = ?", category.ID).Updates(map[string]any{
		"name":        category.Name,
		"description": category.Description,
		"updated_at":  category.UpdatedAt,
	})
	if result.Error != nil {
		return fmt.Errorf("update category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrCategoryNotFound
	}
	return nil
}

func (s *session) DeleteCategory(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&categoryRow{})
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return repository.ErrCategoryInUse
		}
		return fmt.Errorf("delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrCategoryNotFound
	}
	return nil
}

func (s *session) ListCategoriesByUser(ctx context.Context, userID string) ([]*model.Category, error) {
	var rows []categoryRow
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	categories := make([]*model.Category, 0, len(rows))
	for i := range rows {
		categories = append(categories, rows[i].toModel())
	}
	return categories, nil
}

func (s *session) CountTasksByCategory(ctx context.Context, categoryID string) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&taskRow{}).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count tasks by category: %w", err)
	}
	return count, nil
}

// ---- tasks ----

func (s *session) CreateTask(ctx context.Context, task *model.Task) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(taskFromModel(task)).Error
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrCategoryNotFound
		}
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (s *session) GetTaskByID(ctx context.Context, id string) (*model.Task, error) {
	var row taskRow
	if err := s.db.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&row).Error; err != nil {
		if isNotFound(err) {
			return nil, repository.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task by id: %w", err)
	}
	return row.toModel(), nil
}

func (s *session) UpdateTask(ctx context.Context, task *model.Task) error {
	result := s.db.WithContext(ctx).Model(&taskRow{}).Where("id = ?", task.ID).Updates(map[string]any{
		"text":        task.Text,
		"target_date": model.Today(task.TargetDate),
		"status":      string(task.Status),
		"category_id": task.CategoryID,
		"updated_at":  task.UpdatedAt,
	})
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return repository.ErrCategoryNotFound
		}
		return fmt.Errorf("update task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrTaskNotFound
	}
	return nil
}

func (s *session) UpdateTaskStatus(ctx context.Context, id string, status model.TaskStatus, updatedAt time.Time) error {
	result := s.db.WithContext(ctx).Model(&taskRow{}).Where("id = ?", id).Updates(map[string]any{
		"status":     string(status),
		"updated_at": updatedAt,
	})
	if result.Error != nil {
		return fmt.Errorf("update task status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrTaskNotFound
	}
	return nil
}

func (s *session) DeleteTask(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&taskRow{})
	if result.Error != nil {
		return fmt.Errorf("delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrTaskNotFound
	}
	return nil
}

func (s *session) ListTasksByUser(ctx context.Context, userID string) ([]*model.Task, error) {
	return s.listTasks(s.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (s *session) ListTasks(ctx context.Context) ([]*model.Task, error) {
	return s.listTasks(s.db.WithContext(ctx))
}

func (s *session) listTasks(q *gorm.DB) ([]*model.Task, error) {
	var rows []taskRow
	if err := q.Preload("Category").Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	tasks := make([]*model.Task, 0, len(rows))
	for i := range rows {
		tasks = append(tasks, rows[i].toModel())
	}
	return tasks, nil
}

var _ repository.Provider = (*Store)(nil)
var _ repository.Session = (*session)(nil)
