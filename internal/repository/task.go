package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tareasapi/tareas/internal/model"
)

const taskSelect = `
	SELECT t.id, t.user_id, t.category_id, t.text, t.created_on, t.target_date,
	       t.status, t.created_at, t.updated_at,
	       c.id, c.user_id, c.name, c.description, c.created_at, c.updated_at
	FROM tasks t
	LEFT JOIN categories c ON c.id = t.category_id
`

// CreateTask inserts a new task.
func (s *pgSession) CreateTask(ctx context.Context, task *model.Task) error {
	query := `
		INSERT INTO tasks (id, user_id, category_id, text, created_on, target_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.conn.Exec(ctx, query,
		task.ID,
		task.UserID,
		task.CategoryID,
		task.Text,
		task.CreatedOn,
		task.TargetDate,
		string(task.Status),
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetTaskByID retrieves a task with its category.
func (s *pgSession) GetTaskByID(ctx context.Context, id string) (*model.Task, error) {
	task, err := scanTask(s.conn.QueryRow(ctx, taskSelect+` WHERE t.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task by ID: %w", err)
	}
	return task, nil
}

// UpdateTask replaces every mutable field of a task.
func (s *pgSession) UpdateTask(ctx context.Context, task *model.Task) error {
	query := `
		UPDATE tasks
		SET text = $2, target_date = $3, status = $4, category_id = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := s.conn.Exec(ctx, query,
		task.ID,
		task.Text,
		task.TargetDate,
		string(task.Status),
		task.CategoryID,
		task.UpdatedAt,
	)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to update task: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// UpdateTaskStatus changes only the status of a task.
func (s *pgSession) UpdateTaskStatus(ctx context.Context, id string, status model.TaskStatus, updatedAt time.Time) error {
	result, err := s.conn.Exec(ctx,
		`UPDATE tasks SET status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), updatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// DeleteTask permanently removes a task.
func (s *pgSession) DeleteTask(ctx context.Context, id string) error {
	result, err := s.conn.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// ListTasksByUser returns the tasks owned by userID.
func (s *pgSession) ListTasksByUser(ctx context.Context, userID string) ([]*model.Task, error) {
	return s.listTasks(ctx, taskSelect+` WHERE t.user_id = $1 ORDER BY t.created_at, t.id`, userID)
}

// ListTasks returns every task.
func (s *pgSession) ListTasks(ctx context.Context) ([]*model.Task, error) {
	return s.listTasks(ctx, taskSelect+` ORDER BY t.created_at, t.id`)
}

func (s *pgSession) listTasks(ctx context.Context, query string, args ...any) ([]*model.Task, error) {
	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*model.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

func scanTask(row pgx.Row) (*model.Task, error) {
	var (
		task   model.Task
		status string

		catID, catUserID, catName, catDescription *string
		catCreatedAt, catUpdatedAt                *time.Time
	)

	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.CategoryID,
		&task.Text,
		&task.CreatedOn,
		&task.TargetDate,
		&status,
		&task.CreatedAt,
		&task.UpdatedAt,
		&catID,
		&catUserID,
		&catName,
		&catDescription,
		&catCreatedAt,
		&catUpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status = model.TaskStatus(status)
	task.CreatedOn = model.Today(task.CreatedOn)
	task.TargetDate = model.Today(task.TargetDate)

	if catID != nil {
		task.Category = &model.Category{
			ID:          *catID,
			UserID:      deref(catUserID),
			Name:        deref(catName),
			Description: deref(catDescription),
		}
		if catCreatedAt != nil {
			task.Category.CreatedAt = *catCreatedAt
		}
		if catUpdatedAt != nil {
			task.Category.UpdatedAt = *catUpdatedAt
		}
	}

	return &task, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
