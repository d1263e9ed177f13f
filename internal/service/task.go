package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tareasapi/tareas/internal/metrics"
	"github.com/tareasapi/tareas/internal/model"
	"github.com/tareasapi/tareas/internal/repository"
)

// TaskService enforces task ownership and validation rules.
type TaskService struct {
	metrics metrics.Recorder
	now     func() time.Time
	// loc decides which calendar day "today" is.
	loc *time.Location
}

// NewTaskService creates a new TaskService.
func NewTaskService(recorder metrics.Recorder) *TaskService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TaskService{metrics: recorder, now: time.Now, loc: time.UTC}
}

// WithLocation sets the time zone whose calendar date counts as today when
// target dates are checked. A nil loc keeps UTC.
func (s *TaskService) WithLocation(loc *time.Location) *TaskService {
	if loc != nil {
		s.loc = loc
	}
	return s
}

func (s *TaskService) today() time.Time {
	return model.TodayIn(s.now(), s.loc)
}

// TaskInput defines input for creating or replacing a task.
// TargetDate is a YYYY-MM-DD string; Status accepts codes or labels.
type TaskInput struct {
	Text       string
	TargetDate string
	Status     string
	UserID     string
	CategoryID string
}

// CreateTask creates a task owned by the caller.
func (s *TaskService) CreateTask(ctx context.Context, store repository.Store, authUserID string, input TaskInput) (*model.Task, error) {
	if strings.TrimSpace(input.Text) == "" || input.TargetDate == "" || input.CategoryID == "" {
		return nil, ErrMissingField
	}

	today := s.today()
	targetDate, err := model.ParseDate(input.TargetDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if targetDate.Before(today) {
		return nil, ErrPastDate
	}

	// A caller may only create tasks for itself.
	if input.UserID != "" && input.UserID != authUserID {
		return nil, ErrForbiddenTaskOwner
	}

	category, err := s.usableCategory(ctx, store, authUserID, input.CategoryID)
	if err != nil {
		return nil, err
	}

	status := model.TaskStatusNotStarted
	if strings.TrimSpace(input.Status) != "" {
		if status, err = model.ParseTaskStatus(input.Status); err != nil {
			return nil, ErrInvalidStatus
		}
	}

	now := s.now().UTC()
	task := &model.Task{
		ID:         ulid.Make().String(),
		Text:       strings.TrimSpace(input.Text),
		CreatedOn:  today,
		TargetDate: targetDate,
		Status:     status,
		UserID:     authUserID,
		CategoryID: category.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
		Category:   category,
	}

	if err := store.CreateTask(ctx, task); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.metrics.IncTaskCreated()
	return task, nil
}

// GetTask returns a caller-owned task.
func (s *TaskService) GetTask(ctx context.Context, store repository.Store, authUserID, id string) (*model.Task, error) {
	return s.owned(ctx, store, authUserID, id, ErrForbiddenTaskRead)
}

// UpdateTask replaces text, status, target date and category of a
// caller-owned task. Every field of the input is authoritative.
func (s *TaskService) UpdateTask(ctx context.Context, store repository.Store, authUserID, id string, input TaskInput) (*model.Task, error) {
	task, err := s.owned(ctx, store, authUserID, id, ErrForbiddenTaskUpdate)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Text) == "" || input.TargetDate == "" || input.CategoryID == "" || strings.TrimSpace(input.Status) == "" {
		return nil, ErrMissingField
	}

	status, err := model.ParseTaskStatus(input.Status)
	if err != nil {
		return nil, ErrInvalidStatus
	}

	targetDate, err := model.ParseDate(input.TargetDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	// An unchanged target date that has since passed stays valid.
	if !model.SameDate(targetDate, task.TargetDate) && targetDate.Before(s.today()) {
		return nil, ErrPastDate
	}

	category := task.Category
	if category == nil || input.CategoryID != task.CategoryID {
		if category, err = s.usableCategory(ctx, store, authUserID, input.CategoryID); err != nil {
			return nil, err
		}
	}

	task.Text = strings.TrimSpace(input.Text)
	task.Status = status
	task.TargetDate = targetDate
	task.CategoryID = category.ID
	task.Category = category
	task.UpdatedAt = s.now().UTC()

	if err := store.UpdateTask(ctx, task); err != nil {
		switch {
		case errors.Is(err, repository.ErrTaskNotFound):
			return nil, ErrTaskNotFound
		case errors.Is(err, repository.ErrCategoryNotFound):
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.metrics.IncTaskUpdated()
	return task, nil
}

// PatchTaskStatus changes only the status of a caller-owned task.
func (s *TaskService) PatchTaskStatus(ctx context.Context, store repository.Store, authUserID, id, rawStatus string) (*model.Task, error) {
	task, err := s.owned(ctx, store, authUserID, id, ErrForbiddenTaskUpdate)
	if err != nil {
		return nil, err
	}

	status, err := model.ParseTaskStatus(rawStatus)
	if err != nil {
		return nil, ErrInvalidStatus
	}

	updatedAt := s.now().UTC()
	if err := store.UpdateTaskStatus(ctx, id, status, updatedAt); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	task.Status = status
	task.UpdatedAt = updatedAt

	s.metrics.IncTaskStatusChanged()
	return task, nil
}

// CheckTaskWritable reports whether the caller may modify the task, with
// the same not found and forbidden errors as UpdateTask.
func (s *TaskService) CheckTaskWritable(ctx context.Context, store repository.Store, authUserID, id string) error {
	_, err := s.owned(ctx, store, authUserID, id, ErrForbiddenTaskUpdate)
	return err
}

// DeleteTask permanently removes a caller-owned task.
func (s *TaskService) DeleteTask(ctx context.Context, store repository.Store, authUserID, id string) error {
	if _, err := s.owned(ctx, store, authUserID, id, ErrForbiddenTaskDelete); err != nil {
		return err
	}

	if err := store.DeleteTask(ctx, id); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.metrics.IncTaskDeleted()
	return nil
}

// ListTasksForUser returns the tasks of targetUserID. The identity check
// runs before the existence check so other users' ids cannot be probed.
func (s *TaskService) ListTasksForUser(ctx context.Context, store repository.Store, authUserID, targetUserID string) ([]*model.Task, error) {
	if targetUserID != authUserID {
		return nil, ErrForbiddenUserTasks
	}

	if _, err := store.GetUserByID(ctx, targetUserID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	tasks, err := store.ListTasksByUser(ctx, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// owned loads a task and checks existence before ownership.
func (s *TaskService) owned(ctx context.Context, store repository.Store, authUserID, id string, forbidden *Error) (*model.Task, error) {
	task, err := store.GetTaskByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if !task.IsOwnedBy(authUserID) {
		return nil, forbidden
	}
	return task, nil
}

// usableCategory loads a category the caller may file tasks under.
func (s *TaskService) usableCategory(ctx context.Context, store repository.Store, authUserID, categoryID string) (*model.Category, error) {
	category, err := store.GetCategoryByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if !category.IsOwnedBy(authUserID) {
		return nil, ErrForbiddenCategory
	}
	return category, nil
}
