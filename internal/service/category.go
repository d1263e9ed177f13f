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

// CategoryService handles category business logic.
type CategoryService struct {
	metrics metrics.Recorder
	now     func() time.Time
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(recorder metrics.Recorder) *CategoryService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &CategoryService{metrics: recorder, now: time.Now}
}

// CategoryInput defines input for creating or replacing a category.
type CategoryInput struct {
	Name        string
	Description string
}

func (in CategoryInput) validate() error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Description) == "" {
		return ErrMissingField
	}
	return nil
}

// CreateCategory creates a category owned by the caller.
func (s *CategoryService) CreateCategory(ctx context.Context, store repository.Store, authUserID string, input CategoryInput) (*model.Category, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	category := &model.Category{
		ID:          ulid.Make().String(),
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		UserID:      authUserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := store.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.metrics.IncCategoryCreated()
	return category, nil
}

// UpdateCategory replaces the name and description of a caller-owned category.
func (s *CategoryService) UpdateCategory(ctx context.Context, store repository.Store, authUserID, id string, input CategoryInput) (*model.Category, error) {
	category, err := s.owned(ctx, store, authUserID, id, ErrForbiddenCategoryUpdate)
	if err != nil {
		return nil, err
	}

	if err := input.validate(); err != nil {
		return nil, err
	}

	category.Name = strings.TrimSpace(input.Name)
	category.Description = strings.TrimSpace(input.Description)
	category.UpdatedAt = s.now().UTC()

	if err := store.UpdateCategory(ctx, category); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.metrics.IncCategoryUpdated()
	return category, nil
}

// DeleteCategory removes a caller-owned category with no tasks.
func (s *CategoryService) DeleteCategory(ctx context.Context, store repository.Store, authUserID, id string) error {
	if _, err := s.owned(ctx, store, authUserID, id, ErrForbiddenCategoryDelete); err != nil {
		return err
	}

	count, err := store.CountTasksByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count category tasks: %w", err)
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	if err := store.DeleteCategory(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrCategoryNotFound):
			return ErrCategoryNotFound
		case errors.Is(err, repository.ErrCategoryInUse):
			return ErrCategoryInUse
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.metrics.IncCategoryDeleted()
	return nil
}

// ListCategories returns only the caller's categories.
func (s *CategoryService) ListCategories(ctx context.Context, store repository.Store, authUserID string) ([]*model.Category, error) {
	categories, err := store.ListCategoriesByUser(ctx, authUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// owned loads a category and checks existence before ownership.
func (s *CategoryService) owned(ctx context.Context, store repository.Store, authUserID, id string, forbidden *Error) (*model.Category, error) {
	category, err := store.GetCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if !category.IsOwnedBy(authUserID) {
		return nil, forbidden
	}
	return category, nil
}
