package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tareasapi/tareas/internal/model"
)

// CreateCategory inserts a new category.
func (s *pgSession) CreateCategory(ctx context.Context, category *model.Category) error {
	query := `
		INSERT INTO categories (id, user_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.conn.Exec(ctx, query,
		category.ID,
		category.UserID,
		category.Name,
		category.Description,
		category.CreatedAt,
		category.UpdatedAt,
	)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// GetCategoryByID retrieves a category by its ID.
func (s *pgSession) GetCategoryByID(ctx context.Context, id string) (*model.Category, error) {
	query := `
		SELECT id, user_id, name, description, created_at, updated_at
		FROM categories
		WHERE id = $1
	`

	category, err := scanCategory(s.conn.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category by ID: %w", err)
	}

	return category, nil
}

// UpdateCategory updates the mutable fields of a category.
// The owner is never changed.
func (s *pgSession) UpdateCategory(ctx context.Context, category *model.Category) error {
	query := `
		UPDATE categories
		SET name = $2, description = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := s.conn.Exec(ctx, query,
		category.ID,
		category.Name,
		category.Description,
		category.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// DeleteCategory removes a category that no task references.
func (s *pgSession) DeleteCategory(ctx context.Context, id string) error {
	result, err := s.conn.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return ErrCategoryInUse
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// ListCategoriesByUser returns the categories owned by userID.
func (s *pgSession) ListCategoriesByUser(ctx context.Context, userID string) ([]*model.Category, error) {
	query := `
		SELECT id, user_id, name, description, created_at, updated_at
		FROM categories
		WHERE user_id = $1
		ORDER BY created_at, id
	`

	rows, err := s.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*model.Category, 0)
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// CountTasksByCategory returns how many tasks reference the category.
func (s *pgSession) CountTasksByCategory(ctx context.Context, categoryID string) (int64, error) {
	var count int64
	err := s.conn.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE category_id = $1`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks by category: %w", err)
	}
	return count, nil
}

func scanCategory(row pgx.Row) (*model.Category, error) {
	var category model.Category
	err := row.Scan(
		&category.ID,
		&category.UserID,
		&category.Name,
		&category.Description,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &category, nil
}
