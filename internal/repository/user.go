package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tareasapi/tareas/internal/model"
)

// CreateUser inserts a new user into the database.
func (s *pgSession) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, username, password_hash, profile_image, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.conn.Exec(ctx, query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.ProfileImage,
		user.CreatedAt,
	)

	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return ErrUsernameExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their ID.
func (s *pgSession) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `
		SELECT id, username, password_hash, profile_image, created_at
		FROM users
		WHERE id = $1
	`

	user, err := scanUser(s.conn.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetUserByUsername retrieves a user by their username.
func (s *pgSession) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `
		SELECT id, username, password_hash, profile_image, created_at
		FROM users
		WHERE username = $1
	`

	user, err := scanUser(s.conn.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return user, nil
}

// UpdateUserPasswordHash replaces the stored hash (used for rehash on login).
func (s *pgSession) UpdateUserPasswordHash(ctx context.Context, id, passwordHash string) error {
	result, err := s.conn.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListUsers returns every user ordered by creation time.
func (s *pgSession) ListUsers(ctx context.Context) ([]*model.User, error) {
	query := `
		SELECT id, username, password_hash, profile_image, created_at
		FROM users
		ORDER BY created_at, id
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.ProfileImage,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
