package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/tareasapi/tareas/internal/auth"
	"github.com/tareasapi/tareas/internal/metrics"
	"github.com/tareasapi/tareas/internal/model"
	"github.com/tareasapi/tareas/internal/repository"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 50
)

// Token is the credential returned by registration and login.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// UserService handles registration, login and the user listing.
type UserService struct {
	hasher  *auth.Hasher
	tokens  *auth.TokenIssuer
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(hasher *auth.Hasher, tokens *auth.TokenIssuer, recorder metrics.Recorder, logger *slog.Logger) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		hasher:  hasher,
		tokens:  tokens,
		metrics: recorder,
		logger:  logger,
		now:     time.Now,
	}
}

// RegisterInput defines input for creating a user.
type RegisterInput struct {
	Username     string
	Password     string
	ProfileImage string
}

// Register creates a user and logs them in.
func (s *UserService) Register(ctx context.Context, store repository.Store, input RegisterInput) (*Token, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, ErrMissingField
	}
	if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		return nil, ErrInvalidUsername
	}

	if _, err := store.GetUserByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Username:     username,
		PasswordHash: hash,
		ProfileImage: model.ProfileImageOrDefault(input.ProfileImage),
		CreatedAt:    s.now().UTC(),
	}

	if err := store.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, repository.ErrUsernameExists) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserRegistered()
	s.logger.Info("user registered", "user_id", user.ID)

	return s.issue(user.ID)
}

// Login verifies credentials and issues a token.
func (s *UserService) Login(ctx context.Context, store repository.Store, username, password string) (*Token, error) {
	user, err := store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		s.hasher.VerifyDummy(password)
		s.metrics.IncLogin("failure")
		return nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		s.logger.Error("stored password hash is unreadable", "user_id", user.ID, "error", err)
		s.metrics.IncLogin("failure")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		s.metrics.IncLogin("failure")
		return nil, ErrInvalidCredentials
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, store, user.ID, password)
	}

	s.metrics.IncLogin("success")
	return s.issue(user.ID)
}

// Logout acknowledges a logout. Tokens are not revocable server side.
func (s *UserService) Logout() string {
	return "Sesión cerrada exitosamente"
}

// ListUsers returns every user with their tasks attached.
func (s *UserService) ListUsers(ctx context.Context, store repository.Store) ([]*model.User, error) {
	users, err := store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	tasks, err := store.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	byUser := make(map[string][]*model.Task, len(users))
	for _, task := range tasks {
		byUser[task.UserID] = append(byUser[task.UserID], task)
	}
	for _, user := range users {
		user.Tasks = byUser[user.ID]
		if user.Tasks == nil {
			user.Tasks = []*model.Task{}
		}
	}

	return users, nil
}

func (s *UserService) issue(userID string) (*Token, error) {
	token, expiresAt, err := s.tokens.Issue(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &Token{AccessToken: token, TokenType: auth.TokenType, ExpiresAt: expiresAt}, nil
}

// rehash upgrades a legacy or weaker hash. Failures only cost an upgrade.
func (s *UserService) rehash(ctx context.Context, store repository.Store, userID, password string) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Warn("password rehash failed", "user_id", userID, "error", err)
		return
	}
	if err := store.UpdateUserPasswordHash(ctx, userID, hash); err != nil {
		s.logger.Warn("password rehash not stored", "user_id", userID, "error", err)
		return
	}
	s.logger.Info("password hash upgraded", "user_id", userID)
}
