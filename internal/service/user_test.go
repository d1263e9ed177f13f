package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/tareasapi/tareas/internal/auth"
	"github.com/tareasapi/tareas/internal/model"
)

func TestRegister_IssuesTokenAndRejectsDuplicate(t *testing.T) {
	env := newTestEnv(t)

	token, err := env.users.Register(env.ctx, env.store, RegisterInput{Username: "alice", Password: "pw123"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if token.AccessToken == "" || token.TokenType != auth.TokenType {
		t.Fatalf("unexpected token %+v", token)
	}

	userID, err := env.tokens.Verify(token.AccessToken)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	user, err := env.store.GetUserByID(env.ctx, userID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if user.PasswordHash == "pw123" || !strings.HasPrefix(user.PasswordHash, "$argon2id$") {
		t.Errorf("password stored in clear or wrong format: %q", user.PasswordHash)
	}
	if user.ProfileImage != model.DefaultProfileImage {
		t.Errorf("ProfileImage = %q, want default", user.ProfileImage)
	}

	_, err = env.users.Register(env.ctx, env.store, RegisterInput{Username: "alice", Password: "other"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if env.metrics.Snapshot().UsersRegistered != 1 {
		t.Errorf("UsersRegistered = %d, want 1", env.metrics.Snapshot().UsersRegistered)
	}
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{"missing_username", RegisterInput{Password: "pw"}, ErrMissingField},
		{"missing_password", RegisterInput{Username: "bob"}, ErrMissingField},
		{"short_username", RegisterInput{Username: "ab", Password: "pw"}, ErrInvalidUsername},
		{"long_username", RegisterInput{Username: strings.Repeat("x", 51), Password: "pw"}, ErrInvalidUsername},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.users.Register(env.ctx, env.store, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRegister_CustomProfileImage(t *testing.T) {
	env := newTestEnv(t)

	token, err := env.users.Register(env.ctx, env.store, RegisterInput{Username: "carol", Password: "pw", ProfileImage: "carol.png"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	userID, _ := env.tokens.Verify(token.AccessToken)
	user, _ := env.store.GetUserByID(env.ctx, userID)
	if user.ProfileImage != "carol.png" {
		t.Errorf("ProfileImage = %q", user.ProfileImage)
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	userID := env.register(t, "alice")

	token, err := env.users.Login(env.ctx, env.store, "alice", "pw123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	got, err := env.tokens.Verify(token.AccessToken)
	if err != nil || got != userID {
		t.Fatalf("token subject = %q (%v), want %q", got, err, userID)
	}

	for _, creds := range [][2]string{{"alice", "wrong"}, {"nobody", "pw123"}} {
		_, err := env.users.Login(env.ctx, env.store, creds[0], creds[1])
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login(%q, %q): expected ErrInvalidCredentials, got %v", creds[0], creds[1], err)
		}
	}

	snap := env.metrics.Snapshot()
	if snap.LoginsSucceeded != 1 || snap.LoginsFailed != 2 {
		t.Errorf("logins = %d/%d, want 1/2", snap.LoginsSucceeded, snap.LoginsFailed)
	}
}

func TestLogin_UpgradesLegacyBcryptHash(t *testing.T) {
	env := newTestEnv(t)

	legacy, err := bcrypt.GenerateFromPassword([]byte("secreto"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	user := &model.User{
		ID:           ulid.Make().String(),
		Username:     "legacy",
		PasswordHash: string(legacy),
		ProfileImage: model.DefaultProfileImage,
		CreatedAt:    fixedNow,
	}
	if err := env.store.CreateUser(env.ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if _, err := env.users.Login(env.ctx, env.store, "legacy", "secreto"); err != nil {
		t.Fatalf("Login with bcrypt hash failed: %v", err)
	}

	stored, _ := env.store.GetUserByID(env.ctx, user.ID)
	if !strings.HasPrefix(stored.PasswordHash, "$argon2id$") {
		t.Errorf("hash not upgraded: %q", stored.PasswordHash)
	}
	if _, err := env.users.Login(env.ctx, env.store, "legacy", "secreto"); err != nil {
		t.Fatalf("Login after upgrade failed: %v", err)
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	if env.users.Logout() == "" {
		t.Error("Logout should return a message")
	}
}

func TestListUsers_NestsTasks(t *testing.T) {
	env := newTestEnv(t)

	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	cat := env.category(t, alice, "Trabajo")
	env.task(t, alice, cat.ID)
	env.task(t, alice, cat.ID)

	users, err := env.users.ListUsers(env.ctx, env.store)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("len(users) = %d, want 2", len(users))
	}

	counts := map[string]int{}
	for _, u := range users {
		if u.Tasks == nil {
			t.Errorf("user %s has nil Tasks", u.Username)
		}
		counts[u.ID] = len(u.Tasks)
	}
	if counts[alice] != 2 || counts[bob] != 0 {
		t.Errorf("task counts = %v", counts)
	}
}
