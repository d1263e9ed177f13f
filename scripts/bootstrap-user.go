package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/tareasapi/tareas/internal/app"
	"github.com/tareasapi/tareas/internal/auth"
	"github.com/tareasapi/tareas/internal/config"
	"github.com/tareasapi/tareas/internal/service"
)

type output struct {
	Username    string    `json:"nombre_usuario"`
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func main() {
	var (
		username = flag.String("username", "admin", "Username to register")
		password = flag.String("password", os.Getenv("BOOTSTRAP_PASSWORD"), "Password for the new user")
		format   = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "password is required (-password or BOOTSTRAP_PASSWORD)")
		os.Exit(1)
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", app.SanitizeError(err, cfg.DatabaseURL))
		os.Exit(1)
	}
	defer store.Close()

	hasher, err := auth.NewHasher(cfg.HashParams())
	if err != nil {
		fmt.Fprintln(os.Stderr, "hasher:", err)
		os.Exit(1)
	}
	tokens, err := auth.NewTokenIssuer(cfg.TokenConfig())
	if err != nil {
		fmt.Fprintln(os.Stderr, "token issuer:", err)
		os.Exit(1)
	}

	session, err := store.Acquire(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "acquire session:", err)
		os.Exit(1)
	}
	defer session.Release()

	users := service.NewUserService(hasher, tokens, nil, logger)
	token, err := users.Register(ctx, session, service.RegisterInput{
		Username: *username,
		Password: *password,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "register user:", err)
		os.Exit(1)
	}

	out := output{
		Username:    *username,
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt,
	}

	switch *format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintln(os.Stderr, "encode output:", err)
			os.Exit(1)
		}
	default:
		fmt.Printf("user: %s\ntoken: %s\nexpires_at: %s\n", out.Username, out.AccessToken, out.ExpiresAt.Format(time.RFC3339))
	}
}
