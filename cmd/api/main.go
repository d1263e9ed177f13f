// Package main is the entrypoint for the Tareas API server.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/tareasapi/tareas/internal/app"
	"github.com/tareasapi/tareas/internal/auth"
	"github.com/tareasapi/tareas/internal/cache"
	"github.com/tareasapi/tareas/internal/config"
	"github.com/tareasapi/tareas/internal/metrics"
	"github.com/tareasapi/tareas/internal/server"
)

func main() {
	ctx := context.Background()

	// A missing .env file is fine; the environment wins over it.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := app.NewLogger(cfg, os.Stdout)

	// Initialize database
	store, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("driver", cfg.DatabaseDriver),
			slog.String("error", app.SanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", app.RedactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database", "driver", cfg.DatabaseDriver)

	// Redis is optional; without it rate limiting stays in process.
	var cacheClient *cache.Cache
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", app.SanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", app.RedactURL(cfg.RedisURL)),
			)
			store.Close()
			os.Exit(1)
		}
		logger.Info("connected to Redis")
	}

	hasher, err := auth.NewHasher(cfg.HashParams())
	if err != nil {
		logger.Error("invalid password hash parameters", "error", err)
		os.Exit(1)
	}
	tokens, err := auth.NewTokenIssuer(cfg.TokenConfig())
	if err != nil {
		logger.Error("invalid token configuration", "error", err)
		os.Exit(1)
	}

	router := app.NewRouter(app.Deps{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Hasher:  hasher,
		Tokens:  tokens,
		Metrics: metrics.NewInMemory(),
		Cache:   cacheClient,
	})

	srv := server.New(router, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("database", func(context.Context) error {
		store.Close()
		return nil
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
