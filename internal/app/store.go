package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tareasapi/tareas/internal/cache"
	"github.com/tareasapi/tareas/internal/config"
	"github.com/tareasapi/tareas/internal/repository"
	"github.com/tareasapi/tareas/internal/repository/gormstore"
)

// OpenStore connects the backend selected by DATABASE_DRIVER and, when
// AUTO_MIGRATE is set, brings its schema up to date.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.Provider, error) {
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		store, err := gormstore.Open(cfg.DatabaseURL, cfg.AutoMigrate, logger)
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.DriverPostgres:
		if cfg.AutoMigrate {
			if err := MigrateUp(cfg.DatabaseURL, logger); err != nil {
				return nil, err
			}
		}
		repo, err := repository.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return repo, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}

// MigrateUp applies every pending PostgreSQL migration.
func MigrateUp(databaseURL string, logger *slog.Logger) error {
	migrator, err := repository.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer migrator.Close()

	if err := migrator.Up(); err != nil {
		return err
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	logger.Info("database migrated", "version", version, "dirty", dirty)
	return nil
}

// NewAuthLimiter returns the limiter for register and login. Redis keeps the
// buckets shared across instances; without it each process limits alone.
func NewAuthLimiter(cfg *config.Config, c *cache.Cache) cache.Limiter {
	if c != nil {
		return cache.NewRedisLimiter(c, "auth", cfg.RateLimitAuthRPS, cfg.RateLimitAuthBurst)
	}
	return cache.NewLocalLimiter(cfg.RateLimitAuthRPS, cfg.RateLimitAuthBurst)
}
