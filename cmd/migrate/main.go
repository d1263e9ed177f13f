// Command migrate applies or rolls back the PostgreSQL schema.
//
//	migrate up
//	migrate down [steps]
//	migrate version
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/tareasapi/tareas/internal/repository"
)

type migrateConfig struct {
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(os.Args[1:], logger); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string, logger *slog.Logger) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: migrate up | down [steps] | version")
	}

	_ = godotenv.Load()

	var cfg migrateConfig
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	migrator, err := repository.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer migrator.Close()

	switch args[0] {
	case "up":
		if err := migrator.Up(); err != nil {
			return err
		}
	case "down":
		steps := 1
		if len(args) > 1 {
			if steps, err = strconv.Atoi(args[1]); err != nil {
				return fmt.Errorf("invalid step count %q", args[1])
			}
		}
		if err := migrator.Down(steps); err != nil {
			return err
		}
	case "version":
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	logger.Info("schema version", "version", version, "dirty", dirty)
	return nil
}
