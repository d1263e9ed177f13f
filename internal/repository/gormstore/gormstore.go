// Package gormstore implements the repository Store on top of gorm. It backs
// local development and the test suite with SQLite.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tareasapi/tareas/internal/repository"
)

// Store is a repository.Provider backed by a gorm database handle.
type Store struct {
	db *gorm.DB
}

// Open opens a SQLite database and, when migrate is set, creates the schema.
func Open(dsn string, migrate bool, log *slog.Logger) (*Store, error) {
	if dsn == "" {
		dsn = "tareas.db"
	}

	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	if log == nil {
		log = slog.Default()
	}

	dbLogger := logger.New(
		slogWriter{log: log},
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(withForeignKeys(dsn)), &gorm.Config{
		Logger:         dbLogger,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// SQLite allows one writer; a single connection also keeps shared-cache
	// in-memory databases alive for the life of the Store.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if migrate {
		if err := AutoMigrate(db); err != nil {
			return nil, err
		}
	}

	return &Store{db: db}, nil
}

// OpenInMemory opens a private in-memory database with the schema applied.
// Each distinct name yields an isolated database.
func OpenInMemory(name string, log *slog.Logger) (*Store, error) {
	return Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), true, log)
}

// AutoMigrate creates or updates the users, categories and tasks tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&userRow{}, &categoryRow{}, &taskRow{}); err != nil {
		return fmt.Errorf("migrate db: %w", err)
	}
	return nil
}

// Acquire returns a session bound to ctx.
func (s *Store) Acquire(ctx context.Context) (repository.Session, error) {
	return &session{db: s.db.WithContext(ctx)}, nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *Store) Close() {
	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// DB returns the gorm handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// session is a Store bound to one request context.
type session struct {
	db *gorm.DB
}

// Release is a no-op: gorm returns connections to the pool per statement.
func (s *session) Release() {}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isForeignKeyViolation reports a failed foreign key check. The sqlite
// driver only translates SQLITE_CONSTRAINT_FOREIGNKEY; databases created
// with ON DELETE RESTRICT report SQLITE_CONSTRAINT_TRIGGER with the same
// message, so the message is matched too.
func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// ensureDirForSQLite creates the parent dir for a SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}

// withForeignKeys turns on SQLite foreign key enforcement for every
// connection in the pool.
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}

// slogWriter adapts slog to gorm's logger.Writer.
type slogWriter struct {
	log *slog.Logger
}

func (w slogWriter) Printf(format string, args ...interface{}) {
	w.log.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "gorm")
}
