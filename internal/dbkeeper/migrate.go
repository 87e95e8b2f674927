package dbkeeper

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate"
	"github.com/golang-migrate/migrate/database/postgres"
	_ "github.com/golang-migrate/migrate/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

// Migrate applies the migrations found in dir to the database at dsn.
// A schema that is already current is not an error.
func Migrate(dsn, dir string, log Log) error {
	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("unable to parse connection string: %w", err)
	}
	sqlDB := stdlib.OpenDB(*connConfig)
	defer sqlDB.Close()

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("error getting driver: %w", err)
	}

	path, err := migrationsDir(dir)
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+path, "postgres", driver)
	if err != nil {
		return fmt.Errorf("error creating migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error while performing migration: %w", err)
	}

	log.Info("Migrations applied", zap.String("path", path))
	return nil
}

// migrationsDir resolves dir against the working directory and checks it exists.
func migrationsDir(dir string) (string, error) {
	path, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("error resolving migrations path: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("migrations directory %s: %w", path, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("migrations path %s is not a directory", path)
	}
	return path, nil
}
