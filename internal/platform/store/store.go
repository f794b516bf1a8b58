// Package store opens the configured LedgerStore and brings its schema up to date.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	portsrepo "github.com/SscSPs/coop_backoffice/internal/core/ports/repositories"
	"github.com/SscSPs/coop_backoffice/internal/platform/config"
	"github.com/SscSPs/coop_backoffice/internal/repositories/database/memory"
	"github.com/SscSPs/coop_backoffice/internal/repositories/database/pgsql"
	"github.com/SscSPs/coop_backoffice/pkg/database"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// DefaultMigrationsPath is relative to the working directory of the binary.
const DefaultMigrationsPath = "file://migrations"

// Open returns the LedgerStore selected by cfg.StoreDriver and a func that releases it.
func Open(ctx context.Context, cfg *config.Config, migrationsPath string, logger *slog.Logger) (portsrepo.LedgerStore, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMemory, "":
		logger.Warn("Using in-memory ledger store; data is lost on exit")
		return memory.NewStore(), func() {}, nil
	case config.StorePostgres:
		if err := RunMigrations(cfg.DatabaseURL, migrationsPath, logger); err != nil {
			return nil, nil, err
		}
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database pool: %w", err)
		}
		return pgsql.NewDocumentStore(pool), func() { database.ClosePgxPool(pool, logger) }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// RunMigrations applies every pending "up" migration.
func RunMigrations(databaseURL, migrationsPath string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")
	// Open a temporary standard sql.DB connection for migrations
	// Using pgx/v5/stdlib driver to be compatible with the main pool
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database connection for migrations: %w", err)
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database for migrations: %w", err)
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create postgres driver instance for migrations: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(migrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", upErr)
	}
	// Check for dirty migrations after running Up.
	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return fmt.Errorf("migration source error: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("migration database error: %w", dbErr)
	}

	if errors.Is(upErr, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
