package persistence

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFiles embed.FS

// RunMigrations applies the embedded migrations for the store's dialect.
// The migrate instance is not closed because that would close the shared *sql.DB.
func RunMigrations(store *Store, logger *zap.Logger) error {
	if store == nil || store.DB == nil {
		logger.Warn("no store available; skipping migrations")
		return nil
	}

	var (
		dir    string
		driver database.Driver
		err    error
	)
	switch store.driver {
	case config.DriverSQLite:
		dir = "migrations/sqlite"
		driver, err = migratesqlite.WithInstance(store.DB, &migratesqlite.Config{})
	case config.DriverPostgres:
		dir = "migrations/postgres"
		driver, err = migratepgx.WithInstance(store.DB, &migratepgx.Config{})
	default:
		return fmt.Errorf("unsupported store driver %q", store.driver)
	}
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	source, err := iofs.New(migrationFiles, dir)
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, store.driver, driver)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("schema up to date")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, _, _ := m.Version()
	logger.Info("migrations applied", zap.Uint("version", version))
	return nil
}
