package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"
	"github.com/yusufkecer/medfit-backend/internal/config"
)

//go:embed migrations
var migrationsFS embed.FS

// RunMigrations applies every pending migration for the configured backend.
// It uses its own connection, closed before returning.
func RunMigrations(cfg *config.Config) error {
	m, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	log.Info().Uint("version", version).Str("backend", cfg.DBBackend).Msg("schema up to date")
	return nil
}

// RollbackMigrations reverts every applied migration.
func RollbackMigrations(cfg *config.Config) error {
	m, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	log.Info().Str("backend", cfg.DBBackend).Msg("schema rolled back")
	return nil
}

func newMigrator(cfg *config.Config) (*migrate.Migrate, error) {
	dialect, err := DialectFor(cfg.DBBackend)
	if err != nil {
		return nil, err
	}
	source, err := migrationSource(dialect)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(dialect.DriverName(), cfg.DSN())
	if err != nil {
		_ = source.Close()
		return nil, fmt.Errorf("failed to open database for migrations: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = source.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database for migrations: %w", err)
	}

	var driver database.Driver
	switch dialect {
	case SQLite:
		driver, err = migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	case Postgres:
		driver, err = migratepgx.WithInstance(conn, &migratepgx.Config{})
	default:
		driver, err = migratemysql.WithInstance(conn, &migratemysql.Config{})
	}
	if err != nil {
		_ = source.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create %s migrate driver: %w", dialect, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, string(dialect), driver)
	if err != nil {
		_ = source.Close()
		_ = driver.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// migrationSource reads the embedded migrations of one dialect.
func migrationSource(dialect Dialect) (source.Driver, error) {
	sub, err := fs.Sub(migrationsFS, "migrations/"+string(dialect))
	if err != nil {
		return nil, fmt.Errorf("failed to access %s migrations: %w", dialect, err)
	}
	src, err := iofs.New(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create %s migration source: %w", dialect, err)
	}
	return src, nil
}

func closeMigrator(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil || dbErr != nil {
		log.Warn().AnErr("source", srcErr).AnErr("database", dbErr).Msg("failed to close migrator")
	}
}
