package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
	"github.com/yusufkecer/medfit-backend/internal/config"
	_ "modernc.org/sqlite"
)

// Connect opens and pings the configured store backend.
func Connect(cfg *config.Config) (*sql.DB, error) {
	dialect, err := DialectFor(cfg.DBBackend)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.DriverName(), cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}

	if dialect == SQLite {
		// A single writer avoids "database is locked" under concurrent requests.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dialect, err)
	}

	log.Info().Str("backend", string(dialect)).Msg("database connection established")
	return db, nil
}
