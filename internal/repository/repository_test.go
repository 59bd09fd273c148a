package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yusufkecer/medfit-backend/internal/config"
	"github.com/yusufkecer/medfit-backend/internal/db"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	cfg := &config.Config{
		DBBackend:  config.BackendSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "medfit.db"),
	}
	require.NoError(t, db.RunMigrations(cfg))
	conn, err := db.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T { return &v }

var ctx = context.Background()
