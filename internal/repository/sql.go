package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/yusufkecer/medfit-backend/internal/db"
)

// timeLayout is fixed width so stored timestamps sort and compare as text on
// every backend.
const timeLayout = "2006-01-02T15:04:05Z"

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", s, err)
	}
	return t, nil
}

// insertID runs an INSERT and returns the generated id.
func insertID(ctx context.Context, q querier, dialect db.Dialect, query string, args ...any) (int64, error) {
	if dialect.SupportsReturning() {
		var id int64
		err := q.QueryRowContext(ctx, dialect.Rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}
	result, err := q.ExecContext(ctx, dialect.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// execAffected runs a statement and reports whether it touched any row.
func execAffected(ctx context.Context, q querier, dialect db.Dialect, query string, args ...any) (bool, error) {
	result, err := q.ExecContext(ctx, dialect.Rebind(query), args...)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
