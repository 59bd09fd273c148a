package db

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yusufkecer/medfit-backend/internal/config"
)

// Dialect captures the SQL differences between the supported backends.
type Dialect string

const (
	MySQL    Dialect = config.BackendMySQL
	SQLite   Dialect = config.BackendSQLite
	Postgres Dialect = config.BackendPostgres
)

func DialectFor(backend string) (Dialect, error) {
	switch d := Dialect(backend); d {
	case MySQL, SQLite, Postgres:
		return d, nil
	default:
		return "", fmt.Errorf("unsupported backend: %s", backend)
	}
}

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	switch d {
	case Postgres:
		return "pgx"
	case SQLite:
		return "sqlite"
	default:
		return "mysql"
	}
}

// Rebind rewrites ? placeholders into $1, $2, ... for PostgreSQL. Queries in
// this repository never contain a literal question mark.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SupportsReturning reports whether INSERT ... RETURNING id is the way to
// get generated keys. pgx does not implement LastInsertId.
func (d Dialect) SupportsReturning() bool {
	return d == Postgres
}
