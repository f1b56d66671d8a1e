package dbx

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect names the SQL flavour behind a connection. The values double as
// goose dialect names.
type Dialect string

const (
	DialectPostgres Dialect = "pgx"
	DialectSQLite   Dialect = "sqlite"
)

var ErrUnsupportedDSN = errors.New("unsupported database DSN")

// ParseDSN maps a connection string to its driver and the DSN that driver
// expects.
//
//	postgres://..., postgresql://...  -> pgx, unchanged
//	sqlite:<path>                     -> sqlite, "<path>"
//	file:<path>                       -> sqlite, unchanged
func ParseDSN(dsn string) (Dialect, string, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DialectPostgres, dsn, nil
	case strings.HasPrefix(dsn, "sqlite:"):
		return DialectSQLite, strings.TrimPrefix(dsn, "sqlite:"), nil
	case strings.HasPrefix(dsn, "file:"):
		return DialectSQLite, dsn, nil
	default:
		return "", "", ErrUnsupportedDSN
	}
}

// Open opens a pool for dsn. The pool is not pinged.
func Open(dsn string) (*sql.DB, Dialect, error) {
	dialect, driverDSN, err := ParseDSN(dsn)
	if err != nil {
		return nil, "", err
	}

	db, err := sql.Open(string(dialect), driverDSN)
	if err != nil {
		return nil, "", fmt.Errorf("db open error: %w", err)
	}

	switch dialect {
	case DialectSQLite:
		// sqlite serialises writers; one connection avoids SQLITE_BUSY and
		// keeps in-memory databases alive for the pool's lifetime.
		db.SetMaxOpenConns(1)
	default:
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, dialect, nil
}
