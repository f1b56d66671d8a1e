// Package repomanager vends repository implementations bound to a DBTX and
// runs the embedded goose migrations for the configured SQL dialect.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/johnsonjew/learning-journal/internal/dbx"
	"github.com/johnsonjew/learning-journal/internal/logging"
	"github.com/johnsonjew/learning-journal/internal/server/migrations"
	"github.com/johnsonjew/learning-journal/internal/server/repositories/entries"
	"github.com/pressly/goose/v3"
)

// SQLRepositoryManager serves both PostgreSQL and SQLite; only the migration
// directory differs between them.
type SQLRepositoryManager struct {
	dialect dbx.Dialect
	logger  logging.Logger
}

// Entries returns an entries.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Entries(db dbx.DBTX) entries.Repository {
	return entries.NewSQLRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations for m's dialect.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(gooseLogger{logger: m.logger})
	if err := goose.SetDialect(string(m.dialect)); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, m.migrationsDir()); err != nil {
		return err
	}
	return nil
}

func (m *SQLRepositoryManager) migrationsDir() string {
	if m.dialect == dbx.DialectSQLite {
		return "sqlite"
	}
	return "postgres"
}

// NewSQLRepositoryManager constructs a RepositoryManager for dialect.
// Migration progress is reported through logger.
func NewSQLRepositoryManager(dialect dbx.Dialect, logger logging.Logger) RepositoryManager {
	return &SQLRepositoryManager{dialect: dialect, logger: logger.With("module", "migrations")}
}
