package repomanager

import (
	"context"
	"database/sql"

	"github.com/johnsonjew/learning-journal/internal/dbx"
	"github.com/johnsonjew/learning-journal/internal/server/repositories/entries"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Entries(db dbx.DBTX) entries.Repository
}
