// Package entries provides the SQL-backed repository for journal entries.
// The queries are portable between PostgreSQL (pgx) and SQLite.
package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/johnsonjew/learning-journal/internal/common"
	"github.com/johnsonjew/learning-journal/internal/dbx"
	"github.com/johnsonjew/learning-journal/internal/server/models"
)

// SQLRepository implements entry storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type SQLRepository struct {
	db dbx.DBTX
}

// NewSQLRepository constructs a repository bound to the given DBTX.
func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

// Create inserts entry and fills in the store-assigned ID.
func (r *SQLRepository) Create(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	query := `INSERT INTO entries (title, text, date)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query, entry.Title, entry.Text, entry.Date).Scan(&entry.ID)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return entry, nil
}

// Update replaces title and text of entry id. The date column is left alone.
func (r *SQLRepository) Update(ctx context.Context, id int64, title, text string) (*models.Entry, error) {
	query := `UPDATE entries SET title = $1, text = $2
		WHERE id = $3
		RETURNING id, title, text, date`

	return scanEntry(r.db.QueryRowContext(ctx, query, title, text, id))
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.Entry, error) {
	query := `SELECT id, title, text, date FROM entries WHERE id = $1`

	return scanEntry(r.db.QueryRowContext(ctx, query, id))
}

// SelectAll returns every entry, newest first. Entries sharing a date are
// ordered by descending id, i.e. the later insert comes first.
func (r *SQLRepository) SelectAll(ctx context.Context) ([]*models.Entry, error) {
	query := `SELECT id, title, text, date FROM entries ORDER BY date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Entry, 0)
	for rows.Next() {
		var item models.Entry
		if err := rows.Scan(&item.ID, &item.Title, &item.Text, &item.Date); err != nil {
			return nil, err
		}
		item.Date = item.Date.UTC()
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanEntry(row *sql.Row) (*models.Entry, error) {
	entry := &models.Entry{}
	err := row.Scan(&entry.ID, &entry.Title, &entry.Text, &entry.Date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	entry.Date = entry.Date.UTC()
	return entry, nil
}
