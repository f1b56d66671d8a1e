package entries

import (
	"context"

	"github.com/johnsonjew/learning-journal/internal/server/models"
)

// Repository persists journal entries. Implementations report a missing row
// as common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, entry *models.Entry) (*models.Entry, error)
	Update(ctx context.Context, id int64, title, text string) (*models.Entry, error)
	GetByID(ctx context.Context, id int64) (*models.Entry, error)
	SelectAll(ctx context.Context) ([]*models.Entry, error)
}
