// Package services contains the journal's business logic. This file
// implements EntryService, the entry store: writing, changing, fetching and
// listing entries, and rendering their Markdown text.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/johnsonjew/learning-journal/internal/common"
	"github.com/johnsonjew/learning-journal/internal/dbx"
	"github.com/johnsonjew/learning-journal/internal/server/models"
	"github.com/johnsonjew/learning-journal/internal/server/repositories/repomanager"
)

// timeNow is a seam for tests that need stable entry dates.
var timeNow = time.Now

// MarkupRenderer converts entry text to display-ready HTML.
type MarkupRenderer interface {
	Render(source string) template.HTML
}

type EntryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	renderer    MarkupRenderer
}

func NewEntryService(db *sql.DB, m repomanager.RepositoryManager, renderer MarkupRenderer) *EntryService {
	return &EntryService{
		db:          db,
		repomanager: m,
		renderer:    renderer,
	}
}

// Write validates and stores a new entry dated now (UTC). The returned entry
// carries the store-assigned ID.
func (s *EntryService) Write(ctx context.Context, title, text string) (*models.Entry, error) {
	if err := validateEntry(title, text); err != nil {
		return nil, err
	}

	entry := &models.Entry{
		Title: title,
		Text:  text,
		Date:  entryDate(timeNow()),
	}

	repo := s.repomanager.Entries(s.db)
	created, err := repo.Create(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("error creating entry: %w", err)
	}
	return created, nil
}

// Change replaces title and text of entry id, keeping its ID and date.
// Concurrent changes of one entry are last-write-wins.
func (s *EntryService) Change(ctx context.Context, id int64, title, text string) (*models.Entry, error) {
	if err := validateEntry(title, text); err != nil {
		return nil, err
	}

	var updated *models.Entry
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		updated, err = s.repomanager.Entries(tx).Update(ctx, id, title, text)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error changing entry %d: %w", id, err)
	}
	return updated, nil
}

// Get returns entry id or an error matching common.ErrorNotFound.
func (s *EntryService) Get(ctx context.Context, id int64) (*models.Entry, error) {
	entry, err := s.repomanager.Entries(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting entry %d: %w", id, err)
	}
	return entry, nil
}

// ListAll returns every entry, newest first.
func (s *EntryService) ListAll(ctx context.Context) ([]*models.Entry, error) {
	list, err := s.repomanager.Entries(s.db).SelectAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing entries: %w", err)
	}
	return list, nil
}

// RenderMarkup returns the sanitized HTML form of entry's text.
func (s *EntryService) RenderMarkup(entry *models.Entry) template.HTML {
	return s.renderer.Render(entry.Text)
}

func validateEntry(title, text string) error {
	missingTitle := strings.TrimSpace(title) == ""
	missingText := strings.TrimSpace(text) == ""

	switch {
	case missingTitle && missingText:
		return common.NewValidationError("title and text are required")
	case missingTitle:
		return common.NewValidationError("title is required")
	case missingText:
		return common.NewValidationError("text is required")
	case utf8.RuneCountInString(title) > common.MaxTitleLength:
		return common.NewValidationError(fmt.Sprintf("title must be at most %d characters", common.MaxTitleLength))
	}
	return nil
}

// entryDate converts t to UTC and rounds it up to whole microseconds, the
// precision PostgreSQL keeps, so a stored date never precedes the write.
func entryDate(t time.Time) time.Time {
	t = t.UTC().Round(0)
	d := t.Truncate(time.Microsecond)
	if d.Before(t) {
		d = d.Add(time.Microsecond)
	}
	return d
}
