package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/datekey"
	sc "github.com/dmitrijs2005/daybook/internal/server/config"
	"github.com/dmitrijs2005/daybook/internal/server/models"
	"github.com/dmitrijs2005/daybook/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// EntryService owns one-entry-per-day storage for authenticated users.
type EntryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	listLimit   int
}

func NewEntryService(db *sql.DB, repomanager repomanager.RepositoryManager, config *sc.Config) *EntryService {
	limit := config.ListLimit
	if limit <= 0 {
		limit = common.DefaultPageSize
	}
	return &EntryService{
		db:          db,
		repomanager: repomanager,
		listLimit:   limit,
	}
}

// Upsert creates or replaces userID's entry on date.
func (s *EntryService) Upsert(ctx context.Context, userID string, date datekey.Key, content string) (*models.Entry, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: %w", common.ErrorValidation, common.ErrInvalidDate)
	}
	e, err := s.repomanager.Entries(s.db).Upsert(ctx, &models.Entry{
		ID:      uuid.NewString(),
		UserID:  userID,
		Date:    date,
		Content: content,
	})
	if err != nil {
		return nil, fmt.Errorf("error saving entry: %w", err)
	}
	return e, nil
}

// List returns a page of entries, newest first. A non-positive or too large
// limit is clamped to the configured page size.
func (s *EntryService) List(ctx context.Context, userID string, skip, limit int) ([]*models.Entry, error) {
	if skip < 0 {
		return nil, fmt.Errorf("%w: negative skip", common.ErrorValidation)
	}
	if limit <= 0 || limit > s.listLimit {
		limit = s.listLimit
	}
	return s.repomanager.Entries(s.db).List(ctx, userID, skip, limit)
}

// All pages through every entry of userID, newest first.
func (s *EntryService) All(ctx context.Context, userID string) ([]*models.Entry, error) {
	repo := s.repomanager.Entries(s.db)
	var out []*models.Entry
	for skip := 0; ; skip += s.listLimit {
		page, err := repo.List(ctx, userID, skip, s.listLimit)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) < s.listLimit {
			return out, nil
		}
	}
}

// Get returns common.ErrorNotFound when there is no entry on date.
func (s *EntryService) Get(ctx context.Context, userID string, date datekey.Key) (*models.Entry, error) {
	return s.repomanager.Entries(s.db).GetByDate(ctx, userID, date)
}

// Delete returns common.ErrorNotFound when there is no entry on date.
func (s *EntryService) Delete(ctx context.Context, userID string, date datekey.Key) error {
	return s.repomanager.Entries(s.db).DeleteByDate(ctx, userID, date)
}
