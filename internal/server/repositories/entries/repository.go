package entries

import (
	"context"

	"github.com/dmitrijs2005/daybook/internal/datekey"
	"github.com/dmitrijs2005/daybook/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, entry *models.Entry) (*models.Entry, error)
	List(ctx context.Context, userID string, skip, limit int) ([]*models.Entry, error)
	GetByDate(ctx context.Context, userID string, date datekey.Key) (*models.Entry, error)
	DeleteByDate(ctx context.Context, userID string, date datekey.Key) error
}
