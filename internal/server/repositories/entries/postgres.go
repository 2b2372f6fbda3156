// Package entries provides the PostgreSQL-backed repository for diary
// entries. A user has at most one row per civil day.
package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/datekey"
	"github.com/dmitrijs2005/daybook/internal/dbx"
	"github.com/dmitrijs2005/daybook/internal/server/models"
)

// PostgresRepository implements entry storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert writes entry.Content for (entry.UserID, entry.Date). An existing
// row keeps its id; entry.ID is used only when a new row is created. The
// stored row is returned.
func (r *PostgresRepository) Upsert(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	query := `
		INSERT INTO entries (id, user_id, entry_date, content)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, entry_date)
		DO UPDATE SET
			content = EXCLUDED.content,
			updated_at = now()
		RETURNING id, entry_date, created_at, updated_at
	`
	var (
		day time.Time
		out = *entry
	)
	err := r.db.QueryRowContext(ctx, query, entry.ID, entry.UserID, entry.Date.String(), entry.Content).
		Scan(&out.ID, &day, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if out.Date, err = keyOf(day); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns userID's entries, newest day first.
func (r *PostgresRepository) List(ctx context.Context, userID string, skip, limit int) ([]*models.Entry, error) {
	query := `SELECT id, entry_date, content, created_at, updated_at FROM entries
		WHERE user_id = $1
		ORDER BY entry_date DESC
		OFFSET $2 LIMIT $3
		`
	rows, err := r.db.QueryContext(ctx, query, userID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Entry, 0)
	for rows.Next() {
		item := models.Entry{UserID: userID}
		var day time.Time
		if err := rows.Scan(&item.ID, &day, &item.Content, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		if item.Date, err = keyOf(day); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByDate returns common.ErrorNotFound when userID has no entry on date.
func (r *PostgresRepository) GetByDate(ctx context.Context, userID string, date datekey.Key) (*models.Entry, error) {
	query := `SELECT id, content, created_at, updated_at FROM entries
		WHERE user_id = $1 AND entry_date = $2
		`
	item := &models.Entry{UserID: userID, Date: date}
	err := r.db.QueryRowContext(ctx, query, userID, date.String()).
		Scan(&item.ID, &item.Content, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

// DeleteByDate returns common.ErrorNotFound when nothing was deleted.
func (r *PostgresRepository) DeleteByDate(ctx context.Context, userID string, date datekey.Key) error {
	query := `DELETE FROM entries WHERE user_id = $1 AND entry_date = $2`

	res, err := r.db.ExecContext(ctx, query, userID, date.String())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// keyOf reads the calendar date of a DATE column. The driver returns it as
// midnight UTC, so the wall-clock fields are the stored day.
func keyOf(t time.Time) (datekey.Key, error) {
	return datekey.Of(t.Date())
}
