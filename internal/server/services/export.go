package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/daybook/internal/server/models"
	"github.com/google/uuid"
)

// ObjectStore is the blob storage an export is written to.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// EntryLister returns every entry of a user.
type EntryLister interface {
	All(ctx context.Context, userID string) ([]*models.Entry, error)
}

// ExportDocument is the JSON written to object storage.
type ExportDocument struct {
	ExportedAt time.Time     `json:"exported_at"`
	Entries    []ExportEntry `json:"entries"`
}

type ExportEntry struct {
	Date    string `json:"date"`
	Content string `json:"content"`
}

// ExportService snapshots a user's diary into object storage.
type ExportService struct {
	entries EntryLister
	store   ObjectStore
	ttl     time.Duration
	now     func() time.Time
}

func NewExportService(entries EntryLister, store ObjectStore, ttl time.Duration) *ExportService {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &ExportService{entries: entries, store: store, ttl: ttl, now: time.Now}
}

// ExportKey is the object key of one export of userID.
func ExportKey(userID string, at time.Time) string {
	return fmt.Sprintf("exports/%s/%s-%s.json", userID, at.UTC().Format("20060102T150405Z"), uuid.NewString())
}

// Export writes every entry of userID as one JSON document and returns a
// presigned link to it.
func (s *ExportService) Export(ctx context.Context, userID string) (string, error) {
	if s.store == nil {
		return "", errors.New("export storage is not configured")
	}

	list, err := s.entries.All(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("error listing entries: %w", err)
	}

	now := s.now()
	doc := ExportDocument{ExportedAt: now.UTC(), Entries: make([]ExportEntry, 0, len(list))}
	for _, e := range list {
		doc.Entries = append(doc.Entries, ExportEntry{Date: e.Date.String(), Content: e.Content})
	}
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}

	key := ExportKey(userID, now)
	if err := s.store.Put(ctx, key, body, "application/json"); err != nil {
		return "", fmt.Errorf("error uploading export: %w", err)
	}

	url, err := s.store.PresignGet(ctx, key, s.ttl)
	if err != nil {
		return "", fmt.Errorf("error presigning export: %w", err)
	}
	return url, nil
}
