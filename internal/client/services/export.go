package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dmitrijs2005/daybook/internal/filex"
	"github.com/dmitrijs2005/daybook/internal/netx"
)

// ExportClient is the part of the API client the export service needs.
type ExportClient interface {
	Export(ctx context.Context) (string, error)
}

// ExportService asks the server for a downloadable copy of the diary and
// optionally saves it locally.
type ExportService interface {
	Export(ctx context.Context) (string, error)
	Save(ctx context.Context, url, path string) (string, int64, error)
}

type exportService struct {
	client   ExportClient
	download func(ctx context.Context, client *http.Client, url string, w io.Writer) (int64, error)
}

func NewExportService(client ExportClient) ExportService {
	return &exportService{client: client, download: netx.DownloadPresignedURL}
}

// Export returns a time-limited download URL for the user's diary.
func (s *exportService) Export(ctx context.Context) (string, error) {
	url, err := s.client.Export(ctx)
	if err != nil {
		return "", fmt.Errorf("export error: %w", err)
	}
	if url == "" {
		return "", fmt.Errorf("export error: server returned no url")
	}
	return url, nil
}

// Save downloads url into path, creating parent directories. It returns
// the absolute path and the size written. A failed download removes the
// partial file.
func (s *exportService) Save(ctx context.Context, url, path string) (string, int64, error) {
	abs, err := filex.EnsureParentDir(path)
	if err != nil {
		return "", 0, fmt.Errorf("export save error: %w", err)
	}

	f, err := os.OpenFile(abs, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return "", 0, fmt.Errorf("export save error: %w", err)
	}

	n, err := s.download(ctx, nil, url, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(abs)
		return "", 0, fmt.Errorf("export download error: %w", err)
	}
	return abs, n, nil
}
