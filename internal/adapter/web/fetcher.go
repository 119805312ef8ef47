package web

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-resty/resty/v2"

	"github.com/couchcryptid/maplist-import/internal/domain"
)

// DefaultMaxBytes caps how much of a list page is read.
const DefaultMaxBytes int64 = 8 << 20

// Fetcher downloads list page markup with a single GET.
type Fetcher struct {
	client   *resty.Client
	maxBytes int64
	logger   *slog.Logger
}

// NewFetcher creates a fetcher. A non-positive maxBytes selects DefaultMaxBytes.
func NewFetcher(client *resty.Client, maxBytes int64, logger *slog.Logger) *Fetcher {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Fetcher{client: client, maxBytes: maxBytes, logger: logger}
}

// Fetch returns the page body. Anything but a 2xx response is ErrFetchFailed.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if status := resp.StatusCode(); status < 200 || status > 299 {
		return "", fmt.Errorf("%w: status %d", domain.ErrFetchFailed, status)
	}

	data, err := io.ReadAll(io.LimitReader(body, f.maxBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", domain.ErrFetchFailed, err)
	}
	if int64(len(data)) == f.maxBytes {
		f.logger.Warn("list page truncated", "url", url, "max_bytes", f.maxBytes)
	}
	return string(data), nil
}
