package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/couchcryptid/maplist-import/internal/domain"
)

// Resolver turns a user-supplied list link into the canonical list URL.
type Resolver struct {
	client *resty.Client
	logger *slog.Logger
}

// NewResolver creates a resolver that follows short link redirects with client.
func NewResolver(client *resty.Client, logger *slog.Logger) *Resolver {
	return &Resolver{client: client, logger: logger}
}

// Resolve returns canonical links unchanged and follows short links to their final URL.
func (r *Resolver) Resolve(ctx context.Context, raw string) (string, error) {
	u, kind, err := domain.ClassifyLink(raw)
	if err != nil {
		return "", err
	}
	if kind == domain.LinkCanonical {
		return u.String(), nil
	}

	resp, err := r.client.R().SetContext(ctx).Head(u.String())
	if err == nil && resp.StatusCode() == http.StatusMethodNotAllowed {
		// Some edges refuse HEAD; a GET lands on the same final URL.
		resp, err = r.client.R().SetContext(ctx).SetDoNotParseResponse(true).Get(u.String())
		if err == nil {
			_ = resp.RawBody().Close()
		}
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrResolutionFailed, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return "", fmt.Errorf("%w: status %d", domain.ErrResolutionFailed, resp.StatusCode())
	}
	if resp.RawResponse == nil || resp.RawResponse.Request == nil {
		return "", fmt.Errorf("%w: no final request", domain.ErrResolutionFailed)
	}

	final := resp.RawResponse.Request.URL.String()
	if _, finalKind, err := domain.ClassifyLink(final); err != nil || finalKind != domain.LinkCanonical {
		r.logger.Warn("short link left maps", "short", u.String(), "resolved", final)
		return "", fmt.Errorf("%w: redirected to non-maps url %q", domain.ErrResolutionFailed, final)
	}
	r.logger.Debug("short link resolved", "short", u.String(), "resolved", final)
	return final, nil
}
