package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/maplist-import/internal/domain"
	"github.com/couchcryptid/maplist-import/internal/extract"
	"github.com/couchcryptid/maplist-import/internal/observability"
)

// ListParser runs resolution, fetching, and extraction for one shared list link.
type ListParser struct {
	resolver LinkResolver
	fetcher  PageFetcher
	archiver PageArchiver
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewListParser creates a parser. archiver may be nil.
func NewListParser(r LinkResolver, f PageFetcher, archiver PageArchiver, logger *slog.Logger, metrics *observability.Metrics) *ListParser {
	return &ListParser{
		resolver: r,
		fetcher:  f,
		archiver: archiver,
		logger:   logger,
		metrics:  metrics,
	}
}

// Parse returns every location found on the list behind rawURL.
func (p *ListParser) Parse(ctx context.Context, rawURL string) ([]domain.ParsedLocation, error) {
	locations, err := p.parse(ctx, rawURL)
	p.metrics.ParseRequests.WithLabelValues(domain.ParseErrorKind(err)).Inc()
	if err != nil {
		return nil, err
	}
	p.metrics.LocationsExtracted.Add(float64(len(locations)))
	p.logger.Info("list parsed", "url", rawURL, "locations", len(locations))
	return locations, nil
}

func (p *ListParser) parse(ctx context.Context, rawURL string) ([]domain.ParsedLocation, error) {
	start := time.Now()

	resolved, err := p.resolver.Resolve(ctx, rawURL)
	if err != nil {
		p.logger.Warn("list link not resolved", "url", rawURL, "error", err)
		return nil, err
	}

	markup, err := p.fetcher.Fetch(ctx, resolved)
	p.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		p.logger.Warn("list page not fetched", "url", resolved, "error", err)
		return nil, err
	}

	locations, err := extract.Extract(markup, resolved)
	if err != nil {
		// An empty result may mean the page format drifted, not that the list is empty.
		p.logger.Warn("no locations extracted", "url", resolved, "kind", domain.ParseErrorKind(err), "error", err)
		if domain.IsDataError(err) {
			p.archive(ctx, resolved, markup, err)
		}
		return nil, err
	}
	return locations, nil
}

func (p *ListParser) archive(ctx context.Context, url, markup string, cause error) {
	if p.archiver == nil {
		return
	}
	if err := p.archiver.Archive(ctx, url, markup, cause); err != nil {
		p.metrics.PagesArchived.WithLabelValues("error").Inc()
		p.logger.Error("archive page snapshot failed", "url", url, "error", err)
		return
	}
	p.metrics.PagesArchived.WithLabelValues("success").Inc()
}
