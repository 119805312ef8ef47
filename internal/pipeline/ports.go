package pipeline

import (
	"context"

	"github.com/couchcryptid/maplist-import/internal/domain"
)

// LinkResolver turns a user-supplied link into the canonical list URL.
type LinkResolver interface {
	Resolve(ctx context.Context, raw string) (string, error)
}

// PageFetcher downloads the markup of a list page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// PageArchiver keeps the markup of pages that yielded no locations.
type PageArchiver interface {
	Archive(ctx context.Context, url, markup string, cause error) error
}

// CollectionStore looks up import targets.
type CollectionStore interface {
	GetCollection(ctx context.Context, id string) (domain.Collection, error)
}

// LocationStore reads and writes locations of a collection.
type LocationStore interface {
	ListLocations(ctx context.Context, collectionID string) ([]domain.PersistedLocation, error)
	InsertLocation(ctx context.Context, loc domain.NewLocation) (string, error)
}

// Upvoter registers a user's upvote on a location.
type Upvoter interface {
	RegisterUpvote(ctx context.Context, locationID, userID string) error
}

// ImportStore is the persistence collaborator of the importer.
type ImportStore interface {
	CollectionStore
	LocationStore
	Upvoter
}

// EventPublisher announces locations created by an import.
type EventPublisher interface {
	PublishImported(ctx context.Context, events []domain.ImportedLocation) error
}
