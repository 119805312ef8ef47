package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/maplist-import/internal/domain"
	"github.com/couchcryptid/maplist-import/internal/extract"
	"github.com/couchcryptid/maplist-import/internal/observability"
)

// coordinateTolerance is roughly one meter in degrees.
const coordinateTolerance = 0.00001

// Item failure reasons.
const (
	reasonMissingName        = "missing name"
	reasonInvalidCoordinates = "coordinates out of range"
)

// Importer inserts caller-selected locations into a collection, skipping
// duplicates and isolating per-item failures.
type Importer struct {
	store     ImportStore
	publisher EventPublisher
	clock     clockwork.Clock
	delay     time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewImporter creates an importer. publisher may be nil. delay is waited
// between consecutive inserts.
func NewImporter(store ImportStore, publisher EventPublisher, clock clockwork.Clock, delay time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Importer {
	return &Importer{
		store:     store,
		publisher: publisher,
		clock:     clock,
		delay:     delay,
		logger:    logger,
		metrics:   metrics,
	}
}

// importRun holds the state of a single Import call.
type importRun struct {
	collection domain.Collection
	caller     domain.Caller
	approval   domain.ApprovalState
	persisted  []domain.PersistedLocation
	knownURLs  map[string]struct{}
	seenIDs    map[string]struct{}
	seenCoords map[string]struct{}
	inserted   int
	outcome    domain.ImportOutcome
	events     []domain.ImportedLocation
}

// Import processes items in order. Only an unauthenticated caller, a missing
// collection, or a failure to read the collection's existing locations abort the
// call; everything else is reported in the outcome. If ctx is canceled the
// partial outcome is returned with the context error.
func (im *Importer) Import(ctx context.Context, collectionID string, caller domain.Caller, items []domain.ImportItem) (domain.ImportOutcome, error) {
	if !caller.Authenticated() {
		return domain.ImportOutcome{}, domain.ErrUnauthorized
	}

	collection, err := im.store.GetCollection(ctx, collectionID)
	if err != nil {
		return domain.ImportOutcome{}, err
	}

	persisted, err := im.store.ListLocations(ctx, collectionID)
	if err != nil {
		return domain.ImportOutcome{}, fmt.Errorf("list existing locations: %w", err)
	}

	start := im.clock.Now()
	run := &importRun{
		collection: collection,
		caller:     caller,
		approval:   domain.ApprovalFor(collection.OwnerID == caller.ID),
		persisted:  persisted,
		knownURLs:  make(map[string]struct{}, len(persisted)),
		seenIDs:    make(map[string]struct{}),
		seenCoords: make(map[string]struct{}),
		outcome:    domain.ImportOutcome{Failures: []domain.ItemFailure{}},
	}
	for _, p := range persisted {
		run.knownURLs[p.CanonicalURL] = struct{}{}
	}

	var runErr error
	for _, item := range items {
		if err := im.importItem(ctx, run, item); err != nil {
			runErr = err
			break
		}
	}

	im.publish(ctx, run.events)
	im.metrics.ImportDuration.Observe(im.clock.Since(start).Seconds())
	im.logger.Info("import finished",
		"collection_id", collectionID,
		"caller_id", caller.ID,
		"approval", run.approval,
		"imported", run.outcome.Imported,
		"skipped", run.outcome.Skipped,
		"failed", len(run.outcome.Failures),
	)
	return run.outcome, runErr
}

// importItem handles one item. It only returns an error when ctx is done.
func (im *Importer) importItem(ctx context.Context, run *importRun, item domain.ImportItem) error {
	name := strings.TrimSpace(item.Name)
	if name == "" {
		im.reject(run, item.Name, reasonMissingName)
		return nil
	}
	if !domain.ValidCoordinates(item.Latitude, item.Longitude) {
		im.reject(run, name, reasonInvalidCoordinates)
		return nil
	}

	identifier := ""
	if item.Identifier != "" {
		if id, ok := extract.CanonicalIdentifier(item.Identifier); ok {
			identifier = id
		} else {
			im.logger.Debug("ignoring malformed identifier", "name", name, "identifier", item.Identifier)
		}
	}

	coordKey := coordinateKey(item.Latitude, item.Longitude)
	if run.isDuplicate(identifier, coordKey, item.Latitude, item.Longitude) {
		run.outcome.Skipped++
		im.metrics.ImportItems.WithLabelValues("duplicate").Inc()
		return nil
	}

	if run.inserted > 0 {
		if err := im.pause(ctx); err != nil {
			return err
		}
	}
	run.inserted++

	canonical := domain.CanonicalURL(domain.ImportItem{
		Identifier: identifier,
		Latitude:   item.Latitude,
		Longitude:  item.Longitude,
	})
	now := im.clock.Now()
	loc := domain.NewLocation{
		CollectionID: run.collection.ID,
		CreatorID:    run.caller.ID,
		Name:         name,
		Latitude:     item.Latitude,
		Longitude:    item.Longitude,
		CanonicalURL: canonical,
		Approval:     run.approval,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	id, err := im.store.InsertLocation(ctx, loc)
	if err != nil {
		im.logger.Warn("insert location failed", "name", name, "error", err)
		run.outcome.Failures = append(run.outcome.Failures, domain.ItemFailure{Name: name, Reason: err.Error()})
		im.metrics.ImportItems.WithLabelValues("failed").Inc()
		return nil
	}

	run.outcome.Imported++
	if identifier != "" {
		run.outcome.WithIdentifier++
		run.seenIDs[identifier] = struct{}{}
	} else {
		run.outcome.WithoutIdentifier++
	}
	run.seenCoords[coordKey] = struct{}{}
	im.metrics.ImportItems.WithLabelValues("imported").Inc()

	if err := im.store.RegisterUpvote(ctx, id, run.caller.ID); err != nil {
		im.logger.Warn("auto upvote failed", "location_id", id, "error", err)
	}

	run.events = append(run.events, domain.ImportedLocation{
		LocationID:    id,
		CollectionID:  loc.CollectionID,
		CreatorID:     loc.CreatorID,
		Name:          loc.Name,
		Latitude:      loc.Latitude,
		Longitude:     loc.Longitude,
		CanonicalURL:  loc.CanonicalURL,
		HasIdentifier: identifier != "",
		Approval:      loc.Approval,
		ImportedAt:    now,
	})
	return nil
}

func (im *Importer) reject(run *importRun, name, reason string) {
	run.outcome.Skipped++
	run.outcome.Failures = append(run.outcome.Failures, domain.ItemFailure{Name: name, Reason: reason})
	im.metrics.ImportItems.WithLabelValues("invalid").Inc()
}

// isDuplicate checks the identifier first, then the coordinates. Each is checked
// against this call's inserts before the persisted rows.
func (run *importRun) isDuplicate(identifier, coordKey string, lat, lng float64) bool {
	if identifier != "" {
		if _, ok := run.seenIDs[identifier]; ok {
			return true
		}
		if _, ok := run.knownURLs[domain.IdentifierURL(identifier)]; ok {
			return true
		}
	}
	if _, ok := run.seenCoords[coordKey]; ok {
		return true
	}
	for _, p := range run.persisted {
		if math.Abs(p.Latitude-lat) < coordinateTolerance && math.Abs(p.Longitude-lng) < coordinateTolerance {
			return true
		}
	}
	return false
}

func (im *Importer) pause(ctx context.Context) error {
	if im.delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-im.clock.After(im.delay):
		return nil
	}
}

// publish is best-effort. Errors are logged and counted.
func (im *Importer) publish(ctx context.Context, events []domain.ImportedLocation) {
	if im.publisher == nil || len(events) == 0 {
		return
	}
	if err := im.publisher.PublishImported(context.WithoutCancel(ctx), events); err != nil {
		im.metrics.EventsDropped.Add(float64(len(events)))
		im.logger.Error("publish imported events failed", "count", len(events), "error", err)
	}
}

func coordinateKey(lat, lng float64) string {
	return fmt.Sprintf("%.5f,%.5f", lat, lng)
}
