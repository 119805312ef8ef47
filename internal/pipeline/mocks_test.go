package pipeline_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/couchcryptid/maplist-import/internal/domain"
	"github.com/couchcryptid/maplist-import/internal/observability"
)

const (
	testCollectionID = "col-1"
	testOwnerID      = "owner-1"
	testMemberID     = "member-1"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

// --- mocks ---

type memoryStore struct {
	mu          sync.Mutex
	collections map[string]domain.Collection
	rows        []domain.NewLocation
	ids         []string
	upvotes     map[string]string
	failInsert  map[string]error
	upvoteErr   error
	listErr     error
	listCalls   int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		collections: map[string]domain.Collection{
			testCollectionID: {ID: testCollectionID, OwnerID: testOwnerID},
		},
		upvotes:    make(map[string]string),
		failInsert: make(map[string]error),
	}
}

func (m *memoryStore) GetCollection(_ context.Context, id string) (domain.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[id]
	if !ok {
		return domain.Collection{}, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, id)
	}
	return c, nil
}

func (m *memoryStore) ListLocations(_ context.Context, collectionID string) ([]domain.PersistedLocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.PersistedLocation
	for i, r := range m.rows {
		if r.CollectionID != collectionID {
			continue
		}
		out = append(out, domain.PersistedLocation{
			ID:           m.ids[i],
			Name:         r.Name,
			Latitude:     r.Latitude,
			Longitude:    r.Longitude,
			CanonicalURL: r.CanonicalURL,
		})
	}
	return out, nil
}

func (m *memoryStore) InsertLocation(_ context.Context, loc domain.NewLocation) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failInsert[loc.Name]; err != nil {
		return "", err
	}
	id := fmt.Sprintf("loc-%d", len(m.rows)+1)
	m.rows = append(m.rows, loc)
	m.ids = append(m.ids, id)
	return id, nil
}

func (m *memoryStore) RegisterUpvote(_ context.Context, locationID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upvoteErr != nil {
		return m.upvoteErr
	}
	m.upvotes[locationID] = userID
	return nil
}

func (m *memoryStore) inserted() []domain.NewLocation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.NewLocation(nil), m.rows...)
}

type recordingPublisher struct {
	events []domain.ImportedLocation
	err    error
}

func (p *recordingPublisher) PublishImported(_ context.Context, events []domain.ImportedLocation) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, events...)
	return nil
}

type stubResolver struct {
	resolved string
	err      error
	calls    int
}

func (s *stubResolver) Resolve(_ context.Context, raw string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if s.resolved != "" {
		return s.resolved, nil
	}
	return raw, nil
}

type stubFetcher struct {
	markup string
	err    error
	urls   []string
}

func (s *stubFetcher) Fetch(_ context.Context, url string) (string, error) {
	s.urls = append(s.urls, url)
	if s.err != nil {
		return "", s.err
	}
	return s.markup, nil
}

type recordingArchiver struct {
	urls   []string
	causes []error
	err    error
}

func (a *recordingArchiver) Archive(_ context.Context, url, _ string, cause error) error {
	a.urls = append(a.urls, url)
	a.causes = append(a.causes, cause)
	return a.err
}
