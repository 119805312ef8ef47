//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	kafkaadapter "github.com/couchcryptid/maplist-import/internal/adapter/kafka"
	"github.com/couchcryptid/maplist-import/internal/adapter/postgres"
	"github.com/couchcryptid/maplist-import/internal/domain"
	"github.com/couchcryptid/maplist-import/internal/extract"
	"github.com/couchcryptid/maplist-import/internal/observability"
	"github.com/couchcryptid/maplist-import/internal/pipeline"
)

const (
	testTopic        = "test-location-imports"
	testCollectionID = "coffee"
	testOwnerID      = "owner-1"
	testMemberID     = "member-1"
	testListURL      = "https://www.google.com/maps/placelists/list/abc123"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startPostgres(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("maplist"),
		tcpostgres.WithUsername("maplist"),
		tcpostgres.WithPassword("maplist"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err, "start postgres")

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(ctx, pool))
	return pool
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("maplist-test"))
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err, "start kafka")

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cconn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cconn.Close()

	require.NoError(t, cconn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func extractedItems(t *testing.T) []domain.ImportItem {
	t.Helper()
	markup, err := os.ReadFile(filepath.Join("..", "extract", "testdata", "list_page.html"))
	require.NoError(t, err)

	locations, err := extract.Extract(string(markup), testListURL)
	require.NoError(t, err)

	items := make([]domain.ImportItem, 0, len(locations)+1)
	for _, loc := range locations {
		items = append(items, domain.ImportItemFrom(loc))
	}
	// A coordinates-only item exercises the fallback URL.
	return append(items, domain.ImportItem{Name: "Cubbon Park", Latitude: 12.9763, Longitude: 77.5929})
}

func readEvent(ctx context.Context, t *testing.T, reader *kafkago.Reader) (domain.ImportedLocation, kafkago.Message) {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := reader.ReadMessage(readCtx)
	require.NoError(t, err, "read imported event")

	var event domain.ImportedLocation
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	return event, msg
}

// TestImportRoundTrip drives an import through Postgres and Kafka: rows are
// written with the right approval, upvotes are registered, a repeat import is
// fully deduplicated, and one event per inserted row reaches the topic.
func TestImportRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	pool := startPostgres(ctx, t)
	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	logger := testLogger()
	store := postgres.NewStore(pool, logger)
	require.NoError(t, store.CreateCollection(ctx, testCollectionID, testOwnerID, "Coffee"))

	publisher := kafkaadapter.NewPublisher([]string{broker}, testTopic, logger)
	t.Cleanup(func() { _ = publisher.Close() })

	importer := pipeline.NewImporter(store, publisher, clockwork.NewRealClock(), 10*time.Millisecond, logger, observability.NewMetricsForTesting())
	items := extractedItems(t)

	// First import by the owner.
	outcome, err := importer.Import(ctx, testCollectionID, domain.Caller{ID: testOwnerID}, items)
	require.NoError(t, err)
	assert.Equal(t, len(items), outcome.Imported)
	assert.Equal(t, 1, outcome.WithIdentifier)
	assert.Equal(t, 1, outcome.WithoutIdentifier)
	assert.Empty(t, outcome.Failures)

	persisted, err := store.ListLocations(ctx, testCollectionID)
	require.NoError(t, err)
	require.Len(t, persisted, len(items))
	assert.Equal(t, "Third Wave Coffee", persisted[0].Name)
	assert.Equal(t, "https://maps.google.com/?cid=13835058055282170149", persisted[0].CanonicalURL)
	assert.Equal(t, domain.CoordinateSearchURL(12.9763, 77.5929), persisted[1].CanonicalURL)

	var approved, upvotes int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM locations WHERE approval = 'approved'`).Scan(&approved))
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM location_upvotes WHERE user_id = $1`, testOwnerID).Scan(&upvotes))
	assert.Equal(t, len(items), approved)
	assert.Equal(t, len(items), upvotes)

	// Repeating the import skips everything.
	again, err := importer.Import(ctx, testCollectionID, domain.Caller{ID: testMemberID}, items)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Imported)
	assert.Equal(t, len(items), again.Skipped)

	// A member's new location is pending.
	member, err := importer.Import(ctx, testCollectionID, domain.Caller{ID: testMemberID}, []domain.ImportItem{
		{Name: "Lalbagh", Latitude: 12.9507, Longitude: 77.5848},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, member.Imported)
	var approval string
	require.NoError(t, pool.QueryRow(ctx, `SELECT approval FROM locations WHERE name = 'Lalbagh'`).Scan(&approval))
	assert.Equal(t, "pending", approval)

	// Request-level failures.
	_, err = importer.Import(ctx, "missing", domain.Caller{ID: testOwnerID}, items)
	assert.True(t, errors.Is(err, domain.ErrCollectionNotFound))

	// Events: one per inserted row, keyed by collection.
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	t.Cleanup(func() { _ = reader.Close() })

	first, msg := readEvent(ctx, t, reader)
	assert.Equal(t, testCollectionID, string(msg.Key))
	assert.Equal(t, "Third Wave Coffee", first.Name)
	assert.True(t, first.HasIdentifier)
	assert.Equal(t, domain.ApprovalApproved, first.Approval)
	assert.Equal(t, persisted[0].ID, first.LocationID)

	second, _ := readEvent(ctx, t, reader)
	assert.False(t, second.HasIdentifier)

	third, msg := readEvent(ctx, t, reader)
	assert.Equal(t, "Lalbagh", third.Name)
	assert.Equal(t, domain.ApprovalPending, third.Approval)
	assert.Equal(t, kafkaadapter.EventTypeImported, headerValue(msg, "event_type"))
}

func headerValue(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
