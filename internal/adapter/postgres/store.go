package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/couchcryptid/maplist-import/internal/domain"
)

// Store implements the collection, location, and upvote ports on PostgreSQL.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore wraps an open pool.
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	return &Store{pool: pool, logger: logger}
}

// CheckReadiness pings the database.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// CreateCollection inserts a collection owned by ownerID.
func (s *Store) CreateCollection(ctx context.Context, id, ownerID, name string) error {
	const query = `INSERT INTO collections (id, owner_id, name) VALUES ($1, $2, $3)`
	if _, err := s.pool.Exec(ctx, query, id, ownerID, name); err != nil {
		return fmt.Errorf("insert collection %s: %w", id, err)
	}
	return nil
}

// GetCollection returns the collection or domain.ErrCollectionNotFound.
func (s *Store) GetCollection(ctx context.Context, id string) (domain.Collection, error) {
	const query = `SELECT id, owner_id FROM collections WHERE id = $1`

	var c domain.Collection
	err := s.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.OwnerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Collection{}, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, id)
	}
	if err != nil {
		return domain.Collection{}, fmt.Errorf("query collection %s: %w", id, err)
	}
	return c, nil
}

// ListLocations returns every location already stored in the collection.
func (s *Store) ListLocations(ctx context.Context, collectionID string) ([]domain.PersistedLocation, error) {
	const query = `
		SELECT id, name, latitude, longitude, canonical_url
		FROM locations
		WHERE collection_id = $1
		ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query, collectionID)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer rows.Close()

	var out []domain.PersistedLocation
	for rows.Next() {
		var (
			l  domain.PersistedLocation
			id uuid.UUID
		)
		if err := rows.Scan(&id, &l.Name, &l.Latitude, &l.Longitude, &l.CanonicalURL); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		l.ID = id.String()
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locations: %w", err)
	}
	return out, nil
}

// InsertLocation writes one location row and returns its generated id.
func (s *Store) InsertLocation(ctx context.Context, loc domain.NewLocation) (string, error) {
	const query = `
		INSERT INTO locations (
			id, collection_id, creator_id, name, latitude, longitude,
			canonical_url, note, approval, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	id := uuid.New()
	_, err := s.pool.Exec(ctx, query,
		id, loc.CollectionID, loc.CreatorID, loc.Name, loc.Latitude, loc.Longitude,
		loc.CanonicalURL, loc.Note, string(loc.Approval), loc.CreatedAt, loc.UpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert location %q: %w", loc.Name, err)
	}
	return id.String(), nil
}

// RegisterUpvote records userID's upvote on a location. Repeated upvotes are no-ops.
func (s *Store) RegisterUpvote(ctx context.Context, locationID, userID string) error {
	id, err := uuid.Parse(locationID)
	if err != nil {
		return fmt.Errorf("parse location id %q: %w", locationID, err)
	}

	const query = `
		INSERT INTO location_upvotes (location_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (location_id, user_id) DO NOTHING`

	tag, err := s.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("insert upvote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		s.logger.Debug("upvote already registered", "location_id", locationID, "user_id", userID)
	}
	return nil
}
