package domain

import "time"

// ParsedLocation is one place recovered from a shared list page.
type ParsedLocation struct {
	Name       string  `json:"name"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Identifier string  `json:"identifier"`
	SourceURL  string  `json:"source_url"`
}

// ImportItem is a caller-selected location submitted for import. Identifier is
// optional; items without one are deduplicated by coordinates only.
type ImportItem struct {
	Name       string  `json:"name"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Identifier string  `json:"identifier,omitempty"`
	SourceURL  string  `json:"source_url,omitempty"`
}

// ImportItemFrom converts an extracted location into an import item.
func ImportItemFrom(p ParsedLocation) ImportItem {
	return ImportItem{
		Name:       p.Name,
		Latitude:   p.Latitude,
		Longitude:  p.Longitude,
		Identifier: p.Identifier,
		SourceURL:  p.SourceURL,
	}
}

// ItemFailure records why a single item was not imported.
type ItemFailure struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ImportOutcome summarizes one bulk import call.
type ImportOutcome struct {
	Imported          int           `json:"imported"`
	Skipped           int           `json:"skipped"`
	WithIdentifier    int           `json:"with_identifier"`
	WithoutIdentifier int           `json:"without_identifier"`
	Failures          []ItemFailure `json:"failures"`
}

// Caller is the identity behind an import request. An empty ID means the
// request is unauthenticated.
type Caller struct {
	ID string
}

// Authenticated reports whether the caller carries an identity.
func (c Caller) Authenticated() bool { return c.ID != "" }

// Collection is the target of an import.
type Collection struct {
	ID      string
	OwnerID string
}

// PersistedLocation is an existing row read back for deduplication.
type PersistedLocation struct {
	ID           string
	Name         string
	Latitude     float64
	Longitude    float64
	CanonicalURL string
}

// ApprovalState is assigned at creation and never changed by the import path.
type ApprovalState string

const (
	ApprovalApproved ApprovalState = "approved"
	ApprovalPending  ApprovalState = "pending"
)

// ApprovalFor returns approved for collection owners and pending for everyone else.
func ApprovalFor(isOwner bool) ApprovalState {
	if isOwner {
		return ApprovalApproved
	}
	return ApprovalPending
}

// NewLocation is the row written for each imported item.
type NewLocation struct {
	CollectionID string
	CreatorID    string
	Name         string
	Latitude     float64
	Longitude    float64
	CanonicalURL string
	Note         *string
	Approval     ApprovalState
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ImportedLocation is the event emitted for every row inserted by an import.
type ImportedLocation struct {
	LocationID    string        `json:"location_id"`
	CollectionID  string        `json:"collection_id"`
	CreatorID     string        `json:"creator_id"`
	Name          string        `json:"name"`
	Latitude      float64       `json:"latitude"`
	Longitude     float64       `json:"longitude"`
	CanonicalURL  string        `json:"canonical_url"`
	HasIdentifier bool          `json:"has_identifier"`
	Approval      ApprovalState `json:"approval"`
	ImportedAt    time.Time     `json:"imported_at"`
}

// ValidCoordinates reports whether lat/lng are inside WGS-84 bounds.
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
