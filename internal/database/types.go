package database

import (
	"time"

	"github.com/kozaktomas/photo-memories/internal/geo"
)

// ImportStatus is the review state of a draft.
type ImportStatus string

// ImportStatus values.
const (
	StatusPending  ImportStatus = "pending"
	StatusIgnored  ImportStatus = "ignored"
	StatusImported ImportStatus = "imported"
)

// ParseImportStatus maps a stored value to an ImportStatus, defaulting to pending.
func ParseImportStatus(s string) ImportStatus {
	switch ImportStatus(s) {
	case StatusIgnored:
		return StatusIgnored
	case StatusImported:
		return StatusImported
	default:
		return StatusPending
	}
}

// DraftEvent is a candidate memory produced by a library scan and awaiting review.
type DraftEvent struct {
	ID               string          `json:"id"`
	Date             time.Time       `json:"date"`
	AssetIdentifiers []string        `json:"asset_identifiers"`
	LocationName     *string         `json:"location_name,omitempty"`
	Coordinate       *geo.Coordinate `json:"coordinate,omitempty"`
	Status           ImportStatus    `json:"status"`
	Notes            *string         `json:"notes,omitempty"`
	CreationDate     time.Time       `json:"creation_date"`
}

// ImportedAsset records an asset that was accepted into an event or rejected.
type ImportedAsset struct {
	AssetIdentifier string    `json:"asset_identifier"`
	ImportDate      time.Time `json:"import_date"`
}

// EventCategory classifies a permanent life event.
type EventCategory string

// EventCategory values.
const (
	CategoryWork         EventCategory = "Work"
	CategoryEducation    EventCategory = "Education"
	CategoryLiving       EventCategory = "Living"
	CategoryTravel       EventCategory = "Travel"
	CategoryEvent        EventCategory = "Event"
	CategoryRelationship EventCategory = "Relationship"
)

// Categories lists every known category.
var Categories = []EventCategory{
	CategoryWork, CategoryEducation, CategoryLiving, CategoryTravel, CategoryEvent, CategoryRelationship,
}

// ParseCategory maps a name to a category, falling back to CategoryEvent.
func ParseCategory(s string) EventCategory {
	for _, c := range Categories {
		if string(c) == s {
			return c
		}
	}
	return CategoryEvent
}

// LifeEvent is a permanent timeline entry created when a draft is accepted.
type LifeEvent struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Date         time.Time       `json:"date"`
	Category     EventCategory   `json:"category"`
	Notes        *string         `json:"notes,omitempty"`
	LocationName *string         `json:"location_name,omitempty"`
	Coordinate   *geo.Coordinate `json:"coordinate,omitempty"`
	PhotoID      *string         `json:"photo_id,omitempty"`
	PhotoIDs     []string        `json:"photo_ids"`
	CreatedAt    time.Time       `json:"created_at"`
}
