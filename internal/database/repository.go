// Package database defines the persisted records of the photo import pipeline
// and the storage interfaces the backends implement.
package database

import (
	"context"
	"errors"
)

// ErrNotFound is returned by services when a requested record does not exist.
// Repositories themselves return nil, nil for missing rows.
var ErrNotFound = errors.New("not found")

// CheckpointStore is an opaque key-value byte store for engine state.
type CheckpointStore interface {
	// LoadCheckpoint returns the blob stored under key, nil if absent
	LoadCheckpoint(ctx context.Context, key string) ([]byte, error)
	// SaveCheckpoint stores (or replaces) the blob under key
	SaveCheckpoint(ctx context.Context, key string, data []byte) error
	// DeleteCheckpoint removes key; missing keys are not an error
	DeleteCheckpoint(ctx context.Context, key string) error
}

// DraftReader provides read access to draft events
type DraftReader interface {
	// GetDraft retrieves a draft by ID, returns nil if not found
	GetDraft(ctx context.Context, id string) (*DraftEvent, error)
	// ListDrafts returns drafts with the given status ordered by date descending.
	// An empty status returns all drafts.
	ListDrafts(ctx context.Context, status ImportStatus) ([]DraftEvent, error)
	// DraftAssetIDs returns every asset identifier referenced by any draft
	DraftAssetIDs(ctx context.Context) ([]string, error)
}

// DraftWriter provides write access to draft events
type DraftWriter interface {
	DraftReader

	// InsertDraft persists a new draft; ID and CreationDate are filled when empty
	InsertDraft(ctx context.Context, draft *DraftEvent) error
}

// ImportLogReader provides read access to the imported asset log
type ImportLogReader interface {
	// ImportedAssetIDs returns every logged asset identifier
	ImportedAssetIDs(ctx context.Context) ([]string, error)
	// CountImportedAssets returns the size of the log
	CountImportedAssets(ctx context.Context) (int, error)
}

// EventReader provides read access to permanent life events
type EventReader interface {
	// GetEvent retrieves an event by ID, returns nil if not found
	GetEvent(ctx context.Context, id string) (*LifeEvent, error)
	// ListEvents returns all events ordered by date descending
	ListEvents(ctx context.Context) ([]LifeEvent, error)
}

// ReviewWriter applies review decisions. Each method runs in one transaction.
type ReviewWriter interface {
	// AcceptDraft inserts the event, logs assetIDs and deletes the draft
	AcceptDraft(ctx context.Context, draftID string, event *LifeEvent, assetIDs []string) error
	// RejectDraft logs assetIDs and deletes the draft
	RejectDraft(ctx context.Context, draftID string, assetIDs []string) error
	// ResetAnalysisHistory deletes every imported asset log entry and every draft
	ResetAnalysisHistory(ctx context.Context) error
}

// Store is the full persistence surface of the application.
type Store interface {
	CheckpointStore
	DraftWriter
	ImportLogReader
	EventReader
	ReviewWriter

	Close() error
}
