// Package mock provides an in-memory implementation of database.Store for testing.
package mock

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/photo-memories/internal/database"
)

// MockStore is an in-memory database.Store. It mirrors the constraints of the
// SQL backends: an asset may belong to at most one draft and the import log
// is a set.
type MockStore struct {
	mu          sync.RWMutex
	checkpoints map[string][]byte
	drafts      map[string]*database.DraftEvent
	draftAssets map[string]string // asset ID -> draft ID
	imported    map[string]time.Time
	events      map[string]*database.LifeEvent
	eventSeq    int

	// SavedCheckpoints records every successfully saved checkpoint blob in order.
	SavedCheckpoints [][]byte

	// Error injection
	LoadCheckpointError   error
	SaveCheckpointError   error
	DeleteCheckpointError error
	InsertDraftError      error
	GetDraftError         error
	ListDraftsError       error
	DraftAssetIDsError    error
	ImportedAssetIDsError error
	CountImportedError    error
	GetEventError         error
	ListEventsError       error
	AcceptDraftError      error
	RejectDraftError      error
	ResetError            error

	// InsertDraftHook, when set, runs before every draft insert; a non-nil
	// result fails that insert.
	InsertDraftHook func(draft *database.DraftEvent) error

	// SaveCheckpointHook, when set, runs before every checkpoint save; a
	// non-nil result fails that save.
	SaveCheckpointHook func(key string, data []byte) error
}

var _ database.Store = (*MockStore)(nil)

// NewMockStore creates a new empty mock store
func NewMockStore() *MockStore {
	return &MockStore{
		checkpoints: make(map[string][]byte),
		drafts:      make(map[string]*database.DraftEvent),
		draftAssets: make(map[string]string),
		imported:    make(map[string]time.Time),
		events:      make(map[string]*database.LifeEvent),
	}
}

// AddImported seeds the import log
func (m *MockStore) AddImported(assetIDs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range assetIDs {
		m.imported[id] = time.Now()
	}
}

// DraftCount returns the number of stored drafts
func (m *MockStore) DraftCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.drafts)
}

// LoadCheckpoint returns the blob stored under key
func (m *MockStore) LoadCheckpoint(ctx context.Context, key string) ([]byte, error) {
	if m.LoadCheckpointError != nil {
		return nil, m.LoadCheckpointError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.checkpoints[key]
	if !ok {
		return nil, nil
	}
	return slices.Clone(data), nil
}

// SaveCheckpoint stores the blob under key
func (m *MockStore) SaveCheckpoint(ctx context.Context, key string, data []byte) error {
	if m.SaveCheckpointError != nil {
		return m.SaveCheckpointError
	}
	if m.SaveCheckpointHook != nil {
		if err := m.SaveCheckpointHook(key, data); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkpoints[key] = slices.Clone(data)
	m.SavedCheckpoints = append(m.SavedCheckpoints, slices.Clone(data))
	return nil
}

// DeleteCheckpoint removes key
func (m *MockStore) DeleteCheckpoint(ctx context.Context, key string) error {
	if m.DeleteCheckpointError != nil {
		return m.DeleteCheckpointError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.checkpoints, key)
	return nil
}

// InsertDraft persists a draft
func (m *MockStore) InsertDraft(ctx context.Context, draft *database.DraftEvent) error {
	if m.InsertDraftError != nil {
		return m.InsertDraftError
	}
	if m.InsertDraftHook != nil {
		if err := m.InsertDraftHook(draft); err != nil {
			return err
		}
	}
	if len(draft.AssetIdentifiers) == 0 {
		return fmt.Errorf("insert draft: no asset identifiers")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range draft.AssetIdentifiers {
		if owner, ok := m.draftAssets[id]; ok {
			return fmt.Errorf("insert draft: asset %s already belongs to draft %s", id, owner)
		}
	}

	if draft.ID == "" {
		draft.ID = uuid.New().String()
	}
	if draft.CreationDate.IsZero() {
		draft.CreationDate = time.Now()
	}
	if draft.Status == "" {
		draft.Status = database.StatusPending
	}

	stored := *draft
	stored.AssetIdentifiers = slices.Clone(draft.AssetIdentifiers)
	m.drafts[stored.ID] = &stored
	for _, id := range stored.AssetIdentifiers {
		m.draftAssets[id] = stored.ID
	}
	return nil
}

// GetDraft retrieves a draft by ID, returns nil if not found
func (m *MockStore) GetDraft(ctx context.Context, id string) (*database.DraftEvent, error) {
	if m.GetDraftError != nil {
		return nil, m.GetDraftError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drafts[id]
	if !ok {
		return nil, nil
	}
	out := *d
	out.AssetIdentifiers = slices.Clone(d.AssetIdentifiers)
	return &out, nil
}

// ListDrafts returns drafts with the given status, newest first
func (m *MockStore) ListDrafts(ctx context.Context, status database.ImportStatus) ([]database.DraftEvent, error) {
	if m.ListDraftsError != nil {
		return nil, m.ListDraftsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []database.DraftEvent
	for _, d := range m.drafts {
		if status != "" && d.Status != status {
			continue
		}
		c := *d
		c.AssetIdentifiers = slices.Clone(d.AssetIdentifiers)
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b database.DraftEvent) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// DraftAssetIDs returns every asset identifier referenced by any draft
func (m *MockStore) DraftAssetIDs(ctx context.Context) ([]string, error) {
	if m.DraftAssetIDsError != nil {
		return nil, m.DraftAssetIDsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.draftAssets))
	for id := range m.draftAssets {
		ids = append(ids, id)
	}
	return ids, nil
}

// ImportedAssetIDs returns every logged asset identifier
func (m *MockStore) ImportedAssetIDs(ctx context.Context) ([]string, error) {
	if m.ImportedAssetIDsError != nil {
		return nil, m.ImportedAssetIDsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.imported))
	for id := range m.imported {
		ids = append(ids, id)
	}
	return ids, nil
}

// CountImportedAssets returns the size of the import log
func (m *MockStore) CountImportedAssets(ctx context.Context) (int, error) {
	if m.CountImportedError != nil {
		return 0, m.CountImportedError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.imported), nil
}

// GetEvent retrieves an event by ID, returns nil if not found
func (m *MockStore) GetEvent(ctx context.Context, id string) (*database.LifeEvent, error) {
	if m.GetEventError != nil {
		return nil, m.GetEventError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.events[id]
	if !ok {
		return nil, nil
	}
	out := *e
	out.PhotoIDs = slices.Clone(e.PhotoIDs)
	return &out, nil
}

// ListEvents returns all events, newest first
func (m *MockStore) ListEvents(ctx context.Context) ([]database.LifeEvent, error) {
	if m.ListEventsError != nil {
		return nil, m.ListEventsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]database.LifeEvent, 0, len(m.events))
	for _, e := range m.events {
		c := *e
		c.PhotoIDs = slices.Clone(e.PhotoIDs)
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b database.LifeEvent) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// AcceptDraft inserts the event, logs assetIDs and deletes the draft
func (m *MockStore) AcceptDraft(ctx context.Context, draftID string, event *database.LifeEvent, assetIDs []string) error {
	if m.AcceptDraftError != nil {
		return m.AcceptDraftError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if event.ID == "" {
		m.eventSeq++
		event.ID = fmt.Sprintf("event-%d", m.eventSeq)
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	stored := *event
	stored.PhotoIDs = slices.Clone(event.PhotoIDs)
	m.events[stored.ID] = &stored
	m.logAssets(assetIDs)
	m.deleteDraft(draftID)
	return nil
}

// RejectDraft logs assetIDs and deletes the draft
func (m *MockStore) RejectDraft(ctx context.Context, draftID string, assetIDs []string) error {
	if m.RejectDraftError != nil {
		return m.RejectDraftError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logAssets(assetIDs)
	m.deleteDraft(draftID)
	return nil
}

// ResetAnalysisHistory clears the import log and every draft
func (m *MockStore) ResetAnalysisHistory(ctx context.Context) error {
	if m.ResetError != nil {
		return m.ResetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imported = make(map[string]time.Time)
	m.drafts = make(map[string]*database.DraftEvent)
	m.draftAssets = make(map[string]string)
	return nil
}

// Close is a no-op
func (m *MockStore) Close() error {
	return nil
}

func (m *MockStore) logAssets(assetIDs []string) {
	now := time.Now()
	for _, id := range assetIDs {
		if _, ok := m.imported[id]; !ok {
			m.imported[id] = now
		}
	}
}

func (m *MockStore) deleteDraft(draftID string) {
	d, ok := m.drafts[draftID]
	if !ok {
		return
	}
	for _, id := range d.AssetIdentifiers {
		delete(m.draftAssets, id)
	}
	delete(m.drafts, draftID)
}
