package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/photo-memories/internal/database"
	"github.com/kozaktomas/photo-memories/internal/importer"
)

const statsCacheTTL = 30 * time.Second

// statsCache holds cached stats with expiry
type statsCache struct {
	mu        sync.RWMutex
	data      *StatsResponse
	expiresAt time.Time
}

func (c *statsCache) get() (*StatsResponse, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data == nil || time.Now().After(c.expiresAt) {
		return nil, false
	}
	return c.data, true
}

func (c *statsCache) set(data *StatsResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = data
	c.expiresAt = time.Now().Add(statsCacheTTL)
}

func (c *statsCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = nil
}

// StatsStore is the read access the stats endpoint needs.
type StatsStore interface {
	database.DraftReader
	database.ImportLogReader
	database.EventReader
}

// ScanStateReader reports the persisted scan state.
type ScanStateReader interface {
	Status(ctx context.Context) (importer.ScanState, error)
}

// StatsHandler handles statistics endpoints
type StatsHandler struct {
	store StatsStore
	scans ScanStateReader
	log   logrus.FieldLogger
	cache statsCache
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(store StatsStore, scans ScanStateReader, log logrus.FieldLogger) *StatsHandler {
	return &StatsHandler{
		store: store,
		scans: scans,
		log:   log,
	}
}

// InvalidateCache clears the cached stats so the next request reads fresh data
func (h *StatsHandler) InvalidateCache() {
	h.cache.invalidate()
}

// StatsResponse represents the statistics response
type StatsResponse struct {
	PendingDrafts  int  `json:"pending_drafts"`
	ImportedAssets int  `json:"imported_assets"`
	LifeEvents     int  `json:"life_events"`
	ScannedAssets  int  `json:"scanned_assets"`
	ScanResumable  bool `json:"scan_resumable"`
}

func (h *StatsHandler) collect(ctx context.Context) (*StatsResponse, error) {
	drafts, err := h.store.ListDrafts(ctx, database.StatusPending)
	if err != nil {
		return nil, err
	}
	imported, err := h.store.CountImportedAssets(ctx)
	if err != nil {
		return nil, err
	}
	events, err := h.store.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	state, err := h.scans.Status(ctx)
	if err != nil {
		return nil, err
	}

	return &StatsResponse{
		PendingDrafts:  len(drafts),
		ImportedAssets: imported,
		LifeEvents:     len(events),
		ScannedAssets:  state.ScannedCount,
		ScanResumable:  state.Resuming(),
	}, nil
}

// Get returns counts of drafts, logged assets and events
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if cached, ok := h.cache.get(); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	stats, err := h.collect(r.Context())
	if err != nil {
		h.log.WithError(err).Error("Failed to collect stats")
		respondServiceError(w, err)
		return
	}

	h.cache.set(stats)
	respondJSON(w, http.StatusOK, stats)
}
