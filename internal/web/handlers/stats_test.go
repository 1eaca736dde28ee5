package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kozaktomas/photo-memories/internal/database/mock"
	"github.com/kozaktomas/photo-memories/internal/importer"
	"github.com/kozaktomas/photo-memories/internal/logging"
)

func TestStatsHandler_Get(t *testing.T) {
	store := mock.NewMockStore()
	store.AddImported("a", "b", "c")
	seedDraft(t, store, "p1", "p2")

	last := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	engine := &fakeScanEngine{state: importer.ScanState{ScannedCount: 150, LastScannedDate: &last}}
	h := NewStatsHandler(store, engine, logging.Discard())

	recorder := httptest.NewRecorder()
	h.Get(recorder, httptest.NewRequest("GET", "/api/v1/stats", nil))
	assertStatusCode(t, recorder, http.StatusOK)

	var result StatsResponse
	parseJSONResponse(t, recorder, &result)
	want := StatsResponse{PendingDrafts: 1, ImportedAssets: 3, ScannedAssets: 150, ScanResumable: true}
	if result != want {
		t.Errorf("expected %+v, got %+v", want, result)
	}
}

func TestStatsHandler_Cache(t *testing.T) {
	store := mock.NewMockStore()
	h := NewStatsHandler(store, &fakeScanEngine{}, logging.Discard())

	h.Get(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/v1/stats", nil))
	seedDraft(t, store, "p1")

	recorder := httptest.NewRecorder()
	h.Get(recorder, httptest.NewRequest("GET", "/api/v1/stats", nil))
	var cached StatsResponse
	parseJSONResponse(t, recorder, &cached)
	if cached.PendingDrafts != 0 {
		t.Errorf("expected cached response, got %+v", cached)
	}

	h.InvalidateCache()
	recorder = httptest.NewRecorder()
	h.Get(recorder, httptest.NewRequest("GET", "/api/v1/stats", nil))
	var fresh StatsResponse
	parseJSONResponse(t, recorder, &fresh)
	if fresh.PendingDrafts != 1 {
		t.Errorf("expected fresh response after invalidation, got %+v", fresh)
	}
}

func TestStatsHandler_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*mock.MockStore, *fakeScanEngine)
	}{
		{"drafts", func(s *mock.MockStore, _ *fakeScanEngine) { s.ListDraftsError = errors.New("boom") }},
		{"import log", func(s *mock.MockStore, _ *fakeScanEngine) { s.CountImportedError = errors.New("boom") }},
		{"events", func(s *mock.MockStore, _ *fakeScanEngine) { s.ListEventsError = errors.New("boom") }},
		{"scan state", func(_ *mock.MockStore, e *fakeScanEngine) { e.statusErr = errors.New("boom") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mock.NewMockStore()
			engine := &fakeScanEngine{}
			tt.setup(store, engine)
			h := NewStatsHandler(store, engine, logging.Discard())

			recorder := httptest.NewRecorder()
			h.Get(recorder, httptest.NewRequest("GET", "/api/v1/stats", nil))

			assertStatusCode(t, recorder, http.StatusInternalServerError)
			if _, ok := h.cache.get(); ok {
				t.Error("expected failed stats not to be cached")
			}
		})
	}
}
