package sqlite

import (
	"context"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/kozaktomas/photo-memories/internal/database"
	"github.com/kozaktomas/photo-memories/internal/database/sqlstore"
	"github.com/kozaktomas/photo-memories/internal/geo"
)

func newTestStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func strPtr(s string) *string { return &s }

func insertDraft(t *testing.T, s *sqlstore.Store, date time.Time, assets ...string) *database.DraftEvent {
	t.Helper()
	d := &database.DraftEvent{
		Date:             date,
		AssetIdentifiers: assets,
		LocationName:     strPtr("Paris, France"),
		Coordinate:       &geo.Coordinate{Lat: 48.8566, Lng: 2.3522},
	}
	if err := s.InsertDraft(context.Background(), d); err != nil {
		t.Fatalf("insert draft: %v", err)
	}
	return d
}

func TestNewStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "memories.db")
	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	if err := s.SaveCheckpoint(context.Background(), "k", []byte("v")); err != nil {
		t.Fatalf("save: %v", err)
	}
	s.Close()

	s, err = NewStore(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer s.Close()

	data, err := s.LoadCheckpoint(context.Background(), "k")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != "v" {
		t.Errorf("expected persisted value 'v', got %q", data)
	}
}

func TestCheckpoint(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	data, err := s.LoadCheckpoint(ctx, "PhotoImportCheckpoint")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if data != nil {
		t.Errorf("expected nil for missing key, got %q", data)
	}

	if err := s.SaveCheckpoint(ctx, "PhotoImportCheckpoint", []byte(`{"scannedCount":50}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SaveCheckpoint(ctx, "PhotoImportCheckpoint", []byte(`{"scannedCount":100}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	data, err = s.LoadCheckpoint(ctx, "PhotoImportCheckpoint")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != `{"scannedCount":100}` {
		t.Errorf("unexpected checkpoint %q", data)
	}

	if err := s.DeleteCheckpoint(ctx, "PhotoImportCheckpoint"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteCheckpoint(ctx, "PhotoImportCheckpoint"); err != nil {
		t.Fatalf("delete missing key: %v", err)
	}
	data, _ = s.LoadCheckpoint(ctx, "PhotoImportCheckpoint")
	if data != nil {
		t.Errorf("expected checkpoint to be gone, got %q", data)
	}
}

func TestDrafts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	older := insertDraft(t, s, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), "c", "a", "b")
	newer := insertDraft(t, s, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), "d")

	if older.ID == "" || older.Status != database.StatusPending || older.CreationDate.IsZero() {
		t.Errorf("expected defaults to be filled, got %+v", older)
	}

	got, err := s.GetDraft(ctx, older.ID)
	if err != nil {
		t.Fatalf("get draft: %v", err)
	}
	if got == nil {
		t.Fatal("expected draft, got nil")
	}
	if !slices.Equal(got.AssetIdentifiers, []string{"c", "a", "b"}) {
		t.Errorf("expected asset order preserved, got %v", got.AssetIdentifiers)
	}
	if !got.Date.Equal(older.Date) {
		t.Errorf("expected date %v, got %v", older.Date, got.Date)
	}
	if got.LocationName == nil || *got.LocationName != "Paris, France" {
		t.Errorf("unexpected location name %v", got.LocationName)
	}
	if got.Notes != nil {
		t.Errorf("expected nil notes, got %q", *got.Notes)
	}
	if got.Coordinate == nil || got.Coordinate.Lat != 48.8566 {
		t.Errorf("unexpected coordinate %+v", got.Coordinate)
	}

	missing, err := s.GetDraft(ctx, "nope")
	if err != nil {
		t.Fatalf("get missing draft: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing draft, got %+v", missing)
	}

	list, err := s.ListDrafts(ctx, database.StatusPending)
	if err != nil {
		t.Fatalf("list drafts: %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.ID || list[1].ID != older.ID {
		t.Errorf("expected newest first, got %+v", list)
	}

	ignored, err := s.ListDrafts(ctx, database.StatusIgnored)
	if err != nil {
		t.Fatalf("list ignored: %v", err)
	}
	if len(ignored) != 0 {
		t.Errorf("expected no ignored drafts, got %d", len(ignored))
	}

	ids, err := s.DraftAssetIDs(ctx)
	if err != nil {
		t.Fatalf("draft asset ids: %v", err)
	}
	slices.Sort(ids)
	if !slices.Equal(ids, []string{"a", "b", "c", "d"}) {
		t.Errorf("unexpected draft asset ids %v", ids)
	}
}

func TestInsertDraft_Validation(t *testing.T) {
	s := newTestStore(t)
	if err := s.InsertDraft(context.Background(), &database.DraftEvent{Date: time.Now()}); err == nil {
		t.Error("expected error for draft without assets")
	}
}

func TestInsertDraft_AssetAlreadyDrafted(t *testing.T) {
	s := newTestStore(t)
	insertDraft(t, s, time.Now(), "a", "b")

	d := &database.DraftEvent{Date: time.Now(), AssetIdentifiers: []string{"b", "c"}}
	if err := s.InsertDraft(context.Background(), d); err == nil {
		t.Fatal("expected error when an asset already belongs to a draft")
	}

	// The failed insert must not leave a partial draft behind.
	list, _ := s.ListDrafts(context.Background(), "")
	if len(list) != 1 {
		t.Errorf("expected 1 draft after rollback, got %d", len(list))
	}
}

func TestAcceptDraft(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	d := insertDraft(t, s, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), "a", "b", "c")

	event := &database.LifeEvent{
		Title:        "Paris, France",
		Date:         d.Date,
		Category:     database.CategoryTravel,
		Notes:        strPtr("Great trip"),
		LocationName: d.LocationName,
		Coordinate:   d.Coordinate,
		PhotoIDs:     []string{"a", "c"},
		PhotoID:      strPtr("a"),
	}
	if err := s.AcceptDraft(ctx, d.ID, event, []string{"a", "c"}); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if event.ID == "" {
		t.Error("expected event ID to be assigned")
	}

	if got, _ := s.GetDraft(ctx, d.ID); got != nil {
		t.Errorf("expected draft to be deleted, got %+v", got)
	}
	ids, _ := s.DraftAssetIDs(ctx)
	if len(ids) != 0 {
		t.Errorf("expected no draft assets, got %v", ids)
	}

	imported, err := s.ImportedAssetIDs(ctx)
	if err != nil {
		t.Fatalf("imported ids: %v", err)
	}
	slices.Sort(imported)
	if !slices.Equal(imported, []string{"a", "c"}) {
		t.Errorf("expected only selected assets logged, got %v", imported)
	}

	got, err := s.GetEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if got == nil {
		t.Fatal("expected event, got nil")
	}
	if got.Title != "Paris, France" || got.Category != database.CategoryTravel {
		t.Errorf("unexpected event %+v", got)
	}
	if !slices.Equal(got.PhotoIDs, []string{"a", "c"}) {
		t.Errorf("unexpected photo ids %v", got.PhotoIDs)
	}
	if got.PhotoID == nil || *got.PhotoID != "a" {
		t.Errorf("unexpected primary photo %v", got.PhotoID)
	}

	events, err := s.ListEvents(ctx)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected 1 event, got %d", len(events))
	}
}

func TestRejectDraft(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	d := insertDraft(t, s, time.Now(), "a", "b", "c")

	if err := s.RejectDraft(ctx, d.ID, d.AssetIdentifiers); err != nil {
		t.Fatalf("reject: %v", err)
	}
	// Logging the same assets twice is not an error.
	d2 := insertDraft(t, s, time.Now(), "x")
	if err := s.RejectDraft(ctx, d2.ID, []string{"x", "a"}); err != nil {
		t.Fatalf("reject with already logged asset: %v", err)
	}

	count, err := s.CountImportedAssets(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 4 {
		t.Errorf("expected 4 logged assets, got %d", count)
	}
	events, _ := s.ListEvents(ctx)
	if len(events) != 0 {
		t.Errorf("expected reject to create no events, got %d", len(events))
	}
}

func TestResetAnalysisHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	d := insertDraft(t, s, time.Now(), "a")
	insertDraft(t, s, time.Now(), "b")
	if err := s.AcceptDraft(ctx, d.ID, &database.LifeEvent{Title: "x", Date: time.Now(), Category: database.CategoryEvent}, []string{"a"}); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if err := s.ResetAnalysisHistory(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if n, _ := s.CountImportedAssets(ctx); n != 0 {
		t.Errorf("expected empty log, got %d", n)
	}
	if list, _ := s.ListDrafts(ctx, ""); len(list) != 0 {
		t.Errorf("expected no drafts, got %d", len(list))
	}
	if events, _ := s.ListEvents(ctx); len(events) != 1 {
		t.Errorf("expected life events to survive reset, got %d", len(events))
	}
}
