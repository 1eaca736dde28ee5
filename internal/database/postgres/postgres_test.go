//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kozaktomas/photo-memories/internal/config"
	"github.com/kozaktomas/photo-memories/internal/database"
	"github.com/kozaktomas/photo-memories/internal/geo"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}
	if container == nil {
		t.Skip("Docker not available, skipping integration test")
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dbURL := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	cfg := &config.DatabaseConfig{
		URL:          dbURL,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	pool, err := NewPool(cfg)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	// Run migrations
	if _, err := pool.Migrate(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}

	return pool, cleanup
}

func TestCheckpoints(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	store := pool.Store()

	if err := store.SaveCheckpoint(ctx, "PhotoImportCheckpoint", []byte(`{"scannedCount":50}`)); err != nil {
		t.Fatalf("Failed to save checkpoint: %v", err)
	}
	if err := store.SaveCheckpoint(ctx, "PhotoImportCheckpoint", []byte(`{"scannedCount":100}`)); err != nil {
		t.Fatalf("Failed to overwrite checkpoint: %v", err)
	}

	data, err := store.LoadCheckpoint(ctx, "PhotoImportCheckpoint")
	if err != nil {
		t.Fatalf("Failed to load checkpoint: %v", err)
	}
	if string(data) != `{"scannedCount":100}` {
		t.Errorf("Expected latest checkpoint, got %q", data)
	}

	if err := store.DeleteCheckpoint(ctx, "PhotoImportCheckpoint"); err != nil {
		t.Fatalf("Failed to delete checkpoint: %v", err)
	}
	data, err = store.LoadCheckpoint(ctx, "PhotoImportCheckpoint")
	if err != nil {
		t.Fatalf("Failed to load checkpoint: %v", err)
	}
	if data != nil {
		t.Errorf("Expected nil after delete, got %q", data)
	}
}

func TestDraftLifecycle(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	store := pool.Store()
	location := "Paris, France"

	accepted := &database.DraftEvent{
		Date:             time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		AssetIdentifiers: []string{"a", "b", "c"},
		LocationName:     &location,
		Coordinate:       &geo.Coordinate{Lat: 48.8566, Lng: 2.3522},
	}
	rejected := &database.DraftEvent{
		Date:             time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC),
		AssetIdentifiers: []string{"d", "e"},
	}

	t.Run("Insert", func(t *testing.T) {
		for _, d := range []*database.DraftEvent{accepted, rejected} {
			if err := store.InsertDraft(ctx, d); err != nil {
				t.Fatalf("Failed to insert draft: %v", err)
			}
		}

		drafts, err := store.ListDrafts(ctx, database.StatusPending)
		if err != nil {
			t.Fatalf("Failed to list drafts: %v", err)
		}
		if len(drafts) != 2 {
			t.Fatalf("Expected 2 drafts, got %d", len(drafts))
		}
		if drafts[0].ID != rejected.ID {
			t.Errorf("Expected newest draft first, got %s", drafts[0].ID)
		}
		if len(drafts[1].AssetIdentifiers) != 3 || drafts[1].AssetIdentifiers[0] != "a" {
			t.Errorf("Unexpected asset identifiers %v", drafts[1].AssetIdentifiers)
		}
	})

	t.Run("DuplicateAsset", func(t *testing.T) {
		d := &database.DraftEvent{Date: time.Now(), AssetIdentifiers: []string{"a"}}
		if err := store.InsertDraft(ctx, d); err == nil {
			t.Error("Expected error for asset already in a draft")
		}
	})

	t.Run("Accept", func(t *testing.T) {
		event := &database.LifeEvent{
			Title:    location,
			Date:     accepted.Date,
			Category: database.CategoryTravel,
			PhotoIDs: []string{"a", "b"},
			PhotoID:  &accepted.AssetIdentifiers[0],
		}
		if err := store.AcceptDraft(ctx, accepted.ID, event, []string{"a", "b"}); err != nil {
			t.Fatalf("Failed to accept draft: %v", err)
		}

		got, err := store.GetEvent(ctx, event.ID)
		if err != nil {
			t.Fatalf("Failed to get event: %v", err)
		}
		if got == nil || len(got.PhotoIDs) != 2 {
			t.Fatalf("Unexpected event %+v", got)
		}

		draft, err := store.GetDraft(ctx, accepted.ID)
		if err != nil {
			t.Fatalf("Failed to get draft: %v", err)
		}
		if draft != nil {
			t.Error("Expected accepted draft to be deleted")
		}
	})

	t.Run("Reject", func(t *testing.T) {
		if err := store.RejectDraft(ctx, rejected.ID, rejected.AssetIdentifiers); err != nil {
			t.Fatalf("Failed to reject draft: %v", err)
		}

		count, err := store.CountImportedAssets(ctx)
		if err != nil {
			t.Fatalf("Failed to count imported assets: %v", err)
		}
		if count != 4 {
			t.Errorf("Expected 4 imported assets, got %d", count)
		}
	})

	t.Run("Reset", func(t *testing.T) {
		if err := store.ResetAnalysisHistory(ctx); err != nil {
			t.Fatalf("Failed to reset: %v", err)
		}

		ids, err := store.ImportedAssetIDs(ctx)
		if err != nil {
			t.Fatalf("Failed to read imported ids: %v", err)
		}
		if len(ids) != 0 {
			t.Errorf("Expected empty import log, got %v", ids)
		}

		events, err := store.ListEvents(ctx)
		if err != nil {
			t.Fatalf("Failed to list events: %v", err)
		}
		if len(events) != 1 {
			t.Errorf("Expected events to survive reset, got %d", len(events))
		}
	})
}

func TestMigrations(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()

	// Check migrations were applied
	applied, err := pool.MigrationsApplied(ctx)
	if err != nil {
		t.Fatalf("Failed to get applied migrations: %v", err)
	}

	expectedMigrations := []string{
		"001_initial.sql",
	}

	if len(applied) != len(expectedMigrations) {
		t.Errorf("Expected %d migrations, got %d", len(expectedMigrations), len(applied))
	}

	for i, expected := range expectedMigrations {
		if i < len(applied) && applied[i] != expected {
			t.Errorf("Migration %d: expected '%s', got '%s'", i, expected, applied[i])
		}
	}

	// Migrating again is a no-op
	again, err := pool.Migrate(ctx)
	if err != nil {
		t.Fatalf("Failed to re-run migrations: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("Expected no pending migrations, got %v", again)
	}
}
