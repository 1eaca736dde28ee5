// Package sqlite is the default local backend: a single database file
// driven by modernc.org/sqlite, shared SQL from sqlstore.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/kozaktomas/photo-memories/internal/database/sqlstore"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS drafts (
	id            TEXT PRIMARY KEY,
	date          DATETIME NOT NULL,
	location_name TEXT,
	lat           REAL,
	lng           REAL,
	status        TEXT NOT NULL DEFAULT 'pending',
	notes         TEXT,
	creation_date DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_drafts_status_date ON drafts(status, date);

CREATE TABLE IF NOT EXISTS draft_assets (
	asset_id TEXT PRIMARY KEY,
	draft_id TEXT NOT NULL REFERENCES drafts(id) ON DELETE CASCADE,
	position INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_draft_assets_draft ON draft_assets(draft_id, position);

CREATE TABLE IF NOT EXISTS imported_assets (
	asset_id    TEXT PRIMARY KEY,
	import_date DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS life_events (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	date          DATETIME NOT NULL,
	category      TEXT NOT NULL DEFAULT 'Event',
	notes         TEXT,
	location_name TEXT,
	lat           REAL,
	lng           REAL,
	photo_id      TEXT,
	created_at    DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_life_events_date ON life_events(date);

CREATE TABLE IF NOT EXISTS event_photos (
	event_id TEXT NOT NULL REFERENCES life_events(id) ON DELETE CASCADE,
	photo_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	PRIMARY KEY (event_id, photo_id)
);
`

// NewStore opens (creating when needed) the database file at dbPath and
// applies the schema.
func NewStore(dbPath string) (*sqlstore.Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)&_time_format=sqlite")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// A single writer connection keeps transactions from hitting SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return sqlstore.New(db, sq.Question), nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
