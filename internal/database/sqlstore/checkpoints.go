package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// LoadCheckpoint returns the blob stored under key, nil if absent.
func (s *Store) LoadCheckpoint(ctx context.Context, key string) ([]byte, error) {
	q, args, err := s.sb.Select("value").From("kv_store").Where("key = ?", key).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var data []byte
	err = s.db.QueryRowContext(ctx, q, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	return data, nil
}

// SaveCheckpoint stores (or replaces) the blob under key.
func (s *Store) SaveCheckpoint(ctx context.Context, key string, data []byte) error {
	b := s.sb.Insert("kv_store").
		Columns("key", "value", "updated_at").
		Values(key, data, time.Now().UTC()).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at")
	if err := exec(ctx, s.db, b); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// DeleteCheckpoint removes key.
func (s *Store) DeleteCheckpoint(ctx context.Context, key string) error {
	if err := exec(ctx, s.db, s.sb.Delete("kv_store").Where("key = ?", key)); err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	return nil
}
