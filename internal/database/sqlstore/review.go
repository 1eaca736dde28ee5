package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/kozaktomas/photo-memories/internal/database"
	"github.com/kozaktomas/photo-memories/internal/geo"
)

// ImportedAssetIDs returns every logged asset identifier.
func (s *Store) ImportedAssetIDs(ctx context.Context) ([]string, error) {
	rows, err := query(ctx, s.db, s.sb.Select("asset_id").From("imported_assets"))
	if err != nil {
		return nil, fmt.Errorf("imported asset ids: %w", err)
	}
	return scanStrings(rows)
}

// CountImportedAssets returns the size of the imported asset log.
func (s *Store) CountImportedAssets(ctx context.Context) (int, error) {
	q, args, err := s.sb.Select("COUNT(*)").From("imported_assets").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	var count int
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count imported assets: %w", err)
	}
	return count, nil
}

// logAssets inserts one log entry per asset; already logged assets are left untouched.
func (s *Store) logAssets(ctx context.Context, tx *sql.Tx, assetIDs []string) error {
	if len(assetIDs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	b := s.sb.Insert("imported_assets").Columns("asset_id", "import_date")
	for _, id := range assetIDs {
		b = b.Values(id, now)
	}
	b = b.Suffix("ON CONFLICT (asset_id) DO NOTHING")
	if err := exec(ctx, tx, b); err != nil {
		return fmt.Errorf("log imported assets: %w", err)
	}
	return nil
}

// deleteDraft removes a draft and its asset rows.
func (s *Store) deleteDraft(ctx context.Context, tx *sql.Tx, draftID string) error {
	if err := exec(ctx, tx, s.sb.Delete("draft_assets").Where(sq.Eq{"draft_id": draftID})); err != nil {
		return fmt.Errorf("delete draft assets: %w", err)
	}
	if err := exec(ctx, tx, s.sb.Delete("drafts").Where(sq.Eq{"id": draftID})); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

// AcceptDraft inserts the event, logs assetIDs and deletes the draft.
func (s *Store) AcceptDraft(ctx context.Context, draftID string, event *database.LifeEvent, assetIDs []string) error {
	if event.ID == "" {
		event.ID = newEventID()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var lat, lng sql.NullFloat64
	if event.Coordinate != nil {
		lat = sql.NullFloat64{Float64: event.Coordinate.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: event.Coordinate.Lng, Valid: true}
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		b := s.sb.Insert("life_events").
			Columns("id", "title", "date", "category", "notes", "location_name", "lat", "lng", "photo_id", "created_at").
			Values(event.ID, event.Title, event.Date.UTC(), string(event.Category), nullString(event.Notes),
				nullString(event.LocationName), lat, lng, nullString(event.PhotoID), event.CreatedAt.UTC())
		if err := exec(ctx, tx, b); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}

		if len(event.PhotoIDs) > 0 {
			photos := s.sb.Insert("event_photos").Columns("event_id", "photo_id", "position")
			for i, id := range event.PhotoIDs {
				photos = photos.Values(event.ID, id, i)
			}
			if err := exec(ctx, tx, photos); err != nil {
				return fmt.Errorf("insert event photos: %w", err)
			}
		}

		if err := s.logAssets(ctx, tx, assetIDs); err != nil {
			return err
		}
		return s.deleteDraft(ctx, tx, draftID)
	})
}

// RejectDraft logs assetIDs and deletes the draft.
func (s *Store) RejectDraft(ctx context.Context, draftID string, assetIDs []string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.logAssets(ctx, tx, assetIDs); err != nil {
			return err
		}
		return s.deleteDraft(ctx, tx, draftID)
	})
}

// ResetAnalysisHistory deletes the whole imported asset log and every draft.
// Life events are left untouched.
func (s *Store) ResetAnalysisHistory(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"imported_assets", "draft_assets", "drafts"} {
			if err := exec(ctx, tx, s.sb.Delete(table)); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

var eventColumns = []string{"id", "title", "date", "category", "notes", "location_name", "lat", "lng", "photo_id", "created_at"}

// GetEvent retrieves an event by ID, returns nil if not found.
func (s *Store) GetEvent(ctx context.Context, id string) (*database.LifeEvent, error) {
	events, err := s.selectEvents(ctx, sq.Eq{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &events[0], nil
}

// ListEvents returns all events, newest first.
func (s *Store) ListEvents(ctx context.Context) ([]database.LifeEvent, error) {
	events, err := s.selectEvents(ctx, sq.Expr("1 = 1"))
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *Store) selectEvents(ctx context.Context, where sq.Sqlizer) ([]database.LifeEvent, error) {
	rows, err := query(ctx, s.db, s.sb.Select(eventColumns...).From("life_events").Where(where).OrderBy("date DESC", "id"))
	if err != nil {
		return nil, err
	}

	var events []database.LifeEvent
	index := make(map[string]int)
	func() {
		defer rows.Close()
		for rows.Next() {
			var (
				e                        database.LifeEvent
				date, created            dbTime
				notes, location, photoID sql.NullString
				lat, lng                 sql.NullFloat64
				category                 string
			)
			if err = rows.Scan(&e.ID, &e.Title, &date, &category, &notes, &location, &lat, &lng, &photoID, &created); err != nil {
				err = fmt.Errorf("scan event: %w", err)
				return
			}
			e.Date = date.Time
			e.CreatedAt = created.Time
			e.Category = database.ParseCategory(category)
			e.Notes = fromNullString(notes)
			e.LocationName = fromNullString(location)
			e.PhotoID = fromNullString(photoID)
			if lat.Valid && lng.Valid {
				e.Coordinate = &geo.Coordinate{Lat: lat.Float64, Lng: lng.Float64}
			}
			index[e.ID] = len(events)
			events = append(events, e)
		}
		err = rows.Err()
	}()
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	photoRows, err := query(ctx, s.db, s.sb.Select("event_id", "photo_id").
		From("event_photos").
		Where(sq.Eq{"event_id": ids}).
		OrderBy("event_id", "position"))
	if err != nil {
		return nil, err
	}
	defer photoRows.Close()

	for photoRows.Next() {
		var eventID, photoID string
		if err := photoRows.Scan(&eventID, &photoID); err != nil {
			return nil, fmt.Errorf("scan event photo: %w", err)
		}
		if i, ok := index[eventID]; ok {
			events[i].PhotoIDs = append(events[i].PhotoIDs, photoID)
		}
	}
	if err := photoRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event photos: %w", err)
	}

	return events, nil
}
