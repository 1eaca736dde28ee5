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

var draftColumns = []string{"id", "date", "location_name", "lat", "lng", "status", "notes", "creation_date"}

// InsertDraft persists a draft and its ordered asset list in one transaction.
func (s *Store) InsertDraft(ctx context.Context, draft *database.DraftEvent) error {
	if len(draft.AssetIdentifiers) == 0 {
		return fmt.Errorf("insert draft: no asset identifiers")
	}
	if draft.ID == "" {
		draft.ID = newDraftID()
	}
	if draft.CreationDate.IsZero() {
		draft.CreationDate = time.Now()
	}
	if draft.Status == "" {
		draft.Status = database.StatusPending
	}

	var lat, lng sql.NullFloat64
	if draft.Coordinate != nil {
		lat = sql.NullFloat64{Float64: draft.Coordinate.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: draft.Coordinate.Lng, Valid: true}
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		b := s.sb.Insert("drafts").Columns(draftColumns...).Values(
			draft.ID, draft.Date.UTC(), nullString(draft.LocationName), lat, lng,
			string(draft.Status), nullString(draft.Notes), draft.CreationDate.UTC(),
		)
		if err := exec(ctx, tx, b); err != nil {
			return fmt.Errorf("insert draft: %w", err)
		}

		assets := s.sb.Insert("draft_assets").Columns("draft_id", "asset_id", "position")
		for i, id := range draft.AssetIdentifiers {
			assets = assets.Values(draft.ID, id, i)
		}
		if err := exec(ctx, tx, assets); err != nil {
			return fmt.Errorf("insert draft assets: %w", err)
		}
		return nil
	})
}

// GetDraft retrieves a draft by ID, returns nil if not found.
func (s *Store) GetDraft(ctx context.Context, id string) (*database.DraftEvent, error) {
	drafts, err := s.selectDrafts(ctx, sq.Eq{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}
	if len(drafts) == 0 {
		return nil, nil
	}
	return &drafts[0], nil
}

// ListDrafts returns drafts with the given status (all when empty), newest first.
func (s *Store) ListDrafts(ctx context.Context, status database.ImportStatus) ([]database.DraftEvent, error) {
	var where sq.Sqlizer = sq.Expr("1 = 1")
	if status != "" {
		where = sq.Eq{"status": string(status)}
	}
	drafts, err := s.selectDrafts(ctx, where)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	return drafts, nil
}

// DraftAssetIDs returns every asset identifier referenced by any draft.
func (s *Store) DraftAssetIDs(ctx context.Context) ([]string, error) {
	rows, err := query(ctx, s.db, s.sb.Select("asset_id").From("draft_assets"))
	if err != nil {
		return nil, fmt.Errorf("draft asset ids: %w", err)
	}
	return scanStrings(rows)
}

func (s *Store) selectDrafts(ctx context.Context, where sq.Sqlizer) ([]database.DraftEvent, error) {
	rows, err := query(ctx, s.db, s.sb.Select(draftColumns...).From("drafts").Where(where).OrderBy("date DESC", "id"))
	if err != nil {
		return nil, err
	}

	var drafts []database.DraftEvent
	index := make(map[string]int)
	func() {
		defer rows.Close()
		for rows.Next() {
			var (
				d               database.DraftEvent
				date, created   dbTime
				location, notes sql.NullString
				lat, lng        sql.NullFloat64
				status          string
			)
			if err = rows.Scan(&d.ID, &date, &location, &lat, &lng, &status, &notes, &created); err != nil {
				err = fmt.Errorf("scan draft: %w", err)
				return
			}
			d.Date = date.Time
			d.CreationDate = created.Time
			d.LocationName = fromNullString(location)
			d.Notes = fromNullString(notes)
			d.Status = database.ParseImportStatus(status)
			if lat.Valid && lng.Valid {
				d.Coordinate = &geo.Coordinate{Lat: lat.Float64, Lng: lng.Float64}
			}
			index[d.ID] = len(drafts)
			drafts = append(drafts, d)
		}
		err = rows.Err()
	}()
	if err != nil {
		return nil, err
	}
	if len(drafts) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(drafts))
	for _, d := range drafts {
		ids = append(ids, d.ID)
	}

	assetRows, err := query(ctx, s.db, s.sb.Select("draft_id", "asset_id").
		From("draft_assets").
		Where(sq.Eq{"draft_id": ids}).
		OrderBy("draft_id", "position"))
	if err != nil {
		return nil, err
	}
	defer assetRows.Close()

	for assetRows.Next() {
		var draftID, assetID string
		if err := assetRows.Scan(&draftID, &assetID); err != nil {
			return nil, fmt.Errorf("scan draft asset: %w", err)
		}
		if i, ok := index[draftID]; ok {
			drafts[i].AssetIdentifiers = append(drafts[i].AssetIdentifiers, assetID)
		}
	}
	if err := assetRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate draft assets: %w", err)
	}

	return drafts, nil
}
