package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"

	"github.com/kozaktomas/photo-memories/internal/geo"
	"github.com/kozaktomas/photo-memories/internal/photoprism"
	"github.com/kozaktomas/photo-memories/internal/photos"
)

// MySQL error numbers meaning the configured user may not read the library.
const (
	errDBAccessDenied    = 1044
	errAccessDenied      = 1045
	errTableAccessDenied = 1142
)

var _ photos.Library = (*Pool)(nil)

// RequestAuthorization reports whether the configured user can read the photos table.
func (p *Pool) RequestAuthorization(ctx context.Context) (photos.AuthorizationStatus, error) {
	q, args, err := sq.Select("1").From("photos").Limit(1).ToSql()
	if err != nil {
		return photos.AuthorizationNotDetermined, fmt.Errorf("build query: %w", err)
	}
	var one int
	err = p.db.QueryRowContext(ctx, q, args...).Scan(&one)
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return photos.AuthorizationAuthorized, nil
	}
	return authorizationFromError(err)
}

func authorizationFromError(err error) (photos.AuthorizationStatus, error) {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case errDBAccessDenied, errAccessDenied, errTableAccessDenied:
			return photos.AuthorizationDenied, nil
		}
	}
	return photos.AuthorizationNotDetermined, fmt.Errorf("check photo library access: %w", err)
}

// FetchImages returns non-deleted images newest first, strictly older than opts.Before when set.
func (p *Pool) FetchImages(ctx context.Context, opts photos.FetchOptions) ([]photos.Asset, error) {
	q, args, err := fetchQuery(opts).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query photos: %w", err)
	}
	defer rows.Close()

	var assets []photos.Asset
	for rows.Next() {
		var (
			r       photoRow
			takenAt sql.NullTime
		)
		if err := rows.Scan(&r.UID, &takenAt, &r.Lat, &r.Lng, &r.OriginalName, &r.Name); err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		if takenAt.Valid {
			r.TakenAt = takenAt.Time
		}
		assets = append(assets, r.asset())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate photos: %w", err)
	}
	return assets, nil
}

// fetchQuery selects the same still image types the REST adapter scans.
func fetchQuery(opts photos.FetchOptions) sq.SelectBuilder {
	b := sq.Select("photo_uid", "taken_at", "photo_lat", "photo_lng", "original_name", "photo_name").
		From("photos").
		Where(sq.Eq{"photo_type": photoprism.StillImageTypes()}).
		Where(sq.Eq{"deleted_at": nil}).
		OrderBy("taken_at DESC", "photo_uid")
	if !opts.Before.IsZero() {
		b = b.Where(sq.Lt{"taken_at": opts.Before.UTC()})
	}
	return b
}

type photoRow struct {
	UID          string
	TakenAt      time.Time
	Lat, Lng     float64
	OriginalName string
	Name         string
}

// asset converts a row. PhotoPrism stores 0,0 for photos without GPS data.
func (r photoRow) asset() photos.Asset {
	a := photos.Asset{
		ID:         r.UID,
		CreatedAt:  r.TakenAt,
		Kind:       photos.MediaKindImage,
		Screenshot: photos.LooksLikeScreenshot(r.OriginalName, r.Name),
	}
	if r.Lat != 0 || r.Lng != 0 {
		a.Location = &geo.Coordinate{Lat: r.Lat, Lng: r.Lng}
	}
	return a
}
