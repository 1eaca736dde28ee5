package photoprism

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/kozaktomas/photo-memories/internal/constants"
	"github.com/kozaktomas/photo-memories/internal/geo"
	"github.com/kozaktomas/photo-memories/internal/photos"
)

// Library exposes a PhotoPrism instance as a read-only photo library.
type Library struct {
	pp       *PhotoPrism
	pageSize int
}

var _ photos.Library = (*Library)(nil)

// NewLibrary wraps an authenticated client. pageSize <= 0 uses the default page size.
func NewLibrary(pp *PhotoPrism, pageSize int) *Library {
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}
	return &Library{pp: pp, pageSize: pageSize}
}

// Client returns the underlying API client.
func (l *Library) Client() *PhotoPrism {
	return l.pp
}

// RequestAuthorization probes the photo search with the current session.
func (l *Library) RequestAuthorization(ctx context.Context) (photos.AuthorizationStatus, error) {
	_, err := l.pp.GetPhotos(ctx, SearchOptions{Count: 1})
	switch {
	case err == nil:
		return photos.AuthorizationAuthorized, nil
	case IsAuthError(err):
		return photos.AuthorizationDenied, nil
	default:
		return photos.AuthorizationNotDetermined, fmt.Errorf("check photo library access: %w", err)
	}
}

// FetchImages pages through the still images newest first. PhotoPrism's
// before: filter has day granularity, so the bound is re-applied exactly.
func (l *Library) FetchImages(ctx context.Context, opts photos.FetchOptions) ([]photos.Asset, error) {
	query := "photo:true"
	if !opts.Before.IsZero() {
		// before: is exclusive of the given day
		query += " before:" + opts.Before.UTC().AddDate(0, 0, 1).Format("2006-01-02")
	}

	var assets []photos.Asset
	for offset := 0; ; offset += l.pageSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := l.pp.GetPhotos(ctx, SearchOptions{
			Count:  l.pageSize,
			Offset: offset,
			Query:  query,
			Order:  "newest",
		})
		if err != nil {
			return nil, fmt.Errorf("get photos at offset %d: %w", offset, err)
		}

		for _, p := range page {
			if !IsStillImage(p.Type) {
				continue
			}
			a := toAsset(p)
			if !opts.Before.IsZero() && !a.CreatedAt.Before(opts.Before) {
				continue
			}
			assets = append(assets, a)
		}

		if len(page) < l.pageSize {
			break
		}
	}

	slices.SortStableFunc(assets, func(a, b photos.Asset) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return assets, nil
}

// toAsset converts a search result. PhotoPrism reports 0,0 for photos without GPS data.
func toAsset(p Photo) photos.Asset {
	a := photos.Asset{
		ID:         p.UID,
		CreatedAt:  parseTakenAt(p.TakenAt),
		Kind:       photos.MediaKindImage,
		Screenshot: photos.LooksLikeScreenshot(p.OriginalName, p.FileName, p.Name),
	}
	if p.Lat != 0 || p.Lng != 0 {
		a.Location = &geo.Coordinate{Lat: p.Lat, Lng: p.Lng}
	}
	return a
}

func parseTakenAt(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil || t.Year() <= 1 {
		return time.Time{}
	}
	return t
}
