package photoprism

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// SearchOptions are the parameters of a photo search.
type SearchOptions struct {
	Count  int
	Offset int
	// Query uses PhotoPrism search filters, e.g. "photo:true before:2024-05-01"
	Query string
	// Order examples: "newest", "oldest", "added", "edited"
	Order string
}

// GetPhotos retrieves one page of photos from PhotoPrism
func (pp *PhotoPrism) GetPhotos(ctx context.Context, opts SearchOptions) ([]Photo, error) {
	endpoint := fmt.Sprintf("photos?count=%d&offset=%d", opts.Count, opts.Offset)
	if opts.Query != "" {
		endpoint += "&q=" + url.QueryEscape(opts.Query)
	}
	if opts.Order != "" {
		endpoint += "&order=" + url.QueryEscape(opts.Order)
	}

	result, err := doGetJSON[[]Photo](ctx, pp, endpoint)
	if err != nil {
		return nil, err
	}
	return *result, nil
}

// GetPhoto retrieves a single photo
func (pp *PhotoPrism) GetPhoto(ctx context.Context, photoUID string) (*Photo, error) {
	return doGetJSON[Photo](ctx, pp, "photos/"+url.PathEscape(photoUID))
}

// GetPhotoThumbnail downloads a thumbnail for a photo
// size can be one of: tile_50, tile_100, tile_224, tile_500, fit_720, fit_1280, fit_1920, ...
func (pp *PhotoPrism) GetPhotoThumbnail(ctx context.Context, photoUID, size string) ([]byte, string, error) {
	photo, err := pp.GetPhoto(ctx, photoUID)
	if err != nil {
		return nil, "", fmt.Errorf("could not get photo: %w", err)
	}
	if photo.Hash == "" {
		return nil, "", errors.New("photo has no file hash")
	}
	return doGet(ctx, pp, "t/"+photo.Hash+"/"+pp.downloadToken+"/"+size)
}
