// Package photos defines the read-only photo library capability the importer scans.
package photos

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kozaktomas/photo-memories/internal/geo"
)

// ErrPermissionDenied is returned when the library refuses read access.
var ErrPermissionDenied = errors.New("photo library access denied")

// MediaKind is the broad kind of a library item.
type MediaKind string

// MediaKind values.
const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
	MediaKindOther MediaKind = "other"
)

// AuthorizationStatus mirrors the access states a library can report.
type AuthorizationStatus string

// AuthorizationStatus values.
const (
	AuthorizationNotDetermined AuthorizationStatus = "not_determined"
	AuthorizationDenied        AuthorizationStatus = "denied"
	AuthorizationLimited       AuthorizationStatus = "limited"
	AuthorizationAuthorized    AuthorizationStatus = "authorized"
)

// Allowed reports whether the status permits scanning.
func (s AuthorizationStatus) Allowed() bool {
	return s == AuthorizationAuthorized || s == AuthorizationLimited
}

// Asset is a single item of the external photo library.
type Asset struct {
	ID         string
	CreatedAt  time.Time // zero when the library has no creation date
	Location   *geo.Coordinate
	Screenshot bool
	Kind       MediaKind
}

// Coordinate returns the asset location, nil if it is not geotagged.
func (a Asset) Coordinate() *geo.Coordinate {
	return a.Location
}

// FetchOptions restricts a library fetch.
type FetchOptions struct {
	// Before keeps only assets created strictly before this time. Zero means no bound.
	Before time.Time
}

// Library is the photo library read API.
type Library interface {
	// RequestAuthorization checks (and if needed requests) read access.
	RequestAuthorization(ctx context.Context) (AuthorizationStatus, error)
	// FetchImages returns image assets sorted by creation time, newest first.
	FetchImages(ctx context.Context, opts FetchOptions) ([]Asset, error)
}

// LooksLikeScreenshot reports whether any of the file names carries a
// screenshot marker. Libraries without a screenshot media subtype use it.
func LooksLikeScreenshot(names ...string) bool {
	for _, name := range names {
		lower := strings.ToLower(name)
		if strings.Contains(lower, "screenshot") || strings.Contains(lower, "screen shot") {
			return true
		}
	}
	return false
}
