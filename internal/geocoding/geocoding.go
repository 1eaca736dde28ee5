// Package geocoding resolves coordinates to city and country names.
package geocoding

import (
	"context"
	"fmt"
	"strings"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"

	"github.com/kozaktomas/photo-memories/internal/geo"
	"github.com/kozaktomas/photo-memories/internal/metrics"
)

// Place is a reverse geocoding result. Empty fields mean "not resolved".
type Place struct {
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

// IsEmpty reports whether neither city nor country is known.
func (p Place) IsEmpty() bool {
	return p.City == "" && p.Country == ""
}

// String joins the known parts as "City, Country".
func (p Place) String() string {
	switch {
	case p.City != "" && p.Country != "":
		return p.City + ", " + p.Country
	case p.City != "":
		return p.City
	default:
		return p.Country
	}
}

// ReverseGeocoder is the network-backed lookup. A nil place with a nil error means no result.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, c geo.Coordinate) (*Place, error)
}

// Service wraps a ReverseGeocoder with an in-memory cache keyed by
// coordinates rounded to 3 decimals (~110 m). Results are kept for the
// lifetime of the process.
type Service struct {
	backend ReverseGeocoder
	cache   *cache.Cache
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

// NewService creates a geocoding service. log and m may be nil.
func NewService(backend ReverseGeocoder, log logrus.FieldLogger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		backend: backend,
		cache:   cache.New(cache.NoExpiration, 0),
		log:     log,
		metrics: m,
	}
}

// cacheKey rounds the coordinate to 3 decimal places.
func cacheKey(c geo.Coordinate) string {
	return fmt.Sprintf("%.3f,%.3f", c.Lat, c.Lng)
}

// ReverseGeocodeDetails returns the city and country for a coordinate.
// Failures and empty results yield an empty Place and are never returned as errors.
func (s *Service) ReverseGeocodeDetails(ctx context.Context, c geo.Coordinate) Place {
	key := cacheKey(c)
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.GeocodeLookup(metrics.GeocodeHit)
		return cached.(Place)
	}

	place, err := s.backend.Reverse(ctx, c)
	if err != nil {
		s.metrics.GeocodeLookup(metrics.GeocodeFailure)
		s.log.WithFields(logrus.Fields{"lat": c.Lat, "lng": c.Lng}).WithError(err).Warn("geocoding failed")
		return Place{}
	}
	s.metrics.GeocodeLookup(metrics.GeocodeMiss)
	if place == nil {
		return Place{}
	}

	result := Place{City: normalizeName(place.City), Country: normalizeName(place.Country)}
	s.cache.Set(key, result, cache.NoExpiration)
	return result
}

// ReverseGeocode returns "City, Country" (or whichever part is known), empty if unresolved.
func (s *Service) ReverseGeocode(ctx context.Context, c geo.Coordinate) string {
	return s.ReverseGeocodeDetails(ctx, c).String()
}

// CacheSize returns the number of cached coordinates.
func (s *Service) CacheSize() int {
	return s.cache.ItemCount()
}

// normalizeName trims whitespace and composes Unicode so the same city
// compares equal regardless of the backend's encoding.
func normalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
