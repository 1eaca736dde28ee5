// Package geo provides coordinate math and proximity clustering for geotagged photos.
package geo

import "math"

// earthRadiusMeters is the mean Earth radius used for great-circle distances.
const earthRadiusMeters = 6371000.0

// Coordinate is a WGS84 latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Distance returns the great-circle distance between two coordinates in meters (haversine).
func Distance(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Centroid returns the arithmetic mean of latitudes and longitudes.
// Returns nil for an empty input.
func Centroid(coords []Coordinate) *Coordinate {
	if len(coords) == 0 {
		return nil
	}
	var lat, lng float64
	for _, c := range coords {
		lat += c.Lat
		lng += c.Lng
	}
	n := float64(len(coords))
	return &Coordinate{Lat: lat / n, Lng: lng / n}
}
