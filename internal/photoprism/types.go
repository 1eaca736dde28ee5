package photoprism

import "slices"

// Photo represents a PhotoPrism photo search result
type Photo struct {
	UID          string  `json:"UID"`
	Title        string  `json:"Title"`
	TakenAt      string  `json:"TakenAt"`
	TakenAtLocal string  `json:"TakenAtLocal"`
	TakenSrc     string  `json:"TakenSrc"`
	Type         string  `json:"Type"`
	Lat          float64 `json:"Lat"`
	Lng          float64 `json:"Lng"`
	Country      string  `json:"Country"`
	Hash         string  `json:"Hash"`
	OriginalName string  `json:"OriginalName"` // Original filename when uploaded
	FileName     string  `json:"FileName"`     // Current filename
	Name         string  `json:"Name"`         // Internal name
	Path         string  `json:"Path"`         // File path
}

// Photo types reported by PhotoPrism
const (
	TypeImage    = "image"
	TypeRaw      = "raw"
	TypeLive     = "live"
	TypeAnimated = "animated"
	TypeVideo    = "video"
	TypeVector   = "vector"
)

// stillImageTypes are the photo types scanned as still images. Live photos
// count: their still frame is the photo.
var stillImageTypes = []string{TypeImage, TypeRaw, TypeLive}

// StillImageTypes returns the photo types every library source treats as
// still images.
func StillImageTypes() []string {
	return slices.Clone(stillImageTypes)
}

// IsStillImage reports whether photoType is scanned. Search results without
// a type are images.
func IsStillImage(photoType string) bool {
	return photoType == "" || slices.Contains(stillImageTypes, photoType)
}
