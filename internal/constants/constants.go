// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Pagination constants
const (
	// DefaultPageSize is the default number of items to fetch per API page
	DefaultPageSize = 1000
)

// Clustering constants
const (
	// CheckpointBatchSize is the number of iterated assets between scan checkpoints
	CheckpointBatchSize = 50

	// SubClusterRadiusMeters is the maximum distance from a sub-group seed
	SubClusterRadiusMeters = 20000.0

	// TravelJumpMeters is the centroid distance to the previous cluster above
	// which a cluster counts as a location jump
	TravelJumpMeters = 50000.0

	// MinClusterSize is the default minimum number of assets in an admitted cluster
	MinClusterSize = 5

	// TravelMinClusterSize is the admission threshold after a location jump
	TravelMinClusterSize = 1
)

// Draft title constants
const (
	// DefaultTitle is used when no place could be resolved
	DefaultTitle = "New Memory"

	// DefaultNotes accompanies DefaultTitle
	DefaultNotes = "Imported from Photos"

	// MultiCountryFallbackTitle is used for multi-country clusters without a resolvable first country
	MultiCountryFallbackTitle = "Euro Trip"

	// VisitedPrefix starts the notes of clusters spanning several cities
	VisitedPrefix = "Visited: "
)

// Review constants
const (
	// MaxEventPhotos is the maximum number of photos attached to an accepted event
	MaxEventPhotos = 20
)

// CheckpointKey is the key-value store key holding the scan state
const CheckpointKey = "PhotoImportCheckpoint"
