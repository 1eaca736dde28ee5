// Package constants provides shared constants used across the codebase.
package constants

import "time"

// Event channel constants
const (
	// EventChannelBuffer is the buffer size for event channels
	EventChannelBuffer = 100

	// SSEHeartbeatInterval is how often an idle event stream gets a keep-alive comment
	SSEHeartbeatInterval = 15 * time.Second
)

// Geocoding constants
const (
	// DefaultGeocoderUserAgent identifies the application to the geocoding service
	DefaultGeocoderUserAgent = "photo-memories/1.0"

	// DefaultGeocoderRate is the default number of geocoding requests per second
	DefaultGeocoderRate = 1.0
)
