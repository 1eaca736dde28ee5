package handlers

import (
	"net/http"

	"github.com/kozaktomas/photo-memories/internal/config"
)

// ConfigHandler handles configuration endpoints
type ConfigHandler struct {
	config *config.Config
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{
		config: cfg,
	}
}

// ConfigResponse represents the configuration response
type ConfigResponse struct {
	DatabaseDriver   string          `json:"database_driver"`
	LibrarySource    string          `json:"library_source"`
	PhotoPrismDomain string          `json:"photoprism_domain,omitempty"`
	ScanSchedule     string          `json:"scan_schedule,omitempty"`
	Cluster          ClusterSettings `json:"cluster"`
}

// ClusterSettings lists the clustering tunables in effect
type ClusterSettings struct {
	BatchSize              int     `json:"batch_size"`
	SubClusterRadiusMeters float64 `json:"sub_cluster_radius_meters"`
	TravelJumpMeters       float64 `json:"travel_jump_meters"`
	MinClusterSize         int     `json:"min_cluster_size"`
	TravelMinClusterSize   int     `json:"travel_min_cluster_size"`
}

// Library sources reported by the config endpoint
const (
	LibrarySourceREST    = "photoprism"
	LibrarySourceMariaDB = "mariadb"
)

// Get returns the non-secret configuration
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	source := LibrarySourceREST
	if h.config.PhotoPrism.DatabaseURL != "" {
		source = LibrarySourceMariaDB
	}

	c := h.config.Cluster
	response := ConfigResponse{
		DatabaseDriver:   h.config.Database.Driver,
		LibrarySource:    source,
		PhotoPrismDomain: h.config.PhotoPrism.Domain,
		ScanSchedule:     h.config.ScanSchedule,
		Cluster: ClusterSettings{
			BatchSize:              c.BatchSize,
			SubClusterRadiusMeters: c.SubClusterRadiusMeters,
			TravelJumpMeters:       c.TravelJumpMeters,
			MinClusterSize:         c.MinClusterSize,
			TravelMinClusterSize:   c.TravelMinClusterSize,
		},
	}

	respondJSON(w, http.StatusOK, response)
}
