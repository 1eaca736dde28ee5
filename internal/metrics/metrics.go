// Package metrics holds the Prometheus collectors for scans, geocoding and review.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Geocoding lookup outcomes.
const (
	GeocodeHit     = "hit"
	GeocodeMiss    = "miss"
	GeocodeFailure = "failure"
)

// Review decisions.
const (
	DecisionAccepted = "accepted"
	DecisionRejected = "rejected"
)

// Metrics groups all collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	AssetsScanned      prometheus.Counter
	ClustersProcessed  prometheus.Counter
	ClustersDiscarded  prometheus.Counter
	DraftsCreated      prometheus.Counter
	ScanRunning        prometheus.Gauge
	ScanDuration       prometheus.Histogram
	GeocodeLookups     *prometheus.CounterVec
	ReviewDecisions    *prometheus.CounterVec
	CheckpointFailures prometheus.Counter
	DraftWriteFailures prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AssetsScanned: factory.NewCounter(prometheus.CounterOpts{
			Name: "photo_memories_assets_scanned_total",
			Help: "Library assets visited by the scan loop, skipped or not",
		}),
		ClustersProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "photo_memories_clusters_processed_total",
			Help: "Day-clusters finalized by the scan loop",
		}),
		ClustersDiscarded: factory.NewCounter(prometheus.CounterOpts{
			Name: "photo_memories_clusters_discarded_total",
			Help: "Day-clusters below the admission threshold",
		}),
		DraftsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "photo_memories_drafts_created_total",
			Help: "Draft memories written to the store",
		}),
		ScanRunning: factory.NewGauge(prometheus.GaugeOpts{
			Name: "photo_memories_scan_running",
			Help: "1 while a library scan is in progress",
		}),
		ScanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "photo_memories_scan_duration_seconds",
			Help:    "Wall time of library scans",
			Buckets: []float64{1, 5, 15, 60, 300, 900, 3600},
		}),
		GeocodeLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "photo_memories_geocode_lookups_total",
			Help: "Reverse geocoding lookups by outcome",
		}, []string{"result"}),
		ReviewDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "photo_memories_review_decisions_total",
			Help: "Reviewed drafts by decision",
		}, []string{"decision"}),
		CheckpointFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "photo_memories_checkpoint_failures_total",
			Help: "Failed scan checkpoint writes",
		}),
		DraftWriteFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "photo_memories_draft_write_failures_total",
			Help: "Admitted day-clusters whose draft could not be stored",
		}),
	}
}

// AssetScanned counts one visited asset.
func (m *Metrics) AssetScanned() {
	if m == nil {
		return
	}
	m.AssetsScanned.Inc()
}

// ClusterProcessed counts a finalized day-cluster and whether it became a draft.
func (m *Metrics) ClusterProcessed(admitted bool) {
	if m == nil {
		return
	}
	m.ClustersProcessed.Inc()
	if admitted {
		m.DraftsCreated.Inc()
	} else {
		m.ClustersDiscarded.Inc()
	}
}

// ScanStarted marks a scan as running.
func (m *Metrics) ScanStarted() {
	if m == nil {
		return
	}
	m.ScanRunning.Set(1)
}

// ScanFinished clears the running flag and records the duration.
func (m *Metrics) ScanFinished(seconds float64) {
	if m == nil {
		return
	}
	m.ScanRunning.Set(0)
	m.ScanDuration.Observe(seconds)
}

// GeocodeLookup counts one lookup outcome.
func (m *Metrics) GeocodeLookup(result string) {
	if m == nil {
		return
	}
	m.GeocodeLookups.WithLabelValues(result).Inc()
}

// ReviewDecision counts one review decision.
func (m *Metrics) ReviewDecision(decision string) {
	if m == nil {
		return
	}
	m.ReviewDecisions.WithLabelValues(decision).Inc()
}

// CheckpointFailed counts a failed checkpoint write.
func (m *Metrics) CheckpointFailed() {
	if m == nil {
		return
	}
	m.CheckpointFailures.Inc()
}

// DraftWriteFailed counts an admitted cluster whose draft was not stored.
func (m *Metrics) DraftWriteFailed() {
	if m == nil {
		return
	}
	m.DraftWriteFailures.Inc()
}
