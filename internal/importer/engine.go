// Package importer turns a photo library into a queue of draft memories.
//
// A scan walks the library newest first, groups consecutive photos taken on
// the same local calendar day, names each group from reverse-geocoded
// locations and stores groups that pass the admission threshold as drafts.
// Progress is checkpointed so an interrupted scan resumes where it stopped.
package importer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/photo-memories/internal/config"
	"github.com/kozaktomas/photo-memories/internal/constants"
	"github.com/kozaktomas/photo-memories/internal/database"
	"github.com/kozaktomas/photo-memories/internal/geo"
	"github.com/kozaktomas/photo-memories/internal/geocoding"
	"github.com/kozaktomas/photo-memories/internal/metrics"
	"github.com/kozaktomas/photo-memories/internal/photos"
)

// ErrScanInProgress is returned when a scan is started while another one runs.
var ErrScanInProgress = errors.New("scan already in progress")

// errDraftWrite wraps store errors from inserting an admitted cluster's draft.
var errDraftWrite = errors.New("store draft")

// Consecutive failed writes after which the scan gives up.
const (
	maxCheckpointFailures = 2
	maxDraftFailures      = 3
)

// Store is the persistence the engine needs.
type Store interface {
	database.CheckpointStore
	database.DraftWriter
	database.ImportLogReader
	ResetAnalysisHistory(ctx context.Context) error
}

// Geocoder resolves coordinates to places. Failures yield an empty Place.
type Geocoder interface {
	ReverseGeocodeDetails(ctx context.Context, c geo.Coordinate) geocoding.Place
}

// Options holds the clustering tunables.
type Options struct {
	BatchSize              int
	SubClusterRadiusMeters float64
	TravelJumpMeters       float64
	MinClusterSize         int
	TravelMinClusterSize   int

	// Location defines calendar days; defaults to time.Local.
	Location *time.Location
	// Now substitutes for missing creation dates; defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns the built-in tunables.
func DefaultOptions() Options {
	return Options{
		BatchSize:              constants.CheckpointBatchSize,
		SubClusterRadiusMeters: constants.SubClusterRadiusMeters,
		TravelJumpMeters:       constants.TravelJumpMeters,
		MinClusterSize:         constants.MinClusterSize,
		TravelMinClusterSize:   constants.TravelMinClusterSize,
	}
}

// OptionsFromConfig maps the configured tunables onto Options.
func OptionsFromConfig(cfg config.ClusterConfig) Options {
	return Options{
		BatchSize:              cfg.BatchSize,
		SubClusterRadiusMeters: cfg.SubClusterRadiusMeters,
		TravelJumpMeters:       cfg.TravelJumpMeters,
		MinClusterSize:         cfg.MinClusterSize,
		TravelMinClusterSize:   cfg.TravelMinClusterSize,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.BatchSize <= 0 {
		o.BatchSize = d.BatchSize
	}
	if o.SubClusterRadiusMeters <= 0 {
		o.SubClusterRadiusMeters = d.SubClusterRadiusMeters
	}
	if o.TravelJumpMeters <= 0 {
		o.TravelJumpMeters = d.TravelJumpMeters
	}
	if o.MinClusterSize <= 0 {
		o.MinClusterSize = d.MinClusterSize
	}
	if o.TravelMinClusterSize <= 0 {
		o.TravelMinClusterSize = d.TravelMinClusterSize
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// ProgressInfo contains progress information for callbacks
type ProgressInfo struct {
	Phase   string // "fetching", "scanning", "done"
	Current int    // assets iterated in this run
	Total   int    // assets fetched in this run
	Drafts  int    // drafts created in this run
	Message string
}

// ScanOptions configures a single scan run.
type ScanOptions struct {
	OnProgress func(ProgressInfo) // Optional progress callback for CLI and web UI
}

// ScanResult summarizes a scan run.
type ScanResult struct {
	Resumed           bool          `json:"resumed"`
	Fetched           int           `json:"fetched"`
	Skipped           int           `json:"skipped"`
	ClustersProcessed int           `json:"clustersProcessed"`
	ClustersDiscarded int           `json:"clustersDiscarded"`
	DraftsCreated     int           `json:"draftsCreated"`
	DraftsFailed      int           `json:"draftsFailed"`
	Duration          time.Duration `json:"duration"`
}

// Engine is the photo cluster engine. At most one scan runs at a time.
type Engine struct {
	library  photos.Library
	store    Store
	geocoder Geocoder
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
	opts     Options

	mu       sync.Mutex
	scanning bool
}

// New creates an engine. m may be nil.
func New(library photos.Library, store Store, geocoder Geocoder, log logrus.FieldLogger, m *metrics.Metrics, opts Options) *Engine {
	return &Engine{
		library:  library,
		store:    store,
		geocoder: geocoder,
		log:      log,
		metrics:  m,
		opts:     opts.withDefaults(),
	}
}

// RequestAuthorization passes the authorization request through to the library.
func (e *Engine) RequestAuthorization(ctx context.Context) (photos.AuthorizationStatus, error) {
	status, err := e.library.RequestAuthorization(ctx)
	if err != nil {
		return status, fmt.Errorf("request photo library authorization: %w", err)
	}
	return status, nil
}

// IsScanning reports whether a scan is running in this process.
func (e *Engine) IsScanning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scanning
}

// Status returns the persisted scan state.
func (e *Engine) Status(ctx context.Context) (ScanState, error) {
	return e.loadState(ctx)
}

// ResetProgress clears the scan checkpoint only; drafts and the import log stay.
func (e *Engine) ResetProgress(ctx context.Context) error {
	if !e.acquire() {
		return ErrScanInProgress
	}
	defer e.release()

	if err := e.store.DeleteCheckpoint(ctx, constants.CheckpointKey); err != nil {
		return fmt.Errorf("reset scan progress: %w", err)
	}
	return nil
}

// ResetAnalysisHistory deletes the import log and every draft and clears the
// scan state. Accepted life events are not touched, but their photos may be
// drafted again by the next scan.
func (e *Engine) ResetAnalysisHistory(ctx context.Context) error {
	if !e.acquire() {
		return ErrScanInProgress
	}
	defer e.release()

	if err := e.store.ResetAnalysisHistory(ctx); err != nil {
		return fmt.Errorf("reset analysis history: %w", err)
	}
	if err := e.store.DeleteCheckpoint(ctx, constants.CheckpointKey); err != nil {
		return fmt.Errorf("reset scan progress: %w", err)
	}
	e.log.Info("Analysis history reset")
	return nil
}

func (e *Engine) acquire() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scanning {
		return false
	}
	e.scanning = true
	return true
}

func (e *Engine) release() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scanning = false
}

// createdAt returns the asset creation time, falling back to now when missing.
func (e *Engine) createdAt(a photos.Asset) time.Time {
	if a.CreatedAt.IsZero() {
		return e.opts.Now()
	}
	return a.CreatedAt
}

func (e *Engine) sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.In(e.opts.Location).Date()
	y2, m2, d2 := b.In(e.opts.Location).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// dayCluster is the run of same-day assets being collected. excluded holds
// already decided assets of the same day; they never become part of a draft
// but still carry their location into the next jump check.
type dayCluster struct {
	assets   []photos.Asset
	excluded []photos.Asset
	last     time.Time
}

func (d *dayCluster) empty() bool {
	return len(d.assets) == 0 && len(d.excluded) == 0
}

// scanRun is the mutable state of one ScanLibrary call.
type scanRun struct {
	state              ScanState
	result             ScanResult
	excluded           map[string]struct{}
	lastCoordinate     *geo.Coordinate
	checkpointFailures int
	draftFailures      int
	// lastDated is the newest-to-oldest cursor: the creation time of the
	// last iterated asset that has one.
	lastDated  time.Time
	onProgress func(ProgressInfo)
}

func (r *scanRun) progress(p ProgressInfo) {
	if r.onProgress != nil {
		r.onProgress(p)
	}
}

// ScanLibrary scans the library and creates drafts for new memories.
//
// Only assets older than the last checkpoint are fetched when a previous scan
// was interrupted. Cancelling ctx stops the scan at the next cluster or batch
// boundary; the checkpoint is stored with isScanning=false and ctx.Err() is
// returned.
func (e *Engine) ScanLibrary(ctx context.Context, opts ScanOptions) (*ScanResult, error) {
	if !e.acquire() {
		return nil, ErrScanInProgress
	}
	defer e.release()

	status, err := e.library.RequestAuthorization(ctx)
	if err != nil {
		return nil, fmt.Errorf("request photo library authorization: %w", err)
	}
	if !status.Allowed() {
		return nil, photos.ErrPermissionDenied
	}

	started := time.Now()
	e.metrics.ScanStarted()
	defer func() { e.metrics.ScanFinished(time.Since(started).Seconds()) }()

	state, err := e.loadState(ctx)
	if err != nil {
		return nil, err
	}
	run := &scanRun{onProgress: opts.OnProgress}
	run.result.Resumed = state.Resuming()
	if !state.Resuming() {
		state.ScannedCount = 0
	}
	state.IsScanning = true
	if err := e.saveState(ctx, state); err != nil {
		return nil, err
	}
	run.state = state

	run.progress(ProgressInfo{Phase: "fetching", Message: "Fetching photos"})

	var fetch photos.FetchOptions
	if state.LastScannedDate != nil {
		fetch.Before = *state.LastScannedDate
	}
	assets, err := e.library.FetchImages(ctx, fetch)
	if err != nil {
		if ctx.Err() != nil {
			return nil, e.cancel(ctx, run)
		}
		return nil, fmt.Errorf("fetch photos: %w", err)
	}
	run.state.TotalAssets = len(assets)
	run.result.Fetched = len(assets)
	if err := e.checkpoint(ctx, run); err != nil {
		return nil, err
	}

	run.excluded, err = e.exclusionSet(ctx)
	if err != nil {
		return nil, err
	}

	log := e.log.WithFields(logrus.Fields{"assets": len(assets), "excluded": len(run.excluded), "resumed": run.result.Resumed})
	log.Info("Scanning photo library")

	var current dayCluster
	for i, asset := range assets {
		e.metrics.AssetScanned()
		if !asset.CreatedAt.IsZero() {
			run.lastDated = asset.CreatedAt
		}

		if !asset.Screenshot {
			created := e.createdAt(asset)
			if !current.empty() && !e.sameDay(created, current.last) {
				if err := e.finalize(ctx, run, &current); err != nil {
					return nil, err
				}
				current = dayCluster{}
			}
			if _, skip := run.excluded[asset.ID]; skip {
				current.excluded = append(current.excluded, asset)
				run.result.Skipped++
			} else {
				current.assets = append(current.assets, asset)
			}
			current.last = created
		} else {
			run.result.Skipped++
		}

		iterated := i + 1
		if iterated%e.opts.BatchSize != 0 {
			continue
		}
		run.state.ScannedCount += e.opts.BatchSize
		// An undated asset must not move the cursor to now.
		if !run.lastDated.IsZero() {
			last := run.lastDated
			run.state.LastScannedDate = &last
		}
		if ctx.Err() != nil {
			return nil, e.cancel(ctx, run)
		}
		if err := e.checkpoint(ctx, run); err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{"scanned": run.state.ScannedCount, "drafts": run.result.DraftsCreated}).Debug("Scan checkpoint")
		run.progress(ProgressInfo{
			Phase:   "scanning",
			Current: iterated,
			Total:   len(assets),
			Drafts:  run.result.DraftsCreated,
		})
	}

	if !current.empty() {
		if err := e.finalize(ctx, run, &current); err != nil {
			return nil, err
		}
	}

	// A completed pass starts the next scan from the newest photo again; the
	// exclusion set keeps it from re-drafting anything.
	run.state.ScannedCount += len(assets) % e.opts.BatchSize
	run.state.LastScannedDate = nil
	run.state.IsScanning = false
	if err := e.saveState(ctx, run.state); err != nil {
		e.log.WithError(err).Error("Failed to save final scan checkpoint")
		e.metrics.CheckpointFailed()
	}

	run.result.Duration = time.Since(started)
	run.progress(ProgressInfo{
		Phase:   "done",
		Current: len(assets),
		Total:   len(assets),
		Drafts:  run.result.DraftsCreated,
		Message: fmt.Sprintf("Created %d drafts", run.result.DraftsCreated),
	})
	log.WithFields(logrus.Fields{
		"drafts":    run.result.DraftsCreated,
		"clusters":  run.result.ClustersProcessed,
		"discarded": run.result.ClustersDiscarded,
		"failed":    run.result.DraftsFailed,
		"duration":  run.result.Duration.Round(time.Millisecond),
	}).Info("Scan finished")

	return &run.result, nil
}

// exclusionSet is the union of logged asset IDs and IDs referenced by drafts.
func (e *Engine) exclusionSet(ctx context.Context) (map[string]struct{}, error) {
	imported, err := e.store.ImportedAssetIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load imported assets: %w", err)
	}
	drafted, err := e.store.DraftAssetIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load draft assets: %w", err)
	}

	excluded := make(map[string]struct{}, len(imported)+len(drafted))
	for _, id := range imported {
		excluded[id] = struct{}{}
	}
	for _, id := range drafted {
		excluded[id] = struct{}{}
	}
	return excluded, nil
}

// checkpoint persists the run state. A failed write is logged and retried at
// the next checkpoint; consecutive failures abort the scan.
func (e *Engine) checkpoint(ctx context.Context, run *scanRun) error {
	if err := e.saveState(ctx, run.state); err != nil {
		run.checkpointFailures++
		e.metrics.CheckpointFailed()
		e.log.WithError(err).WithField("failures", run.checkpointFailures).Error("Failed to save scan checkpoint")
		if run.checkpointFailures >= maxCheckpointFailures {
			return fmt.Errorf("scan aborted after %d failed checkpoint writes: %w", run.checkpointFailures, err)
		}
		return nil
	}
	run.checkpointFailures = 0
	return nil
}

// cancel stores the last batch checkpoint as not scanning and returns the
// context error.
func (e *Engine) cancel(ctx context.Context, run *scanRun) error {
	run.state.IsScanning = false
	if err := e.saveState(context.WithoutCancel(ctx), run.state); err != nil {
		e.log.WithError(err).Error("Failed to save scan checkpoint on cancel")
		e.metrics.CheckpointFailed()
	}
	e.log.WithField("scanned", run.state.ScannedCount).Info("Scan cancelled")
	return ctx.Err()
}

// finalize processes a completed day-cluster and threads its centroid into
// the next jump check.
func (e *Engine) finalize(ctx context.Context, run *scanRun, day *dayCluster) error {
	if ctx.Err() != nil {
		return e.cancel(ctx, run)
	}

	var centroid *geo.Coordinate
	if len(day.assets) > 0 {
		c, draft, err := e.processCluster(ctx, day.assets, run.lastCoordinate)
		switch {
		case err != nil && ctx.Err() != nil:
			return e.cancel(ctx, run)
		case errors.Is(err, errDraftWrite):
			if ferr := e.draftFailed(run, day.assets, err); ferr != nil {
				return ferr
			}
		case err != nil:
			return err
		case draft != nil:
			run.draftFailures = 0
			run.result.ClustersProcessed++
			run.result.DraftsCreated++
		default:
			run.result.ClustersProcessed++
			run.result.ClustersDiscarded++
		}
		centroid = c
	} else {
		centroid = e.groupCentroid(day.excluded)
	}

	if centroid != nil {
		run.lastCoordinate = centroid
	}
	return nil
}

// draftFailed records an admitted cluster whose draft could not be stored.
// Its assets stay out of the exclusion set, so a later full pass drafts them
// again. Consecutive failures mean the store is gone and abort the scan.
func (e *Engine) draftFailed(run *scanRun, assets []photos.Asset, err error) error {
	run.draftFailures++
	run.result.ClustersProcessed++
	run.result.DraftsFailed++
	e.metrics.DraftWriteFailed()
	e.log.WithError(err).WithFields(logrus.Fields{
		"assets":   len(assets),
		"first":    assets[0].ID,
		"failures": run.draftFailures,
	}).Error("Failed to store draft")
	if run.draftFailures >= maxDraftFailures {
		return fmt.Errorf("scan aborted after %d failed draft writes: %w", run.draftFailures, err)
	}
	return nil
}

// locationGroups sub-clusters the geotagged assets by distance to the group seed.
func (e *Engine) locationGroups(assets []photos.Asset) [][]photos.Asset {
	return geo.ClusterByLocation(assets, photos.Asset.Coordinate, e.opts.SubClusterRadiusMeters)
}

// groupCentroid is the centroid of the sub-group seeds, without geocoding.
func (e *Engine) groupCentroid(assets []photos.Asset) *geo.Coordinate {
	groups := e.locationGroups(assets)
	seeds := make([]geo.Coordinate, 0, len(groups))
	for _, g := range groups {
		seeds = append(seeds, *g[0].Location)
	}
	return geo.Centroid(seeds)
}

// processCluster titles a day-cluster, applies the admission threshold and
// stores a draft when admitted. The centroid is returned either way so the
// next cluster's jump check stays accurate; the draft is nil when discarded.
func (e *Engine) processCluster(ctx context.Context, assets []photos.Asset, lastCoordinate *geo.Coordinate) (*geo.Coordinate, *database.DraftEvent, error) {
	if len(assets) == 0 {
		return nil, nil, nil
	}

	groups := e.locationGroups(assets)
	places := make([]geocoding.Place, 0, len(groups))
	seeds := make([]geo.Coordinate, 0, len(groups))
	for _, g := range groups {
		seed := *g[0].Location
		seeds = append(seeds, seed)
		places = append(places, e.geocoder.ReverseGeocodeDetails(ctx, seed))
	}

	// Places resolved under a cancelled context are not trustworthy.
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	title, notes := deriveTitle(places)
	centroid := geo.Centroid(seeds)

	threshold := e.opts.MinClusterSize
	if centroid != nil && lastCoordinate != nil {
		if d := geo.Distance(*centroid, *lastCoordinate); d > e.opts.TravelJumpMeters {
			threshold = e.opts.TravelMinClusterSize
			e.log.WithField("km", int(d/1000)).Debug("Significant location change, lowering threshold")
		}
	}

	if len(assets) < threshold {
		e.metrics.ClusterProcessed(false)
		return centroid, nil, nil
	}

	ids := make([]string, len(assets))
	for i, a := range assets {
		ids[i] = a.ID
	}
	draft := &database.DraftEvent{
		Date:             e.createdAt(assets[len(assets)/2]),
		AssetIdentifiers: ids,
		LocationName:     &title,
		Coordinate:       centroid,
		Status:           database.StatusPending,
		Notes:            &notes,
	}
	if err := e.store.InsertDraft(ctx, draft); err != nil {
		return centroid, nil, fmt.Errorf("%w: %w", errDraftWrite, err)
	}

	e.metrics.ClusterProcessed(true)
	e.log.WithFields(logrus.Fields{"draft": draft.ID, "title": title, "assets": len(ids)}).Info("Draft created")
	return centroid, draft, nil
}
