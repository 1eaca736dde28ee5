package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/photo-memories/internal/config"
	"github.com/kozaktomas/photo-memories/internal/constants"
	"github.com/kozaktomas/photo-memories/internal/database"
	"github.com/kozaktomas/photo-memories/internal/database/mariadb"
	"github.com/kozaktomas/photo-memories/internal/database/postgres"
	"github.com/kozaktomas/photo-memories/internal/database/sqlite"
	"github.com/kozaktomas/photo-memories/internal/geocoding"
	"github.com/kozaktomas/photo-memories/internal/importer"
	"github.com/kozaktomas/photo-memories/internal/logging"
	"github.com/kozaktomas/photo-memories/internal/metrics"
	"github.com/kozaktomas/photo-memories/internal/photoprism"
	"github.com/kozaktomas/photo-memories/internal/photos"
	"github.com/kozaktomas/photo-memories/internal/review"
)

// app holds the services shared by the commands.
type app struct {
	cfg      *config.Config
	log      *logrus.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	store    database.Store
	engine   *importer.Engine
	review   *review.Service
	// thumbs is set when the library is read through the PhotoPrism API
	thumbs *photoprism.PhotoPrism

	closers []func()
}

// openStore opens the configured persistence backend.
func openStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (database.Store, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite, "":
		store, err := sqlite.NewStore(cfg.Database.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite store: %w", err)
		}
		return store, nil
	case config.DriverPostgres:
		store, err := postgres.Open(ctx, &cfg.Database, log)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// openLibrary connects to PhotoPrism. The MariaDB database is read directly
// when PHOTOPRISM_DATABASE_URL is set, otherwise the REST API is used.
func (a *app) openLibrary(ctx context.Context) (photos.Library, error) {
	if dsn := a.cfg.PhotoPrism.DatabaseURL; dsn != "" {
		pool, err := mariadb.NewPool(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PhotoPrism database: %w", err)
		}
		a.closers = append(a.closers, func() { pool.Close() })
		a.log.Debug("Reading library from the PhotoPrism database")
		return pool, nil
	}

	if a.cfg.PhotoPrism.URL == "" {
		return nil, errors.New("PHOTOPRISM_URL or PHOTOPRISM_DATABASE_URL environment variable is required")
	}
	pp, err := photoprism.NewPhotoPrism(ctx, a.cfg.PhotoPrism.URL, a.cfg.PhotoPrism.Username, a.cfg.PhotoPrism.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PhotoPrism: %w", err)
	}
	a.thumbs = pp
	a.closers = append(a.closers, func() {
		logoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := pp.Logout(logoutCtx); err != nil {
			a.log.WithError(err).Debug("PhotoPrism logout failed")
		}
	})
	a.log.Debug("Reading library through the PhotoPrism API")
	return photoprism.NewLibrary(pp, constants.DefaultPageSize), nil
}

// offlineLibrary stands in for the library in commands that only touch the
// store, so they work without a PhotoPrism connection.
type offlineLibrary struct{}

var errLibraryOffline = errors.New("photo library is not connected")

func (offlineLibrary) RequestAuthorization(ctx context.Context) (photos.AuthorizationStatus, error) {
	return photos.AuthorizationNotDetermined, errLibraryOffline
}

func (offlineLibrary) FetchImages(ctx context.Context, opts photos.FetchOptions) ([]photos.Asset, error) {
	return nil, errLibraryOffline
}

// newApp wires the store, engine and review service. The library and the
// geocoder are only connected when withLibrary is set.
func newApp(ctx context.Context, withLibrary bool) (*app, error) {
	cfg := config.Load()
	a := &app{
		cfg:      cfg,
		log:      logging.New(cfg.Log.Level, cfg.Log.Format),
		registry: prometheus.NewRegistry(),
	}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.New(a.registry)

	store, err := openStore(ctx, cfg, a.log)
	if err != nil {
		return nil, err
	}
	a.store = store
	a.closers = append(a.closers, func() { store.Close() })
	a.review = review.NewService(store, a.log, a.metrics)

	var library photos.Library = offlineLibrary{}
	var geocoder importer.Geocoder
	if withLibrary {
		library, err = a.openLibrary(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}

		backend, err := geocoding.NewNominatim(cfg.Geocoder.URL, cfg.Geocoder.UserAgent, cfg.Geocoder.Language, cfg.Geocoder.Rate)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to create geocoder: %w", err)
		}
		geocoder = geocoding.NewService(backend, a.log, a.metrics)
	}

	a.engine = importer.New(library, store, geocoder, a.log, a.metrics, importer.OptionsFromConfig(cfg.Cluster))
	return a, nil
}

// Close releases connections in reverse order of opening.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
