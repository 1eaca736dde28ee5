// Package scheduler runs library scans on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/photo-memories/internal/importer"
)

// Scanner is the part of the engine the scheduler drives.
type Scanner interface {
	IsScanning() bool
	ScanLibrary(ctx context.Context, opts importer.ScanOptions) (*importer.ScanResult, error)
}

// Service triggers ScanLibrary on a cron spec. Ticks that arrive while a scan
// is running, scheduled or not, are skipped.
type Service struct {
	spec    string
	scanner Scanner
	log     logrus.FieldLogger

	mu     sync.Mutex
	cron   *cron.Cron
	entry  cron.EntryID
	cancel context.CancelFunc
}

// New validates spec and creates a stopped scheduler. Standard 5-field specs
// and descriptors such as "@daily" or "@every 6h" are accepted.
func New(spec string, scanner Scanner, log logrus.FieldLogger) (*Service, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid scan schedule %q: %w", spec, err)
	}
	return &Service{spec: spec, scanner: scanner, log: log}, nil
}

// Start registers the scan job and starts the cron loop. Scans run with a
// context derived from ctx and are cancelled by Stop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	logger := cron.PrintfLogger(s.log)
	c := cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))

	entry, err := c.AddFunc(s.spec, func() { s.run(runCtx) })
	if err != nil {
		cancel()
		return fmt.Errorf("register scan job: %w", err)
	}

	s.cron = c
	s.entry = entry
	s.cancel = cancel
	c.Start()

	s.log.WithFields(logrus.Fields{"schedule": s.spec, "next": c.Entry(entry).Next}).Info("Scan scheduler started")
	return nil
}

// Next returns the next scheduled run, zero when stopped.
func (s *Service) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return time.Time{}
	}
	return s.cron.Entry(s.entry).Next
}

// Stop cancels a running scheduled scan and waits for it to return.
func (s *Service) Stop() {
	s.mu.Lock()
	c, cancel := s.cron, s.cancel
	s.cron, s.cancel = nil, nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	cancel()
	<-c.Stop().Done()
	s.log.Info("Scan scheduler stopped")
}

func (s *Service) run(ctx context.Context) {
	if s.scanner.IsScanning() {
		s.log.Info("Scheduled scan skipped, a scan is already running")
		return
	}

	s.log.Info("Scheduled scan started")
	result, err := s.scanner.ScanLibrary(ctx, importer.ScanOptions{})
	switch {
	case errors.Is(err, importer.ErrScanInProgress):
		s.log.Info("Scheduled scan skipped, a scan is already running")
	case errors.Is(err, context.Canceled):
		s.log.Info("Scheduled scan cancelled")
	case err != nil:
		s.log.WithError(err).Error("Scheduled scan failed")
	default:
		s.log.WithFields(logrus.Fields{
			"drafts":   result.DraftsCreated,
			"fetched":  result.Fetched,
			"duration": result.Duration.Round(time.Millisecond),
		}).Info("Scheduled scan finished")
	}
}
