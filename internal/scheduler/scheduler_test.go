package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kozaktomas/photo-memories/internal/importer"
	"github.com/kozaktomas/photo-memories/internal/logging"
)

type fakeScanner struct {
	scanning atomic.Bool
	calls    atomic.Int32
	err      error
}

func (f *fakeScanner) IsScanning() bool { return f.scanning.Load() }

func (f *fakeScanner) ScanLibrary(ctx context.Context, opts importer.ScanOptions) (*importer.ScanResult, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &importer.ScanResult{DraftsCreated: 2}, nil
}

func TestNew_InvalidSchedule(t *testing.T) {
	for _, spec := range []string{"", "not a schedule", "61 * * * *"} {
		if _, err := New(spec, &fakeScanner{}, logging.Discard()); err == nil {
			t.Errorf("expected error for spec %q", spec)
		}
	}
}

func TestNew_ValidSchedules(t *testing.T) {
	for _, spec := range []string{"0 3 * * *", "@daily", "@every 6h"} {
		if _, err := New(spec, &fakeScanner{}, logging.Discard()); err != nil {
			t.Errorf("unexpected error for spec %q: %v", spec, err)
		}
	}
}

func TestRun(t *testing.T) {
	tests := []struct {
		name      string
		scanning  bool
		err       error
		wantCalls int32
	}{
		{"idle engine scans", false, nil, 1},
		{"running scan is skipped", true, nil, 0},
		{"scan error is logged", false, errors.New("boom"), 1},
		{"lost race is tolerated", false, importer.ErrScanInProgress, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scanner := &fakeScanner{err: tt.err}
			scanner.scanning.Store(tt.scanning)
			s, err := New("@hourly", scanner, logging.Discard())
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			s.run(context.Background())

			if got := scanner.calls.Load(); got != tt.wantCalls {
				t.Errorf("expected %d scan calls, got %d", tt.wantCalls, got)
			}
		})
	}
}

func TestStartStop(t *testing.T) {
	s, err := New("@hourly", &fakeScanner{}, logging.Discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !s.Next().IsZero() {
		t.Error("expected no next run before start")
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// second start is a no-op
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("second Start: %v", err)
	}

	next := s.Next()
	if next.IsZero() || next.After(time.Now().Add(time.Hour+time.Second)) {
		t.Errorf("unexpected next run %v", next)
	}

	s.Stop()
	s.Stop()
	if !s.Next().IsZero() {
		t.Error("expected no next run after stop")
	}
}
