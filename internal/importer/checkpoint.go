package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kozaktomas/photo-memories/internal/constants"
)

// ScanState is the resumable scan progress mirrored to the key-value store.
type ScanState struct {
	// TotalAssets is the number of assets fetched at scan start: a remaining
	// count, reset on every resume.
	TotalAssets int `json:"totalAssets"`
	// ScannedCount is the cumulative number of iterated assets, advanced per batch.
	ScannedCount int `json:"scannedCount"`
	// LastScannedDate is the exclusive upper bound of the next resumed scan.
	LastScannedDate *time.Time `json:"lastScannedDate,omitempty"`
	IsScanning      bool       `json:"isScanning"`
}

// Resuming reports whether the next scan continues an interrupted one.
func (s ScanState) Resuming() bool {
	return s.LastScannedDate != nil
}

// loadState reads the persisted scan state. An unreadable checkpoint is
// logged and treated as absent.
func (e *Engine) loadState(ctx context.Context) (ScanState, error) {
	data, err := e.store.LoadCheckpoint(ctx, constants.CheckpointKey)
	if err != nil {
		return ScanState{}, fmt.Errorf("load scan checkpoint: %w", err)
	}
	if data == nil {
		return ScanState{}, nil
	}

	var state ScanState
	if err := json.Unmarshal(data, &state); err != nil {
		e.log.WithError(err).Warn("Discarding unreadable scan checkpoint")
		return ScanState{}, nil
	}
	return state, nil
}

func (e *Engine) saveState(ctx context.Context, state ScanState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal scan checkpoint: %w", err)
	}
	if err := e.store.SaveCheckpoint(ctx, constants.CheckpointKey, data); err != nil {
		return fmt.Errorf("save scan checkpoint: %w", err)
	}
	return nil
}
