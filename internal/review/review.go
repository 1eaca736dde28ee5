// Package review applies user decisions to draft memories.
package review

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/photo-memories/internal/constants"
	"github.com/kozaktomas/photo-memories/internal/database"
	"github.com/kozaktomas/photo-memories/internal/metrics"
)

var (
	// ErrNoAssetsSelected is returned when an accept selects no photos.
	ErrNoAssetsSelected = errors.New("no assets selected")
	// ErrTooManyAssets is returned when an accept selects more photos than an event holds.
	ErrTooManyAssets = fmt.Errorf("at most %d assets can be selected", constants.MaxEventPhotos)
	// ErrUnknownAsset is returned when a selected asset is not part of the draft.
	ErrUnknownAsset = errors.New("asset is not part of the draft")
)

// Store is the persistence the review service needs.
type Store interface {
	database.DraftReader
	database.EventReader
	database.ReviewWriter
}

// AcceptOptions holds the user's choices for an accepted draft.
type AcceptOptions struct {
	// AssetIDs selects the photos to keep. Empty selects the draft's photos,
	// capped at the event limit.
	AssetIDs []string `json:"asset_ids"`
	Category string   `json:"category"`
	Notes    string   `json:"notes"`
}

// Service accepts and rejects drafts.
type Service struct {
	store   Store
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

// NewService creates a review service. m may be nil.
func NewService(store Store, log logrus.FieldLogger, m *metrics.Metrics) *Service {
	return &Service{store: store, log: log, metrics: m}
}

// ListPending returns drafts awaiting review, newest first.
func (s *Service) ListPending(ctx context.Context) ([]database.DraftEvent, error) {
	drafts, err := s.store.ListDrafts(ctx, database.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending drafts: %w", err)
	}
	return drafts, nil
}

// Get returns a single draft.
func (s *Service) Get(ctx context.Context, draftID string) (*database.DraftEvent, error) {
	draft, err := s.store.GetDraft(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("get draft %s: %w", draftID, err)
	}
	if draft == nil {
		return nil, fmt.Errorf("draft %s: %w", draftID, database.ErrNotFound)
	}
	return draft, nil
}

// Accept turns a draft into a permanent life event. Only the selected photos
// are logged as imported; the rest of the draft becomes eligible again.
func (s *Service) Accept(ctx context.Context, draftID string, opts AcceptOptions) (*database.LifeEvent, error) {
	draft, err := s.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}

	selected, err := selectAssets(draft.AssetIdentifiers, opts.AssetIDs)
	if err != nil {
		return nil, err
	}

	title := constants.DefaultTitle
	if draft.LocationName != nil && *draft.LocationName != "" {
		title = *draft.LocationName
	}

	event := &database.LifeEvent{
		Title:        title,
		Date:         draft.Date,
		Category:     database.ParseCategory(opts.Category),
		Notes:        combineNotes(opts.Notes, draft.Notes),
		LocationName: draft.LocationName,
		Coordinate:   draft.Coordinate,
		PhotoID:      &selected[0],
		PhotoIDs:     selected,
	}
	if err := s.store.AcceptDraft(ctx, draft.ID, event, selected); err != nil {
		return nil, fmt.Errorf("accept draft %s: %w", draft.ID, err)
	}

	s.metrics.ReviewDecision(metrics.DecisionAccepted)
	s.log.WithFields(logrus.Fields{
		"draft":  draft.ID,
		"event":  event.ID,
		"photos": len(selected),
	}).Info("Draft accepted")
	return event, nil
}

// Reject logs every photo of the draft as decided and deletes the draft.
func (s *Service) Reject(ctx context.Context, draftID string) error {
	draft, err := s.Get(ctx, draftID)
	if err != nil {
		return err
	}
	if err := s.store.RejectDraft(ctx, draft.ID, draft.AssetIdentifiers); err != nil {
		return fmt.Errorf("reject draft %s: %w", draft.ID, err)
	}

	s.metrics.ReviewDecision(metrics.DecisionRejected)
	s.log.WithFields(logrus.Fields{"draft": draft.ID, "photos": len(draft.AssetIdentifiers)}).Info("Draft rejected")
	return nil
}

// Events returns the accepted life events, newest first.
func (s *Service) Events(ctx context.Context) ([]database.LifeEvent, error) {
	events, err := s.store.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// selectAssets validates a selection against the draft. The result keeps the
// draft's order and contains no duplicates.
func selectAssets(draftAssets, requested []string) ([]string, error) {
	if len(requested) == 0 {
		if len(draftAssets) == 0 {
			return nil, ErrNoAssetsSelected
		}
		n := min(len(draftAssets), constants.MaxEventPhotos)
		return slices.Clone(draftAssets[:n]), nil
	}

	want := make(map[string]struct{}, len(requested))
	for _, id := range requested {
		if !slices.Contains(draftAssets, id) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, id)
		}
		want[id] = struct{}{}
	}
	if len(want) > constants.MaxEventPhotos {
		return nil, ErrTooManyAssets
	}

	selected := make([]string, 0, len(want))
	for _, id := range draftAssets {
		if _, ok := want[id]; ok {
			selected = append(selected, id)
		}
	}
	return selected, nil
}

// combineNotes puts user notes first, then the generated notes after a blank line.
func combineNotes(user string, auto *string) *string {
	notes := user
	if auto != nil && *auto != "" {
		if notes != "" {
			notes += "\n\n"
		}
		notes += *auto
	}
	if notes == "" {
		return nil
	}
	return &notes
}
