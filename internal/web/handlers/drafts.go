package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/photo-memories/internal/database"
	"github.com/kozaktomas/photo-memories/internal/review"
)

// DraftsHandler handles draft review endpoints
type DraftsHandler struct {
	review *review.Service
	stats  *StatsHandler
	log    logrus.FieldLogger
}

// NewDraftsHandler creates a new drafts handler. stats may be nil.
func NewDraftsHandler(svc *review.Service, stats *StatsHandler, log logrus.FieldLogger) *DraftsHandler {
	return &DraftsHandler{
		review: svc,
		stats:  stats,
		log:    log,
	}
}

// List returns the drafts awaiting review
func (h *DraftsHandler) List(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.review.ListPending(r.Context())
	if err != nil {
		h.log.WithError(err).Error("Failed to list drafts")
		respondServiceError(w, err)
		return
	}
	if drafts == nil {
		drafts = []database.DraftEvent{}
	}
	respondJSON(w, http.StatusOK, drafts)
}

// Get returns a single draft
func (h *DraftsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing draft ID")
		return
	}

	draft, err := h.review.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, draft)
}

// Accept turns a draft into a life event. An empty body accepts the draft
// with its default selection.
func (h *DraftsHandler) Accept(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing draft ID")
		return
	}

	var opts review.AcceptOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	event, err := h.review.Accept(r.Context(), id, opts)
	if err != nil {
		if statusForError(err) == http.StatusInternalServerError {
			h.log.WithError(err).WithField("draft", sanitizeForLog(id)).Error("Failed to accept draft")
		}
		respondServiceError(w, err)
		return
	}

	h.invalidateStats()
	respondJSON(w, http.StatusCreated, event)
}

// Reject discards a draft and logs its photos as decided
func (h *DraftsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing draft ID")
		return
	}

	if err := h.review.Reject(r.Context(), id); err != nil {
		if statusForError(err) == http.StatusInternalServerError {
			h.log.WithError(err).WithField("draft", sanitizeForLog(id)).Error("Failed to reject draft")
		}
		respondServiceError(w, err)
		return
	}

	h.invalidateStats()
	respondJSON(w, http.StatusOK, map[string]bool{"rejected": true})
}

// Events returns the accepted life events
func (h *DraftsHandler) Events(w http.ResponseWriter, r *http.Request) {
	events, err := h.review.Events(r.Context())
	if err != nil {
		h.log.WithError(err).Error("Failed to list events")
		respondServiceError(w, err)
		return
	}
	if events == nil {
		events = []database.LifeEvent{}
	}
	respondJSON(w, http.StatusOK, events)
}

func (h *DraftsHandler) invalidateStats() {
	if h.stats != nil {
		h.stats.InvalidateCache()
	}
}
