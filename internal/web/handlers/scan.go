package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/photo-memories/internal/importer"
)

// ScanEngine is the part of the importer the scan endpoints drive.
type ScanEngine interface {
	IsScanning() bool
	Status(ctx context.Context) (importer.ScanState, error)
	ScanLibrary(ctx context.Context, opts importer.ScanOptions) (*importer.ScanResult, error)
	ResetProgress(ctx context.Context) error
	ResetAnalysisHistory(ctx context.Context) error
}

// ScanHandler handles library scan endpoints
type ScanHandler struct {
	engine     ScanEngine
	jobManager *JobManager
	log        logrus.FieldLogger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(engine ScanEngine, jm *JobManager, log logrus.FieldLogger) *ScanHandler {
	return &ScanHandler{
		engine:     engine,
		jobManager: jm,
		log:        log,
	}
}

// ScanStatusResponse represents the scan status response
type ScanStatusResponse struct {
	State      importer.ScanState `json:"state"`
	IsScanning bool               `json:"is_scanning"`
	Job        *ScanJobInfo       `json:"job,omitempty"`
}

// Status returns the persisted scan state and the latest job
func (h *ScanHandler) Status(w http.ResponseWriter, r *http.Request) {
	state, err := h.engine.Status(r.Context())
	if err != nil {
		h.log.WithError(err).Error("Failed to load scan state")
		respondServiceError(w, err)
		return
	}

	response := ScanStatusResponse{
		State:      state,
		IsScanning: h.engine.IsScanning(),
	}
	if job := h.jobManager.ActiveJob(); job != nil {
		info := job.Snapshot()
		response.Job = &info
	}

	respondJSON(w, http.StatusOK, response)
}

// Start starts a new scan job
func (h *ScanHandler) Start(w http.ResponseWriter, r *http.Request) {
	if h.engine.IsScanning() {
		respondError(w, http.StatusConflict, importer.ErrScanInProgress.Error())
		return
	}

	jobID := uuid.New().String()
	job := h.jobManager.CreateJob(jobID)
	if job == nil {
		respondError(w, http.StatusConflict, importer.ErrScanInProgress.Error())
		return
	}

	// The request context ends with this handler, the scan outlives it.
	ctx, cancel := context.WithCancel(context.Background())
	job.setCancel(cancel)
	go h.runScanJob(ctx, cancel, job)

	respondJSON(w, http.StatusAccepted, map[string]string{
		"job_id": jobID,
		"status": string(JobStatusPending),
	})
}

// Job returns the state of a scan job
func (h *ScanHandler) Job(w http.ResponseWriter, r *http.Request) {
	job, ok := h.lookupJob(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, job.Snapshot())
}

// Events streams scan job events via SSE
func (h *ScanHandler) Events(w http.ResponseWriter, r *http.Request) {
	job, ok := h.lookupJob(w, r)
	if !ok {
		return
	}
	streamSSEEvents(w, r, job, job.Snapshot())
}

// Cancel cancels a scan job
func (h *ScanHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	job, ok := h.lookupJob(w, r)
	if !ok {
		return
	}
	if isJobTerminal(job.GetStatus()) {
		respondError(w, http.StatusConflict, "job already finished")
		return
	}

	job.Cancel()
	respondJSON(w, http.StatusOK, map[string]bool{"cancelled": true})
}

// ResetProgress clears the scan checkpoint so the next scan starts over
func (h *ScanHandler) ResetProgress(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.ResetProgress(r.Context()); err != nil {
		h.log.WithError(err).Error("Failed to reset scan progress")
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"reset": true})
}

// ResetHistory deletes the import log, all drafts and the scan checkpoint
func (h *ScanHandler) ResetHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.ResetAnalysisHistory(r.Context()); err != nil {
		h.log.WithError(err).Error("Failed to reset analysis history")
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"reset": true})
}

func (h *ScanHandler) lookupJob(w http.ResponseWriter, r *http.Request) (*ScanJob, bool) {
	jobID := chi.URLParam(r, "jobId")
	if jobID == "" {
		respondError(w, http.StatusBadRequest, "missing job ID")
		return nil, false
	}

	job := h.jobManager.GetJob(jobID)
	if job == nil {
		respondError(w, http.StatusNotFound, "job not found")
		return nil, false
	}
	return job, true
}

// runScanJob runs the scan in the background
func (h *ScanHandler) runScanJob(ctx context.Context, cancel context.CancelFunc, job *ScanJob) {
	defer cancel()
	log := h.log.WithField("job_id", job.ID())

	job.update(func(info *ScanJobInfo) {
		info.Status = JobStatusRunning
	})
	job.SendEvent(JobEvent{Type: "started", Message: "Scan started"})

	result, err := h.engine.ScanLibrary(ctx, importer.ScanOptions{
		OnProgress: func(p importer.ProgressInfo) {
			job.update(func(info *ScanJobInfo) {
				info.Phase = p.Phase
				info.Scanned = p.Current
				info.Total = p.Total
				info.Drafts = p.Drafts
				if p.Total > 0 {
					info.Progress = p.Current * 100 / p.Total
				}
			})
			job.SendEvent(JobEvent{
				Type:    "progress",
				Message: p.Message,
				Data: map[string]any{
					"phase":   p.Phase,
					"current": p.Current,
					"total":   p.Total,
					"drafts":  p.Drafts,
				},
			})
		},
	})

	now := time.Now()
	switch {
	case errors.Is(err, context.Canceled):
		job.update(func(info *ScanJobInfo) {
			info.Status = JobStatusCancelled
			info.CompletedAt = &now
		})
		log.Info("Scan job cancelled")
		job.SendEvent(JobEvent{Type: "cancelled", Message: "Scan was cancelled"})
	case err != nil:
		job.update(func(info *ScanJobInfo) {
			info.Status = JobStatusFailed
			info.Error = err.Error()
			info.CompletedAt = &now
		})
		log.WithError(err).Error("Scan job failed")
		job.SendEvent(JobEvent{Type: "job_error", Message: err.Error()})
	default:
		job.update(func(info *ScanJobInfo) {
			info.Status = JobStatusCompleted
			info.Progress = 100
			info.Drafts = result.DraftsCreated
			info.Result = result
			info.CompletedAt = &now
		})
		log.WithField("drafts", result.DraftsCreated).Info("Scan job completed")
		job.SendEvent(JobEvent{Type: "completed", Data: result})
	}
}
