package handlers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/kozaktomas/photo-memories/internal/constants"
	"github.com/kozaktomas/photo-memories/internal/importer"
)

// JobStatus represents the status of an async job.
type JobStatus string

// JobStatus constants define the lifecycle states of an async job.
const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// ScanJobInfo is the externally visible state of a scan job.
type ScanJobInfo struct {
	ID          string               `json:"id"`
	Status      JobStatus            `json:"status"`
	Phase       string               `json:"phase,omitempty"`
	Progress    int                  `json:"progress"`
	Total       int                  `json:"total"`
	Scanned     int                  `json:"scanned"`
	Drafts      int                  `json:"drafts"`
	Error       string               `json:"error,omitempty"`
	StartedAt   time.Time            `json:"started_at"`
	CompletedAt *time.Time           `json:"completed_at,omitempty"`
	Result      *importer.ScanResult `json:"result,omitempty"`
}

// ScanJob represents an async library scan.
type ScanJob struct {
	EventBroadcaster

	infoMu sync.RWMutex
	info   ScanJobInfo
}

// ID returns the job ID.
func (j *ScanJob) ID() string {
	return j.Snapshot().ID
}

// GetStatus returns the current job status (implements SSEJob).
func (j *ScanJob) GetStatus() JobStatus {
	return j.Snapshot().Status
}

// Snapshot returns a copy of the job state.
func (j *ScanJob) Snapshot() ScanJobInfo {
	j.infoMu.RLock()
	defer j.infoMu.RUnlock()
	return j.info
}

// MarshalJSON encodes the job state.
func (j *ScanJob) MarshalJSON() ([]byte, error) {
	return json.Marshal(j.Snapshot())
}

func (j *ScanJob) update(fn func(info *ScanJobInfo)) {
	j.infoMu.Lock()
	defer j.infoMu.Unlock()
	fn(&j.info)
}

// Cancel cancels the scan job. The job reaches the cancelled state once the
// scan has stored its checkpoint.
func (j *ScanJob) Cancel() {
	j.EventBroadcaster.Cancel()
}

// JobEvent represents an event from a job.
type JobEvent struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// EventBroadcaster provides listener management and event broadcasting for async jobs.
// Embed this in job structs to get AddListener, RemoveListener, and SendEvent methods.
type EventBroadcaster struct {
	cancel    context.CancelFunc
	listeners []chan JobEvent
	mu        sync.RWMutex
}

// AddListener adds an event listener.
func (b *EventBroadcaster) AddListener() chan JobEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan JobEvent, constants.EventChannelBuffer)
	b.listeners = append(b.listeners, ch)
	return ch
}

// RemoveListener removes an event listener.
func (b *EventBroadcaster) RemoveListener(ch chan JobEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, listener := range b.listeners {
		if listener == ch {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			close(ch)
			return
		}
	}
}

// SendEvent sends an event to all listeners.
func (b *EventBroadcaster) SendEvent(event JobEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, listener := range b.listeners {
		select {
		case listener <- event:
		default:
			// Listener buffer full, skip.
		}
	}
}

// Cancel cancels the job via its context.
func (b *EventBroadcaster) Cancel() {
	b.mu.RLock()
	cancel := b.cancel
	b.mu.RUnlock()
	if cancel != nil {
		cancel()
	}
}

func (b *EventBroadcaster) setCancel(cancel context.CancelFunc) {
	b.mu.Lock()
	b.cancel = cancel
	b.mu.Unlock()
}

// SSEJob is the interface required by streamSSEEvents to stream job events via SSE.
type SSEJob interface {
	AddListener() chan JobEvent
	RemoveListener(ch chan JobEvent)
	GetStatus() JobStatus
}

// JobManager manages async scan jobs. At most one job is active at a time.
type JobManager struct {
	jobs   map[string]*ScanJob
	active string
	mu     sync.RWMutex
}

// NewJobManager creates a new job manager.
func NewJobManager() *JobManager {
	return &JobManager{
		jobs: make(map[string]*ScanJob),
	}
}

// CreateJob creates a new scan job. It returns nil when another job is still
// active. Finished jobs are dropped, so only the new job stays addressable.
func (m *JobManager) CreateJob(id string) *ScanJob {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.jobs[m.active]; ok && !isJobTerminal(current.GetStatus()) {
		return nil
	}
	for jobID, job := range m.jobs {
		if isJobTerminal(job.GetStatus()) {
			delete(m.jobs, jobID)
		}
	}

	job := &ScanJob{info: ScanJobInfo{
		ID:        id,
		Status:    JobStatusPending,
		StartedAt: time.Now(),
	}}
	m.jobs[id] = job
	m.active = id
	return job
}

// GetJob retrieves a job by ID.
func (m *JobManager) GetJob(id string) *ScanJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobs[id]
}

// ActiveJob returns the most recently created job, nil if there is none.
func (m *JobManager) ActiveJob() *ScanJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobs[m.active]
}

// DeleteJob removes a job.
func (m *JobManager) DeleteJob(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobs, id)
	if m.active == id {
		m.active = ""
	}
}

// ListJobs returns all jobs.
func (m *JobManager) ListJobs() []*ScanJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	jobs := make([]*ScanJob, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, job)
	}
	return jobs
}

// CancelAll cancels every job that has not finished yet.
func (m *JobManager) CancelAll() {
	for _, job := range m.ListJobs() {
		if !isJobTerminal(job.GetStatus()) {
			job.Cancel()
		}
	}
}
