package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/kozaktomas/photo-faces/internal/constants"
	"github.com/kozaktomas/photo-faces/internal/faces"
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

// SSEJob is the interface required by streamSSEEvents to stream job events via SSE.
type SSEJob interface {
	AddListener() chan JobEvent
	RemoveListener(ch chan JobEvent)
	GetStatus() JobStatus
}

// ScanJobOptions are the request options of a scan.
type ScanJobOptions struct {
	Concurrency int `json:"concurrency"`
	Limit       int `json:"limit"`
}

// ScanJobState is the encodable state of a scan job.
type ScanJobState struct {
	ID          string              `json:"id"`
	Status      JobStatus           `json:"status"`
	Done        int                 `json:"done"`
	Total       int                 `json:"total"`
	StartedAt   time.Time           `json:"started_at"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
	Options     ScanJobOptions      `json:"options"`
	Result      *faces.ProcessStats `json:"result,omitempty"`
}

// ScanJob is an async gallery scan.
type ScanJob struct {
	EventBroadcaster

	state ScanJobState
}

// GetStatus returns the current job status (implements SSEJob).
func (j *ScanJob) GetStatus() JobStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.state.Status
}

// State returns a copy of the job state.
func (j *ScanJob) State() ScanJobState {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.state
}

func (j *ScanJob) setRunning(cancel context.CancelFunc) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cancel = cancel
	j.state.Status = JobStatusRunning
}

func (j *ScanJob) progress(p faces.ProcessProgress) {
	j.mu.Lock()
	j.state.Done = p.Done
	j.state.Total = p.Total
	j.mu.Unlock()
	j.SendEvent(JobEvent{Type: "progress", Data: p})
}

func (j *ScanJob) finish(stats faces.ProcessStats) {
	now := time.Now()
	j.mu.Lock()
	j.state.Result = &stats
	j.state.CompletedAt = &now
	if stats.Cancelled {
		j.state.Status = JobStatusCancelled
	} else {
		j.state.Status = JobStatusCompleted
	}
	status := j.state.Status
	j.mu.Unlock()

	j.SendEvent(JobEvent{Type: string(status), Data: stats})
}

// Cancel cancels the scan via its context.
func (j *ScanJob) Cancel() {
	j.mu.RLock()
	cancel := j.cancel
	j.mu.RUnlock()
	if cancel != nil {
		cancel()
	}
}

// JobManager manages async jobs.
type JobManager struct {
	jobs map[string]*ScanJob
	mu   sync.RWMutex
}

// NewJobManager creates a new job manager.
func NewJobManager() *JobManager {
	return &JobManager{
		jobs: make(map[string]*ScanJob),
	}
}

// CreateJob creates a pending scan job.
func (m *JobManager) CreateJob(id string, options ScanJobOptions) *ScanJob {
	job := &ScanJob{
		state: ScanJobState{
			ID:        id,
			Status:    JobStatusPending,
			StartedAt: time.Now(),
			Options:   options,
		},
	}

	m.mu.Lock()
	m.jobs[id] = job
	m.mu.Unlock()
	return job
}

// GetJob returns a job by ID or nil.
func (m *JobManager) GetJob(id string) *ScanJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobs[id]
}

// ActiveJob returns a pending or running job, if any.
func (m *JobManager) ActiveJob() *ScanJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, job := range m.jobs {
		if !isJobTerminal(job.GetStatus()) {
			return job
		}
	}
	return nil
}

// CancelAll cancels every job that has not finished.
func (m *JobManager) CancelAll() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, job := range m.jobs {
		if !isJobTerminal(job.GetStatus()) {
			job.Cancel()
		}
	}
}
