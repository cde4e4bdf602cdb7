package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kozaktomas/photo-faces/internal/constants"
	"github.com/kozaktomas/photo-faces/internal/faces"
	"github.com/kozaktomas/photo-faces/internal/logger"
)

// ScanHandler runs gallery scans as async jobs.
type ScanHandler struct {
	repo       *faces.Repository
	jobManager *JobManager
	log        *logger.Logger
	startMu    sync.Mutex
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(repo *faces.Repository, jobManager *JobManager, log *logger.Logger) *ScanHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ScanHandler{repo: repo, jobManager: jobManager, log: log}
}

// Start launches a scan. Only one scan runs at a time.
func (h *ScanHandler) Start(w http.ResponseWriter, r *http.Request) {
	if !h.repo.CanDetect() {
		respondError(w, http.StatusServiceUnavailable, "face detector is not loaded")
		return
	}

	var req ScanJobOptions
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Concurrency <= 0 {
		req.Concurrency = constants.DefaultConcurrency
	}
	if req.Limit < 0 {
		respondError(w, http.StatusBadRequest, "limit must not be negative")
		return
	}

	h.startMu.Lock()
	if active := h.jobManager.ActiveJob(); active != nil {
		h.startMu.Unlock()
		respondJSON(w, http.StatusConflict, map[string]string{
			"error":  "a scan is already running",
			"job_id": active.State().ID,
		})
		return
	}
	job := h.jobManager.CreateJob(uuid.New().String(), req)
	ctx, cancel := context.WithCancel(context.Background())
	job.setRunning(cancel)
	h.startMu.Unlock()

	go h.runScanJob(ctx, cancel, job)

	respondJSON(w, http.StatusAccepted, job.State())
}

func (h *ScanHandler) runScanJob(ctx context.Context, cancel context.CancelFunc, job *ScanJob) {
	defer cancel()

	state := job.State()
	h.log.Info("scan job started", "job_id", state.ID, "concurrency", state.Options.Concurrency, "limit", state.Options.Limit)
	job.SendEvent(JobEvent{Type: "started", Message: "Scan started"})

	stats := h.repo.ProcessAllImages(ctx, faces.ProcessOptions{
		Concurrency: state.Options.Concurrency,
		Limit:       state.Options.Limit,
		Progress:    job.progress,
	})
	job.finish(stats)
	h.log.Info("scan job finished", "job_id", state.ID, "processed", stats.Processed, "cancelled", stats.Cancelled)
}

// Status returns the state of a scan job.
func (h *ScanHandler) Status(w http.ResponseWriter, r *http.Request) {
	job := h.jobManager.GetJob(chi.URLParam(r, "jobId"))
	if job == nil {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}
	respondJSON(w, http.StatusOK, job.State())
}

// Events streams scan progress via SSE.
func (h *ScanHandler) Events(w http.ResponseWriter, r *http.Request) {
	streamSSEEvents(w, r,
		func(id string) SSEJob {
			job := h.jobManager.GetJob(id)
			if job == nil {
				return nil
			}
			return job
		},
		func(job SSEJob) any {
			return job.(*ScanJob).State()
		},
	)
}

// Cancel cancels a running scan.
func (h *ScanHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	job := h.jobManager.GetJob(chi.URLParam(r, "jobId"))
	if job == nil {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}
	if isJobTerminal(job.GetStatus()) {
		respondError(w, http.StatusConflict, "job is not running")
		return
	}

	job.Cancel()
	respondJSON(w, http.StatusOK, map[string]bool{"cancelled": true})
}
