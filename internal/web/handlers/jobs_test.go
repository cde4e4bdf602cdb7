package handlers

import (
	"testing"

	"github.com/kozaktomas/photo-faces/internal/constants"
	"github.com/kozaktomas/photo-faces/internal/faces"
)

func TestEventBroadcaster(t *testing.T) {
	var b EventBroadcaster
	ch := b.AddListener()

	b.SendEvent(JobEvent{Type: "progress"})
	if ev := <-ch; ev.Type != "progress" {
		t.Errorf("unexpected event %+v", ev)
	}

	// A full buffer drops events instead of blocking.
	for range constants.EventChannelBuffer + 10 {
		b.SendEvent(JobEvent{Type: "spam"})
	}
	if len(ch) != constants.EventChannelBuffer {
		t.Errorf("expected full buffer, got %d", len(ch))
	}

	b.RemoveListener(ch)
	for range ch {
	}
	b.RemoveListener(ch) // second removal is a no-op
}

func TestJobManager(t *testing.T) {
	m := NewJobManager()
	if m.ActiveJob() != nil {
		t.Error("expected no active job")
	}

	job := m.CreateJob("job-1", ScanJobOptions{Concurrency: 2})
	if m.GetJob("job-1") != job || m.GetJob("missing") != nil {
		t.Error("unexpected lookup result")
	}
	if m.ActiveJob() != job {
		t.Error("pending job should be active")
	}

	cancelled := false
	job.setRunning(func() { cancelled = true })
	m.CancelAll()
	if !cancelled {
		t.Error("expected CancelAll to cancel running job")
	}

	job.progress(faces.ProcessProgress{Done: 1, Total: 3})
	job.finish(faces.ProcessStats{Processed: 1, Cancelled: true})
	state := job.State()
	if state.Status != JobStatusCancelled || state.Done != 1 || state.Total != 3 || state.CompletedAt == nil {
		t.Errorf("unexpected state %+v", state)
	}
	if m.ActiveJob() != nil {
		t.Error("finished job must not be active")
	}
}
