package scheduler

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestEvery_RunsImmediatelyAndRepeats(t *testing.T) {
	s := New(nil)
	var calls atomic.Int32
	if err := s.Every("cleanup", 20*time.Millisecond, func() { calls.Add(1) }); err != nil {
		t.Fatalf("Every() error: %v", err)
	}

	s.Start()
	s.Start() // idempotent
	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	s.Stop()
	s.Stop()

	if calls.Load() < 2 {
		t.Errorf("expected at least 2 runs, got %d", calls.Load())
	}
}

func TestEvery_InvalidInterval(t *testing.T) {
	s := New(nil)
	if err := s.Every("bad", 0, func() {}); err == nil {
		t.Error("expected error for zero interval")
	}
}
