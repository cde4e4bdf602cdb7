// Package scheduler runs recurring maintenance tasks.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/kozaktomas/photo-faces/internal/logger"
)

// Scheduler runs named tasks at fixed intervals. A task never overlaps
// with a still running instance of itself.
type Scheduler struct {
	scheduler *gocron.Scheduler
	log       *logger.Logger
	mu        sync.Mutex
	running   bool
}

// New creates a stopped scheduler.
func New(log *logger.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{scheduler: s, log: log}
}

// Every registers task to run every interval, starting immediately once the
// scheduler is started.
func (s *Scheduler) Every(name string, interval time.Duration, task func()) error {
	if interval <= 0 {
		return fmt.Errorf("invalid interval %v for job %s", interval, name)
	}
	_, err := s.scheduler.Every(interval).Tag(name).Do(func() {
		start := time.Now()
		task()
		s.log.Debug("scheduled job finished", "job", name, "duration", time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("scheduling job %s: %w", name, err)
	}
	return nil
}

// Start runs the scheduler in the background.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.scheduler.StartAsync()
	s.running = true
}

// Stop stops the scheduler. Running jobs are not interrupted.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.scheduler.Stop()
	s.running = false
}
