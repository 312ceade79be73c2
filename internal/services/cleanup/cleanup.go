package cleanup

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Queue is the part of the job service the sweeper drives
type Queue interface {
	ReapStale(ctx context.Context, olderThan time.Duration) (int, error)
	CleanupOldJobs(ctx context.Context, retentionDays int) (int64, error)
}

// Service periodically fails stuck jobs and deletes old finished ones
type Service struct {
	queue         Queue
	staleAfter    time.Duration
	retentionDays int
	interval      time.Duration

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewService creates a new sweeper. A zero staleAfter disables reaping and a
// zero retentionDays keeps finished jobs forever.
func NewService(queue Queue, staleAfter time.Duration, retentionDays int, interval time.Duration) *Service {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Service{
		queue:         queue,
		staleAfter:    staleAfter,
		retentionDays: retentionDays,
		interval:      interval,
	}
}

// Enabled reports whether the sweeper has anything to do
func (s *Service) Enabled() bool {
	return s.staleAfter > 0 || s.retentionDays > 0
}

// Start runs one sweep immediately and then one per interval until Stop or ctx ends
func (s *Service) Start(ctx context.Context) {
	if !s.Enabled() {
		log.Info("Job sweeper disabled (jobs.stale_after and jobs.retention_days are 0)")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	s.Sweep(ctx)

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Sweep(ctx)
			case <-ctx.Done():
				log.Info("Job sweeper stopped")
				return
			}
		}
	}()

	log.Infof("Job sweeper started (interval: %v, stale after: %v, retention: %d days)", s.interval, s.staleAfter, s.retentionDays)
}

// Stop stops the sweeper and waits for a running sweep to finish
func (s *Service) Stop() {
	s.once.Do(func() {
		if s.cancel == nil {
			return
		}
		s.cancel()
		<-s.done
	})
}

// Sweep runs a single reap and retention pass
func (s *Service) Sweep(ctx context.Context) {
	if s.staleAfter > 0 {
		if reaped, err := s.queue.ReapStale(ctx, s.staleAfter); err != nil {
			log.Errorf("Reaping stale jobs failed: %v", err)
		} else if reaped > 0 {
			log.Warnf("Reaped %d stale job(s)", reaped)
		}
	}

	if s.retentionDays > 0 {
		if _, err := s.queue.CleanupOldJobs(ctx, s.retentionDays); err != nil {
			log.Errorf("Cleaning up old jobs failed: %v", err)
		}
	}
}
