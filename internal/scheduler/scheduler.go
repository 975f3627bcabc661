package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Scheduler periodically re-runs the collection job in serve mode.
type Scheduler struct {
	scheduler *gocron.Scheduler
	interval  time.Duration
	timeout   time.Duration
	run       func(ctx context.Context) error
	log       *slog.Logger
}

// New creates a Scheduler that invokes run every interval. Each invocation
// gets its own context bounded by timeout.
func New(interval, timeout time.Duration, run func(ctx context.Context) error, log *slog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		interval:  interval,
		timeout:   timeout,
		run:       run,
		log:       log,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run fires immediately.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).StartImmediately().Do(func() {
		s.log.Info("scheduler: running collection job")

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := s.run(ctx); err != nil {
			s.log.Error("scheduler: collection job failed", "error", err)
			return
		}
		s.log.Info("scheduler: collection job finished")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
