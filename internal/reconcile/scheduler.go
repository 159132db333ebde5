package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner is one reconcile pass.
type Runner interface {
	Run(ctx context.Context) (*Report, error)
}

// Scheduler runs reconcile passes on a cron schedule with seconds.
type Scheduler struct {
	cron    *cron.Cron
	runner  Runner
	log     *zap.SugaredLogger
	timeout time.Duration
}

func NewScheduler(runner Runner, log *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		runner:  runner,
		log:     log.Named("reconcile.cron"),
		timeout: time.Minute,
	}
}

// Start registers the job and starts the cron loop.
func (s *Scheduler) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.runOnce); err != nil {
		return fmt.Errorf("add reconcile job %q: %w", schedule, err)
	}
	s.cron.Start()
	s.log.Infow("cron scheduler started", "schedule", schedule)
	return nil
}

// Stop waits for a running pass to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warnw("reconcile pass still running at shutdown")
	}
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if _, err := s.runner.Run(ctx); err != nil {
		s.log.Errorw("reconcile pass failed", "error", err, "elapsed", time.Since(start))
	}
}
