// Package cronjob runs the service's scheduled maintenance jobs.
package cronjob

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one scheduled task. It receives a context that ends when the scheduler stops or the
// run exceeds the job timeout.
type Job func(ctx context.Context) error

type Scheduler struct {
	cron    *cron.Cron
	log     *zap.Logger
	loc     *time.Location
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler interprets standard five-field specs in loc.
func NewScheduler(loc *time.Location, log *zap.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		log:     log,
		loc:     loc,
		timeout: 5 * time.Minute,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Add registers job under name. Run failures are logged, never fatal.
func (s *Scheduler) Add(name, spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() { s.run(name, job) })
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.log.Info("job scheduled", zap.String("job", name), zap.String("spec", spec), zap.String("tz", s.loc.String()))
	return nil
}

// RunNow runs job once, synchronously, with the same logging as a scheduled run.
func (s *Scheduler) RunNow(name string, job Job) {
	s.run(name, job)
}

func (s *Scheduler) run(name string, job Job) {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	start := time.Now()
	log := s.log.With(zap.String("job", name))
	if err := job(ctx); err != nil {
		log.Error("job failed", zap.Duration("took", time.Since(start)), zap.Error(err))
		return
	}
	log.Info("job finished", zap.Duration("took", time.Since(start)))
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return, or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}
}
