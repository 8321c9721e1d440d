package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type ScanRequester interface {
	ScanInstallments(ctx context.Context) error
}

// Scheduler enqueues periodic tasks. It never runs them itself; the worker
// picks them up from the task stream.
type Scheduler struct {
	cron     *cron.Cron
	tasks    ScanRequester
	schedule string
	log      zerolog.Logger
}

// NewScheduler takes a six-field cron spec with a leading seconds field.
func NewScheduler(tasks ScanRequester, schedule string, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:     c,
		tasks:    tasks,
		schedule: schedule,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if s.tasks == nil {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.enqueueScan); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info().Str("schedule", s.schedule).Msg("installment scan scheduled")
	return nil
}

// Stop halts the scheduler and waits for a running enqueue to finish, at
// most five seconds.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) enqueueScan() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.tasks.ScanInstallments(ctx); err != nil {
		s.log.Error().Err(err).Msg("enqueue installment scan failed")
		return
	}
	s.log.Debug().Msg("installment scan enqueued")
}
