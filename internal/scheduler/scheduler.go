package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-challenge-api/internal/service"
)

// Scheduler drives the periodic background passes: problem dispatch, the
// deadline sweep, and pre-deadline reminders. Each pass runs on its own
// ticker so a slow sweep never delays dispatch.
type Scheduler struct {
	dispatch  service.DispatchService
	sweep     service.SweepService
	reminders service.ReminderService

	dispatchInterval time.Duration
	sweepInterval    time.Duration
	reminderInterval time.Duration

	now    func() time.Time
	logger zerolog.Logger
}

// New constructs a scheduler over the three background services.
func New(
	dispatch service.DispatchService,
	sweep service.SweepService,
	reminders service.ReminderService,
	dispatchInterval, sweepInterval, reminderInterval time.Duration,
	logger zerolog.Logger,
) *Scheduler {
	if dispatchInterval <= 0 {
		dispatchInterval = time.Minute
	}
	if sweepInterval <= 0 {
		sweepInterval = 30 * time.Minute
	}
	if reminderInterval <= 0 {
		reminderInterval = 15 * time.Minute
	}

	return &Scheduler{
		dispatch:         dispatch,
		sweep:            sweep,
		reminders:        reminders,
		dispatchInterval: dispatchInterval,
		sweepInterval:    sweepInterval,
		reminderInterval: reminderInterval,
		now:              time.Now,
		logger:           logger.With().Str("component", "scheduler").Logger(),
	}
}

// Run blocks until ctx is cancelled. Every pass runs once immediately so a
// restart does not wait a full interval before reconciling missed work.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info().
		Dur("dispatch_interval", s.dispatchInterval).
		Dur("sweep_interval", s.sweepInterval).
		Dur("reminder_interval", s.reminderInterval).
		Msg("scheduler started")

	s.runDispatch(ctx)
	s.runSweep(ctx)
	s.runReminders(ctx)

	dispatchTicker := time.NewTicker(s.dispatchInterval)
	defer dispatchTicker.Stop()
	sweepTicker := time.NewTicker(s.sweepInterval)
	defer sweepTicker.Stop()
	reminderTicker := time.NewTicker(s.reminderInterval)
	defer reminderTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("scheduler stopped")
			return
		case <-dispatchTicker.C:
			s.runDispatch(ctx)
		case <-sweepTicker.C:
			s.runSweep(ctx)
		case <-reminderTicker.C:
			s.runReminders(ctx)
		}
	}
}

func (s *Scheduler) runDispatch(ctx context.Context) {
	report, err := s.dispatch.RunDispatch(ctx, s.now())
	if err != nil {
		s.logger.Error().Err(err).Msg("dispatch pass failed")
		return
	}
	if len(report.Problems) > 0 {
		s.logger.Info().Int("problems", len(report.Problems)).Msg("dispatch pass completed")
	}
}

func (s *Scheduler) runSweep(ctx context.Context) {
	report, err := s.sweep.RunSweep(ctx, s.now())
	if err != nil {
		s.logger.Error().Err(err).Msg("sweep pass failed")
		return
	}
	if len(report.Problems) > 0 {
		s.logger.Info().Int("problems", len(report.Problems)).Msg("sweep pass completed")
	}
}

func (s *Scheduler) runReminders(ctx context.Context) {
	report, err := s.reminders.RunReminders(ctx, s.now())
	if err != nil {
		s.logger.Error().Err(err).Msg("reminder pass failed")
		return
	}
	if len(report.Notices) > 0 {
		s.logger.Info().Int("notices", len(report.Notices)).Msg("reminder pass completed")
	}
}
