package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Purger drops cached snapshots.
type Purger interface {
	InvalidateAll()
}

// Scheduler purges the snapshot cache on a cron schedule evaluated in the
// reporting location, so day-relative ranges never outlive their day.
type Scheduler struct {
	cron     *cron.Cron
	purger   Purger
	schedule string
	logger   zerolog.Logger
}

func New(schedule string, loc *time.Location, purger Purger, logger zerolog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		purger:   purger,
		schedule: schedule,
		logger:   logger,
	}
}

// Start registers the purge job and starts the cron loop. An empty schedule
// disables scheduling.
func (s *Scheduler) Start() error {
	if s.schedule == "" {
		s.logger.Warn().Msg("cache purge schedule not set, scheduler disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.schedule, s.purge); err != nil {
		return fmt.Errorf("scheduling cache purge %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.logger.Info().Str("schedule", s.schedule).Msg("scheduler started")
	return nil
}

func (s *Scheduler) purge() {
	s.logger.Info().Msg("scheduled cache purge")
	s.purger.InvalidateAll()
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	s.logger.Info().Msg("scheduler stopped")
}

// Next reports when the purge runs next. Zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
