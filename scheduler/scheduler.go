// Package scheduler runs the ingest pipeline once a day at a configured
// local wall-clock time.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"hotissue/pipeline"
)

// Runner is the scheduled unit of work. Satisfied by *pipeline.Pipeline.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Summary, error)
}

type Scheduler struct {
	runner Runner
	at     string // "HH:MM", local time
	logger *zap.Logger

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

func New(runner Runner, at string, logger *zap.Logger) (*Scheduler, error) {
	if _, err := time.Parse("15:04", at); err != nil {
		return nil, fmt.Errorf("scheduler: invalid time %q: %w", at, err)
	}
	return &Scheduler{
		runner: runner,
		at:     at,
		logger: logger,
		now:    time.Now,
		sleep:  sleepCtx,
	}, nil
}

// Run blocks, firing the runner every day at the configured time, until the
// context is cancelled. A failed run is logged and does not stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started", zap.String("daily_at", s.at))

	for {
		wait := s.untilNext()
		s.logger.Info("next run scheduled",
			zap.Time("at", s.now().Add(wait)),
			zap.Duration("in", wait))

		if err := s.sleep(ctx, wait); err != nil {
			s.logger.Info("scheduler stopped")
			return err
		}

		summary, err := s.runner.Run(ctx)
		if err != nil {
			s.logger.Error("scheduled run failed", zap.Error(err))
			continue
		}
		s.logger.Info("scheduled run finished",
			zap.String("run_id", summary.RunID),
			zap.Int("stored", summary.Stored),
			zap.Int("errors", summary.Errors))
	}
}

// untilNext computes the delay to the next occurrence of the configured
// time, today if it is still ahead, otherwise tomorrow.
func (s *Scheduler) untilNext() time.Duration {
	at, _ := time.Parse("15:04", s.at)
	now := s.now()

	next := time.Date(now.Year(), now.Month(), now.Day(),
		at.Hour(), at.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
