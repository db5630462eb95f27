package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/fundwallet/fundwallet-backend/internal/pipeline"
)

// DefaultRefreshTimeout bounds how long a scheduled run waits for its refresh.
const DefaultRefreshTimeout = 10 * time.Minute

// Refresher starts background refreshes. *pipeline.Pipeline implements it.
type Refresher interface {
	Refresh(ctx context.Context) (*pipeline.Task, error)
}

// RefreshScheduler refreshes the fund data on a cron schedule.
type RefreshScheduler struct {
	cron      *cron.Cron
	refresher Refresher
	timeout   time.Duration
	logger    zerolog.Logger
	enabled   bool
}

// NewRefreshScheduler parses the schedule (standard cron or a descriptor such as
// "@every 6h"). An empty schedule yields a scheduler that never fires.
func NewRefreshScheduler(spec string, refresher Refresher, logger zerolog.Logger) (*RefreshScheduler, error) {
	logger = logger.With().Str("component", "scheduler").Logger()
	s := &RefreshScheduler{
		cron:      cron.New(cron.WithLogger(cron.PrintfLogger(&logger))),
		refresher: refresher,
		timeout:   DefaultRefreshTimeout,
		logger:    logger,
	}
	if spec == "" {
		return s, nil
	}
	if _, err := s.cron.AddFunc(spec, s.Run); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	s.enabled = true
	return s, nil
}

// Start runs the schedule in the background.
func (s *RefreshScheduler) Start() {
	if !s.enabled {
		s.logger.Info().Msg("scheduled refresh disabled")
		return
	}
	s.cron.Start()
	s.logger.Info().Msg("scheduled refresh started")
}

// Stop stops the schedule and waits for a running refresh or ctx, whichever ends first.
func (s *RefreshScheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// Run performs one refresh and waits for it. Failures are logged only, since
// readers keep the data they already have.
func (s *RefreshScheduler) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	task, err := s.refresher.Refresh(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("scheduled refresh not started")
		return
	}
	if _, err := task.Wait(ctx); err != nil {
		s.logger.Warn().Err(err).Str("task_id", task.ID).Msg("scheduled refresh failed")
		return
	}
	s.logger.Info().Str("task_id", task.ID).Msg("scheduled refresh completed")
}
