// Package retention removes long-finished schedule records so the state
// file does not grow without bound. The planner never reads records this
// old; only historical listings would miss them.
package retention

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/belphemur/day-planner/internal/clock"
	"github.com/belphemur/day-planner/internal/logging"
	"github.com/belphemur/day-planner/internal/metrics"
)

// cronSpec runs the sweep nightly at 03:00, well clear of the midnight day
// boundary the planner cares about
const cronSpec = "0 3 * * *"

// Pruner is the slice of the schedule store the sweep needs
type Pruner interface {
	DeleteEndedBefore(cutoff time.Time) (int64, error)
}

// Service periodically prunes records older than the retention period
type Service struct {
	store  Pruner
	clock  clock.Clock
	keep   time.Duration
	cron   *cron.Cron
	logger zerolog.Logger
}

// NewService creates a retention service keeping records for retentionDays
// after their planned end
func NewService(store Pruner, clk clock.Clock, retentionDays int) *Service {
	return &Service{
		store:  store,
		clock:  clk,
		keep:   time.Duration(retentionDays) * 24 * time.Hour,
		cron:   cron.New(),
		logger: logging.GetLogger("retention"),
	}
}

// Start schedules the nightly sweep
func (s *Service) Start() error {
	if _, err := s.cron.AddFunc(cronSpec, s.RunOnce); err != nil {
		return fmt.Errorf("failed to schedule retention sweep: %w", err)
	}
	s.cron.Start()
	s.logger.Info().Str("schedule", cronSpec).Dur("retention", s.keep).Msg("Retention sweep scheduled")
	return nil
}

// Stop halts the sweep schedule and waits for a running sweep to finish
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Retention sweep stopped")
}

// RunOnce performs a single sweep
func (s *Service) RunOnce() {
	cutoff := s.clock.Now().Add(-s.keep)
	deleted, err := s.store.DeleteEndedBefore(cutoff)
	if err != nil {
		s.logger.Error().Err(err).Time("cutoff", cutoff).Msg("Retention sweep failed")
		return
	}
	metrics.RetentionDeletedTotal.Add(float64(deleted))
	s.logger.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("Retention sweep completed")
}
