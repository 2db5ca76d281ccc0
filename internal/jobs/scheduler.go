// Package jobs runs periodic maintenance tasks on a cron schedule
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/yigit/edustay/internal/pkg/metrics"
)

const (
	JobRentalSweep  = "rental_sweep"
	JobTokenCleanup = "token_cleanup"
	JobStatePrune   = "state_prune"

	defaultRentalSweepSpec  = "@every 5m"
	defaultTokenCleanupSpec = "@hourly"
	statePruneSpec          = "@every 10m"

	jobTimeout = time.Minute
)

// RentalSweeper completes rentals whose end date has passed
type RentalSweeper interface {
	CompleteExpiredRentals(ctx context.Context) (int, error)
}

// TokenCleaner deletes expired refresh tokens
type TokenCleaner interface {
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// Pruner drops idle or expired in-process state, like rate limiter keys and cache entries
type Pruner interface {
	Cleanup()
}

// Config holds the cron specs. Empty specs fall back to the defaults.
type Config struct {
	RentalSweepSpec  string
	TokenCleanupSpec string
}

// Scheduler owns the cron runner and the registered jobs
type Scheduler struct {
	cron   *cron.Cron
	jobs   map[string]func(ctx context.Context) error
	logger zerolog.Logger

	mu      sync.Mutex
	running bool
}

// NewScheduler registers the maintenance jobs. The prune job is only added when pruners is not empty.
func NewScheduler(cfg Config, rentals RentalSweeper, tokens TokenCleaner, pruners []Pruner, logger zerolog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(),
		jobs:   make(map[string]func(ctx context.Context) error),
		logger: logger,
	}

	sweepSpec := cfg.RentalSweepSpec
	if sweepSpec == "" {
		sweepSpec = defaultRentalSweepSpec
	}
	cleanupSpec := cfg.TokenCleanupSpec
	if cleanupSpec == "" {
		cleanupSpec = defaultTokenCleanupSpec
	}

	if err := s.add(sweepSpec, JobRentalSweep, func(ctx context.Context) error {
		_, err := rentals.CompleteExpiredRentals(ctx)
		return err
	}); err != nil {
		return nil, err
	}

	if err := s.add(cleanupSpec, JobTokenCleanup, func(ctx context.Context) error {
		_, err := tokens.CleanupExpiredTokens(ctx)
		return err
	}); err != nil {
		return nil, err
	}

	if len(pruners) > 0 {
		if err := s.add(statePruneSpec, JobStatePrune, func(context.Context) error {
			for _, p := range pruners {
				p.Cleanup()
			}
			return nil
		}); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Scheduler) add(spec, name string, fn func(ctx context.Context) error) error {
	if _, err := s.cron.AddFunc(spec, func() { _ = s.run(name, fn) }); err != nil {
		return fmt.Errorf("scheduling %s with %q: %w", name, spec, err)
	}
	s.jobs[name] = fn
	return nil
}

// run executes one job with a timeout and records its outcome
func (s *Scheduler) run(name string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	metrics.RecordJobRun(name, time.Since(start), err == nil)

	if err != nil {
		s.logger.Error().Err(err).Str("job", name).Msg("Scheduled job failed")
		return err
	}
	s.logger.Debug().Str("job", name).Dur("took", time.Since(start)).Msg("Scheduled job finished")
	return nil
}

// Start begins running jobs in the background
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.cron.Start()
	s.logger.Info().Int("jobs", len(s.jobs)).Msg("Scheduler started")
}

// Stop prevents new runs and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	select {
	case <-s.cron.Stop().Done():
		s.logger.Info().Msg("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunNow executes a registered job immediately, outside its schedule
func (s *Scheduler) RunNow(name string) error {
	fn, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return s.run(name, fn)
}

// Jobs returns the number of registered jobs
func (s *Scheduler) Jobs() int {
	return len(s.jobs)
}
