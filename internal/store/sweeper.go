package store

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/acrawford/weather-dashboard/internal/observability"
)

// Sweeper owns the periodic cache sweep. It runs independently of request
// traffic; reads filter on expiry themselves, so the sweep only reclaims
// space. Start it at process init and Stop it at shutdown.
type Sweeper struct {
	scheduler *gocron.Scheduler
	cache     *CacheStore
	interval  time.Duration
	logger    *zap.Logger
}

// NewSweeper returns a Sweeper that deletes expired cache rows every interval.
func NewSweeper(cache *CacheStore, interval time.Duration, logger *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		scheduler: gocron.NewScheduler(time.UTC),
		cache:     cache,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the sweep job and starts the underlying scheduler.
func (s *Sweeper) Start() error {
	_, err := s.scheduler.Every(s.interval).Do(s.sweep)
	if err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future sweeps.
func (s *Sweeper) Stop() {
	s.scheduler.Stop()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, err := s.cache.SweepExpired(ctx)
	if err != nil {
		s.logger.Warn("cache sweep failed", zap.Error(err))
		return
	}
	observability.CacheSweepDeletedTotal.Add(float64(deleted))
	s.logger.Debug("cache sweep completed", zap.Int64("deleted", deleted))
}
