package rescache

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/xzzpig/content-rest/internal/core/logger"
)

// DefaultSweepInterval is how often expired responses are evicted.
const DefaultSweepInterval = 60 * time.Second

// Sweeper evicts expired entries from a Cache on a fixed interval.
type Sweeper struct {
	cache   *Cache
	logger  *zap.Logger
	cron    *cron.Cron
	entryID cron.EntryID
}

// NewSweeper creates a stopped Sweeper for cache.
func NewSweeper(cache *Cache) *Sweeper {
	return &Sweeper{
		cache:  cache,
		logger: logger.Named("core.rescache.sweeper"),
	}
}

// Schedule returns the cron spec for sweeping every interval.
func Schedule(interval time.Duration) string {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return "@every " + interval.String()
}

// Start begins sweeping every interval. Calling Start on a running Sweeper
// restarts it with the new interval.
func (s *Sweeper) Start(interval time.Duration) error {
	s.Stop()

	schedule := Schedule(interval)
	s.logger.Info("Starting response cache sweeper", zap.String("schedule", schedule))

	s.cron = cron.New()
	entryID, err := s.cron.AddFunc(schedule, func() {
		s.cache.Sweep()
	})
	if err != nil {
		s.cron = nil
		return err
	}

	s.entryID = entryID
	s.cron.Start()
	return nil
}

// Stop halts sweeping and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		s.logger.Info("Stopping response cache sweeper")
		<-s.cron.Stop().Done()
		s.cron = nil
	}
}

// Running reports whether the sweeper is scheduled.
func (s *Sweeper) Running() bool {
	return s.cron != nil
}
