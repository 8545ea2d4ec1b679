// Package jobs holds background maintenance loops.
package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"clubdir/internal/cache"
)

// CacheJanitor periodically drops cache entries that are too old to be
// served, even as stale fallbacks.
type CacheJanitor struct {
	cache    *cache.Cache
	interval time.Duration
	grace    time.Duration
	logger   *zap.Logger
}

// NewCacheJanitor creates a janitor. grace should be at least the longest
// MaxStale of any cache policy (see db.Policies.SweepGrace).
func NewCacheJanitor(c *cache.Cache, interval, grace time.Duration, logger *zap.Logger) *CacheJanitor {
	return &CacheJanitor{cache: c, interval: interval, grace: grace, logger: logger.Named("janitor")}
}

// Start runs the sweep loop until ctx is canceled.
func (j *CacheJanitor) Start(ctx context.Context) {
	if j.interval <= 0 {
		j.logger.Info("cache janitor disabled")
		return
	}
	j.logger.Info("cache janitor started", zap.Duration("interval", j.interval), zap.Duration("grace", j.grace))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("cache janitor stopped")
			return
		case <-ticker.C:
			j.RunOnce()
		}
	}
}

// RunOnce performs one sweep and returns the number of entries removed.
func (j *CacheJanitor) RunOnce() int {
	removed := j.cache.Sweep(j.grace)
	if removed > 0 {
		j.logger.Debug("swept cache", zap.Int("removed", removed), zap.Int("remaining", j.cache.Len()))
	}
	return removed
}
