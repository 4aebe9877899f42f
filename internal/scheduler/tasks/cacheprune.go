// Package tasks holds the scheduled maintenance jobs.
package tasks

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/slipstream/mona/internal/cache"
	"github.com/slipstream/mona/internal/scheduler"
)

const CachePruneTaskID = "cache-prune"

// SizeRecorder receives the cache size after each prune.
type SizeRecorder interface {
	SetCacheEntries(n int)
}

// RegisterCachePruneTask registers the job that drops expired cache entries.
// An empty schedule disables it; entries then expire lazily on read.
func RegisterCachePruneTask(sched *scheduler.Scheduler, c *cache.Cache, schedule string, recorder SizeRecorder, logger zerolog.Logger) error {
	if schedule == "" {
		return nil
	}

	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          CachePruneTaskID,
		Name:        "Cache Prune",
		Description: "Removes expired resolution cache entries",
		Cron:        schedule,
		Func:        CachePruneFunc(c, recorder, logger),
	})
}

// CachePruneFunc returns the prune job body.
func CachePruneFunc(c *cache.Cache, recorder SizeRecorder, logger zerolog.Logger) scheduler.TaskFunc {
	return func(ctx context.Context) error {
		removed := c.Prune()
		remaining := c.Len()
		if recorder != nil {
			recorder.SetCacheEntries(remaining)
		}
		logger.Debug().
			Int("removed", removed).
			Int("remaining", remaining).
			Msg("Pruned cache")
		return nil
	}
}
