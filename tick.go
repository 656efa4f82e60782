package main

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type pruner interface {
	PruneCache() int
}

// startCacheJanitor drops expired daily payloads every interval until ctx
// ends. The returned channel closes once the loop has exited.
func startCacheJanitor(ctx context.Context, cache pruner, interval time.Duration, log *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	ticker := time.NewTicker(interval)

	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := cache.PruneCache(); removed > 0 {
					log.Debug("pruned daily cache", zap.Int("removed", removed))
				}
			}
		}
	}()
	return done
}
