package service

import (
	"context"
	"log/slog"
	"time"
)

// RunSweeper periodically expires stale listings until ctx is cancelled.
// It blocks, so run it in its own goroutine from main.
//
// The sweep is a compaction, not a correctness requirement: every read path
// already filters logically-expired rows, so a missed or late tick only
// delays when the expired status is materialized in the table.
func (s *ListingService) RunSweeper(ctx context.Context, interval time.Duration, log *slog.Logger) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.SweepExpired(ctx)
			if err != nil {
				// Fatal to this tick only; the next tick retries.
				log.ErrorContext(ctx, "expiry sweep failed", "error", err)
				continue
			}
			if n > 0 {
				log.InfoContext(ctx, "expired stale listings", "count", n)
			}
		}
	}
}
