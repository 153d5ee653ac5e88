package store

import (
	"context"
	"log/slog"
	"time"
)

// Purger is implemented by stores that need expired entries swept.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// RunJanitor purges expired entries every interval until ctx is done.
func RunJanitor(ctx context.Context, p Purger, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.PurgeExpired(ctx)
			if err != nil {
				logger.WarnContext(ctx, "purge expired entries failed", "error", err)
				continue
			}
			if n > 0 {
				logger.DebugContext(ctx, "purged expired entries", "count", n)
			}
		}
	}
}
