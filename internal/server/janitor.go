package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/iudanet/portfolio/internal/server/storage"
)

// PurgeExpiredTokens deletes expired refresh tokens every interval until
// ctx is canceled
func PurgeExpiredTokens(ctx context.Context, logger *slog.Logger, tokens storage.TokenStorage, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := tokens.DeleteExpiredTokens(ctx)
			if err != nil {
				logger.WarnContext(ctx, "failed to purge expired tokens", slog.Any("error", err))
				continue
			}
			if n > 0 {
				logger.DebugContext(ctx, "expired tokens purged", slog.Int("count", n))
			}
		}
	}
}
