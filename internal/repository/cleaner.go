package repository

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// PendingSweeper removes expired pending registrations.
type PendingSweeper interface {
	DeleteExpiredPending(ctx context.Context, cutoff time.Time) (int, error)
}

// StartExpiredRegistrationCleaner drops pending registrations whose code
// expired more than retention ago, every interval, until ctx is done.
func StartExpiredRegistrationCleaner(
	ctx context.Context,
	repo PendingSweeper,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := repo.DeleteExpiredPending(ctx, time.Now().Add(-retention))
				if err != nil {
					log.Error("failed to clean expired registrations", zap.Error(err))
					continue
				}
				if removed > 0 {
					log.Info("cleaned expired registrations", zap.Int("removed", removed))
				}
			}
		}
	}()
}
