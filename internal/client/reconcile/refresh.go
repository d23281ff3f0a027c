package reconcile

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/MailerAdmin/internal/client/notify"
)

// StartAutoRefresh reloads the collection every interval until ctx is
// done. Loads may overlap with commits; the last writer wins.
func (c *Collection[K, T, V]) StartAutoRefresh(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := c.Load(ctx); err != nil {
					if ctx.Err() != nil {
						return
					}
					c.log.Debug("auto refresh failed", zap.Error(err))
					continue
				}
				if c.refreshNotice != "" {
					notify.Success(c.notifier, c.refreshNotice)
				}
			}
		}
	}()
}
