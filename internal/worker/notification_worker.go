package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/service"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// Sweeper drops expired entries and reports how many went away.
type Sweeper interface {
	Sweep() int
}

// StartSessionSweeper runs sweeper every interval until ctx is done. The
// returned channel closes once the loop has exited.
func StartSessionSweeper(ctx context.Context, sweeper Sweeper, interval time.Duration, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if sweeper == nil || interval <= 0 {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := sweeper.Sweep(); n > 0 {
					logger.Debug("expired sessions removed", zap.Int("count", n))
				}
			}
		}
	}()
	return done
}
