package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/harings-be/commerce-pricelist/internal/pricelist"
)

// StartSchedulerService runs the expiry sweep loop. Published price lists
// whose end date has passed are unpublished so storefront lookups stop
// resolving them.
func (a *Application) StartSchedulerService(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		var lastRun time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				interval := a.settings.GetInt64("pricelist", "ExpirySweepInterval")
				if interval <= 0 {
					interval = 600
				}
				if now.Sub(lastRun) < time.Duration(interval)*time.Second {
					continue
				}
				lastRun = now
				a.runExpirySweep(ctx, now)
			}
		}
	}()
}

func (a *Application) runExpirySweep(ctx context.Context, now time.Time) {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	svc := pricelist.NewService(a.gormDB, pricelist.DefaultResolverRegistry(a.gormDB))
	count, err := svc.DeactivateExpired(ctx, now)
	if err != nil {
		zap.L().Error("expiry sweep failed", zap.Error(err))
		return
	}
	if count > 0 {
		zap.L().Info("expiry sweep unpublished price lists", zap.Int64("count", count))
	}
}
