package syncdb

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const sweepTimeout = 5 * time.Second

// Promoter moves projects whose start has passed from upcoming to ongoing.
type Promoter interface {
	PromoteStarted(ctx context.Context) (int64, error)
}

// Run sweeps once right away and then every interval until ctx is done.
func Run(ctx context.Context, p Promoter, interval time.Duration) {
	syncOnce(ctx, p)

	tk := time.NewTicker(interval)
	go func() {
		defer tk.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tk.C:
				syncOnce(ctx, p)
			}
		}
	}()
}

func syncOnce(ctx context.Context, p Promoter) {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	if _, err := p.PromoteStarted(ctx); err != nil {
		zap.L().Error("syncdb.status_sweep", zap.Error(err))
	}
}
