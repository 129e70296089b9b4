// Package workers holds the background jobs spec.md §4.6/§4.7 requires
// outside the request path: the paymaster balance refresher, the wallet
// deploy receipt poller, and the daily analytics roll-up. Shaped after the
// teacher's pkg/app/jobs ticker-loop jobs.
package workers

import (
	"context"
	"log/slog"
	"time"

	paymaster_in "github.com/nexuspay/nexuspay/pkg/domain/paymaster/ports/in"
)

// BalanceRefresher re-prices and re-checks every provisioned paymaster's
// on-chain balance on a fixed interval, no slower than the 5-minute ceiling
// spec.md §4.6 sets.
type BalanceRefresher struct {
	paymaster paymaster_in.PaymasterCommand
	ticker    *time.Ticker
	interval  time.Duration
}

func NewBalanceRefresher(paymaster paymaster_in.PaymasterCommand, interval time.Duration) *BalanceRefresher {
	if interval <= 0 || interval > 5*time.Minute {
		interval = 5 * time.Minute
	}
	return &BalanceRefresher{
		paymaster: paymaster,
		ticker:    time.NewTicker(interval),
		interval:  interval,
	}
}

func (j *BalanceRefresher) Run(ctx context.Context) {
	slog.InfoContext(ctx, "paymaster balance refresher started", "interval", j.interval)
	defer j.ticker.Stop()

	j.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "paymaster balance refresher stopped")
			return
		case <-j.ticker.C:
			j.refresh(ctx)
		}
	}
}

func (j *BalanceRefresher) refresh(ctx context.Context) {
	if err := j.paymaster.RefreshAllBalances(ctx); err != nil {
		slog.ErrorContext(ctx, "paymaster balance refresh failed", "error", err)
	}
}
