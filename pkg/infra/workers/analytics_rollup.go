package workers

import (
	"context"
	"log/slog"
	"time"

	analytics_in "github.com/nexuspay/nexuspay/pkg/domain/analytics/ports/in"
	project_out "github.com/nexuspay/nexuspay/pkg/domain/project/ports/out"
)

// AnalyticsRollup recomputes yesterday's per-chain daily metrics for every
// active project once a day. DailyMetrics is a pure read over confirmed
// TransactionLog rows, so the roll-up is idempotent and replayable (§4.7):
// running it twice, or re-running it after a backfill, produces the same
// numbers. The result is only logged (its bucket count per project);
// nothing is stored, and the analytics routes query the log themselves.
type AnalyticsRollup struct {
	projects  project_out.ProjectRepository
	analytics analytics_in.AnalyticsQuery
	ticker    *time.Ticker
	interval  time.Duration
}

func NewAnalyticsRollup(projects project_out.ProjectRepository, analytics analytics_in.AnalyticsQuery, interval time.Duration) *AnalyticsRollup {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &AnalyticsRollup{
		projects:  projects,
		analytics: analytics,
		ticker:    time.NewTicker(interval),
		interval:  interval,
	}
}

func (j *AnalyticsRollup) Run(ctx context.Context) {
	slog.InfoContext(ctx, "analytics roll-up started", "interval", j.interval)
	defer j.ticker.Stop()

	j.rollup(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "analytics roll-up stopped")
			return
		case <-j.ticker.C:
			j.rollup(ctx)
		}
	}
}

func (j *AnalyticsRollup) rollup(ctx context.Context) {
	projects, err := j.projects.ListAllActive(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "analytics roll-up failed to list active projects", "error", err)
		return
	}

	for _, p := range projects {
		metrics, err := j.analytics.DailyMetrics(ctx, p.ID, 1)
		if err != nil {
			slog.ErrorContext(ctx, "analytics roll-up failed for project", "project_id", p.ID, "error", err)
			continue
		}
		slog.InfoContext(ctx, "analytics roll-up computed", "project_id", p.ID, "buckets", len(metrics))
	}
}
