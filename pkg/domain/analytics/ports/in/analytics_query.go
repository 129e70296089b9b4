// Package in defines the inbound analytics query port (§4.7). All queries
// are read-only over TransactionLog/UserActivity/APIKeyUsage/PaymasterPayment
// and are safe to cache per (route, userId) at the HTTP layer (§4.1).
package in

import (
	"context"

	analytics_entities "github.com/nexuspay/nexuspay/pkg/domain/analytics/entities"
	"github.com/google/uuid"
)

type AnalyticsQuery interface {
	Overview(ctx context.Context, projectID uuid.UUID, days int) (*analytics_entities.Overview, error)
	DailyMetrics(ctx context.Context, projectID uuid.UUID, days int) ([]analytics_entities.DailyMetric, error)
	TopUsers(ctx context.Context, projectID uuid.UUID, orderBy analytics_entities.TopUserOrderBy, limit int) ([]analytics_entities.TopUser, error)
	Cohorts(ctx context.Context, projectID uuid.UUID) ([]analytics_entities.Cohort, error)
	// ExportCSV returns a billing-window export of confirmed TransactionLog
	// rows as CSV bytes (§4.7).
	ExportCSV(ctx context.Context, projectID uuid.UUID, from, to string) ([]byte, error)
}
