// Package out defines outbound persistence ports for the append-only logs
// analytics reads from (§4.7).
package out

import (
	"context"
	"time"

	ledger_entities "github.com/nexuspay/nexuspay/pkg/domain/ledger/entities"
	"github.com/google/uuid"
)

type TransactionLogRepository interface {
	Create(ctx context.Context, t *ledger_entities.TransactionLog) error
	Patch(ctx context.Context, t *ledger_entities.TransactionLog) error
	FindByID(ctx context.Context, projectID, id uuid.UUID) (*ledger_entities.TransactionLog, error)
	// ListByProjectAndWindow feeds analytics aggregation (§4.7); confined to
	// status=confirmed rows grouped by (chain, transactionType, date/hour).
	ListByProjectAndWindow(ctx context.Context, projectID uuid.UUID, since, until time.Time) ([]*ledger_entities.TransactionLog, error)
}

type UserActivityRepository interface {
	Upsert(ctx context.Context, a *ledger_entities.UserActivity) error
	FindByUser(ctx context.Context, projectID uuid.UUID, userIdentifier string) (*ledger_entities.UserActivity, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*ledger_entities.UserActivity, error)
	// TopUsers orders by transactionsSent or totalGasSpentUsd, capped at 100 (§4.7).
	TopUsers(ctx context.Context, projectID uuid.UUID, orderBy string, limit int) ([]*ledger_entities.UserActivity, error)
}

type APIKeyUsageRepository interface {
	Create(ctx context.Context, u *ledger_entities.APIKeyUsage) error
	// ListByAPIKey feeds the §6 `GET .../api-keys/:keyId/usage` route, newest
	// first.
	ListByAPIKey(ctx context.Context, projectID, apiKeyID uuid.UUID, page, limit int) ([]*ledger_entities.APIKeyUsage, int, error)
}
