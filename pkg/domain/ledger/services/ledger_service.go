package ledger_services

import (
	"context"
	"log/slog"

	common "github.com/nexuspay/nexuspay/pkg/domain/common"
	ledger_entities "github.com/nexuspay/nexuspay/pkg/domain/ledger/entities"
	in "github.com/nexuspay/nexuspay/pkg/domain/ledger/ports/in"
	out "github.com/nexuspay/nexuspay/pkg/domain/ledger/ports/out"
	"github.com/google/uuid"
)

type LedgerService struct {
	logs      out.TransactionLogRepository
	activity  out.UserActivityRepository
	usage     out.APIKeyUsageRepository
}

func NewLedgerService(logs out.TransactionLogRepository, activity out.UserActivityRepository, usage out.APIKeyUsageRepository) *LedgerService {
	return &LedgerService{logs: logs, activity: activity, usage: usage}
}

var _ in.Recorder = (*LedgerService)(nil)

func (s *LedgerService) RecordPending(ctx context.Context, input in.RecordPendingInput) (*ledger_entities.TransactionLog, error) {
	log := ledger_entities.NewTransactionLog(input.ProjectID, input.TransactionType, input.Chain, input.WalletAddress, input.UserIdentifier, input.SocialType)
	if err := s.logs.Create(ctx, log); err != nil {
		return nil, err
	}
	return log, nil
}

// ConfirmTransaction patches the TransactionLog to confirmed and folds it
// into the user's rolling UserActivity counters and engagement score (§4.7).
// Invariant (§8.1): a confirmed, paymaster-paid log always carries txHash —
// the caller (wallet/chain layer) is responsible for having created the
// matching PaymasterPayment before calling this.
func (s *LedgerService) ConfirmTransaction(ctx context.Context, input in.ConfirmInput) error {
	log, err := s.logs.FindByID(ctx, input.ProjectID, input.LogID)
	if err != nil {
		return err
	}
	if log == nil {
		return common.NewErrNotFound(common.ResourceTypeTransactionLog, "id", input.LogID)
	}
	if log.IsTerminal() {
		return nil
	}

	log.Confirm(input.TxHash, input.BlockNumber, input.GasUsed, input.GasPrice, input.GasCost, input.GasCostUsd, input.PaymasterPaid, input.PaymasterAddress)
	if err := s.logs.Patch(ctx, log); err != nil {
		return err
	}

	activity, err := s.activity.FindByUser(ctx, input.ProjectID, log.UserIdentifier)
	if err != nil {
		return err
	}
	if activity == nil {
		activity = ledger_entities.NewUserActivity(input.ProjectID, log.UserIdentifier)
	}
	activity.RecordConfirmedTransaction(log.Chain, log.TransactionType, log.GasCostUsd, log.PaymasterPaid, *log.ConfirmedAt)
	return s.activity.Upsert(ctx, activity)
}

func (s *LedgerService) FailTransaction(ctx context.Context, projectID, logID uuid.UUID, reason string) error {
	log, err := s.logs.FindByID(ctx, projectID, logID)
	if err != nil {
		return err
	}
	if log == nil {
		return common.NewErrNotFound(common.ResourceTypeTransactionLog, "id", logID)
	}
	if log.IsTerminal() {
		return nil
	}
	log.Fail(reason)
	return s.logs.Patch(ctx, log)
}

func (s *LedgerService) RecordWalletCreated(ctx context.Context, projectID uuid.UUID, userIdentifier string) error {
	activity, err := s.activity.FindByUser(ctx, projectID, userIdentifier)
	if err != nil {
		return err
	}
	if activity == nil {
		activity = ledger_entities.NewUserActivity(projectID, userIdentifier)
	}
	activity.RecordWalletCreated()
	return s.activity.Upsert(ctx, activity)
}

// RecordAPIKeyUsage is fire-and-forget (§4.1): failures are logged, never
// surfaced to the caller, so it takes no context cancellation into account
// beyond the one write.
func (s *LedgerService) RecordAPIKeyUsage(ctx context.Context, u *ledger_entities.APIKeyUsage) {
	if err := s.usage.Create(ctx, u); err != nil {
		slog.ErrorContext(ctx, "failed to record api key usage", "api_key_id", u.APIKeyID, "error", err)
	}
}
