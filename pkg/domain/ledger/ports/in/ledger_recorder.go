// Package in defines the inbound recording port other bounded contexts call
// into after a chain submission, without importing ledger_services directly.
package in

import (
	"context"

	chain_vo "github.com/nexuspay/nexuspay/pkg/domain/chain/value-objects"
	ledger_entities "github.com/nexuspay/nexuspay/pkg/domain/ledger/entities"
	"github.com/google/uuid"
)

type RecordPendingInput struct {
	ProjectID      uuid.UUID
	TransactionType ledger_entities.TransactionType
	Chain          chain_vo.ChainID
	WalletAddress  string
	UserIdentifier string
	SocialType     string
}

type ConfirmInput struct {
	ProjectID        uuid.UUID
	LogID            uuid.UUID
	TxHash           string
	BlockNumber      uint64
	GasUsed          uint64
	GasPrice         string
	GasCost          string
	GasCostUsd       float64
	PaymasterPaid    bool
	PaymasterAddress string
}

// Recorder is the single in-port the wallet and chain layers call to append
// TransactionLog rows and fold confirmed transactions into UserActivity
// (§3, §4.7).
type Recorder interface {
	RecordPending(ctx context.Context, input RecordPendingInput) (*ledger_entities.TransactionLog, error)
	ConfirmTransaction(ctx context.Context, input ConfirmInput) error
	FailTransaction(ctx context.Context, projectID, logID uuid.UUID, reason string) error
	RecordWalletCreated(ctx context.Context, projectID uuid.UUID, userIdentifier string) error
	RecordAPIKeyUsage(ctx context.Context, u *ledger_entities.APIKeyUsage)
}
