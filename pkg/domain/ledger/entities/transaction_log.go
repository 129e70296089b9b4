// Package ledger_entities holds the append-only logs analytics is derived
// from: TransactionLog, UserActivity's rolling counters, and APIKeyUsage
// (§3, §4.7).
package ledger_entities

import (
	"time"

	chain_vo "github.com/nexuspay/nexuspay/pkg/domain/chain/value-objects"
	common "github.com/nexuspay/nexuspay/pkg/domain/common"
	"github.com/google/uuid"
)

type TxStatus string

const (
	TxStatusPending   TxStatus = "pending"
	TxStatusConfirmed TxStatus = "confirmed"
	TxStatusFailed    TxStatus = "failed"
	TxStatusDropped   TxStatus = "dropped"
)

type TransactionType string

const (
	TxTypeWalletDeployment TransactionType = "wallet_deployment"
	TxTypeTransfer         TransactionType = "transfer"
	TxTypeContractCall     TransactionType = "contract_call"
)

// TransactionLog is append-only (§3): once written, only status and receipt
// fields are patched, and only forward (pending -> confirmed|failed|dropped).
type TransactionLog struct {
	common.BaseEntity `bson:",inline"`
	TransactionType    TransactionType        `bson:"transaction_type"`
	Chain              chain_vo.ChainID       `bson:"chain"`
	WalletAddress      string                 `bson:"wallet_address"`
	UserIdentifier     string                 `bson:"user_identifier"` // socialId
	SocialType         string                 `bson:"social_type"`
	TxHash             string                 `bson:"tx_hash,omitempty"`
	BlockNumber        uint64                 `bson:"block_number,omitempty"`
	GasLimit           uint64                 `bson:"gas_limit,omitempty"`
	GasUsed            uint64                 `bson:"gas_used,omitempty"`
	GasPrice           string                 `bson:"gas_price,omitempty"`
	GasCost            string                 `bson:"gas_cost,omitempty"`
	GasCostUsd         float64                `bson:"gas_cost_usd,omitempty"`
	Currency           string                 `bson:"currency"`
	PaymasterPaid      bool                   `bson:"paymaster_paid"`
	PaymasterAddress   string                 `bson:"paymaster_address,omitempty"`
	Status             TxStatus               `bson:"status"`
	ErrorMessage       string                 `bson:"error_message,omitempty"`
	TransactionDetails map[string]interface{} `bson:"transaction_details,omitempty"`
	Metadata           map[string]interface{} `bson:"metadata,omitempty"`
	ConfirmedAt        *time.Time             `bson:"confirmed_at,omitempty"`
}

func NewTransactionLog(projectID uuid.UUID, txType TransactionType, chain chain_vo.ChainID, walletAddress, userIdentifier, socialType string) *TransactionLog {
	return &TransactionLog{
		BaseEntity:      common.NewEntity(projectID),
		TransactionType: txType,
		Chain:           chain,
		WalletAddress:   walletAddress,
		UserIdentifier:  userIdentifier,
		SocialType:      socialType,
		Currency:        nativeCurrency(chain),
		Status:          TxStatusPending,
	}
}

func nativeCurrency(chain chain_vo.ChainID) string {
	if chain.IsSolana() {
		return "SOL"
	}
	return "ETH"
}

// Confirm is the only transition allowed to carry gas/usd detail; it is a
// caller bug to call it on an already-terminal record.
func (t *TransactionLog) Confirm(txHash string, blockNumber, gasUsed uint64, gasPrice, gasCost string, gasCostUsd float64, paymasterPaid bool, paymasterAddress string) {
	now := time.Now()
	t.TxHash = txHash
	t.BlockNumber = blockNumber
	t.GasUsed = gasUsed
	t.GasPrice = gasPrice
	t.GasCost = gasCost
	t.GasCostUsd = gasCostUsd
	t.PaymasterPaid = paymasterPaid
	t.PaymasterAddress = paymasterAddress
	t.Status = TxStatusConfirmed
	t.ConfirmedAt = &now
}

func (t *TransactionLog) Fail(reason string) {
	t.Status = TxStatusFailed
	t.ErrorMessage = reason
}

func (t *TransactionLog) IsTerminal() bool {
	return t.Status == TxStatusConfirmed || t.Status == TxStatusFailed || t.Status == TxStatusDropped
}
