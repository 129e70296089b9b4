// Package paymaster_entities holds the per-project, per-chain sponsor
// records: the paymaster itself, its cached balance, and the append-only
// payment ledger (§3, §4.6).
package paymaster_entities

import (
	"time"

	chain_vo "github.com/nexuspay/nexuspay/pkg/domain/chain/value-objects"
	common "github.com/nexuspay/nexuspay/pkg/domain/common"
	"github.com/google/uuid"
)

type PaymasterStatus string

const (
	PaymasterStatusPending PaymasterStatus = "pending" // predicted address recorded, deploy tx not yet confirmed
	PaymasterStatusActive  PaymasterStatus = "active"
	PaymasterStatusFrozen  PaymasterStatus = "frozen" // §4.3 cascade on project soft-delete
)

// ProjectPaymaster is unique on (ProjectID, Chain). Address is the CREATE2
// counterfactual prediction, recorded before the deploy tx confirms so users
// can fund it while the factory call is still pending.
type ProjectPaymaster struct {
	common.BaseEntity `bson:",inline"`
	Chain        chain_vo.ChainID `bson:"chain"`
	Address      string           `bson:"address"`
	EncryptedKey string           `bson:"encrypted_key"` // AEAD-sealed signing key for the paymaster keypair
	DeployTxHash string           `bson:"deploy_tx_hash,omitempty"`
	Status       PaymasterStatus  `bson:"status"`
}

func NewProjectPaymaster(projectID uuid.UUID, chain chain_vo.ChainID, address string, encryptedKey string) *ProjectPaymaster {
	return &ProjectPaymaster{
		BaseEntity:   common.NewEntity(projectID),
		Chain:        chain,
		Address:      address,
		EncryptedKey: encryptedKey,
		Status:       PaymasterStatusPending,
	}
}

const (
	DefaultLowBalanceThresholdUsd = 10.0
	DefaultHardFloorUsd           = 1.0
)

// PaymasterBalance is the cached on-chain balance, unique on (ProjectID, Chain),
// refreshed by a background worker at most every §4.6 interval and on-demand
// via ?refresh=true.
type PaymasterBalance struct {
	ProjectID     uuid.UUID        `bson:"project_id"`
	Chain         chain_vo.ChainID `bson:"chain"`
	Address       string           `bson:"address"`
	BalanceNative string           `bson:"balance_native"` // human-readable decimal string
	BalanceWei    string           `bson:"balance_wei"`    // raw integer string, chain-native unit (wei or lamports)
	BalanceUsd    float64          `bson:"balance_usd"`
	TokenPriceUsd float64          `bson:"token_price_usd"`
	LastUpdated   time.Time        `bson:"last_updated"`
	LastTxHash    string           `bson:"last_tx_hash,omitempty"`
}

func (b *PaymasterBalance) IsBelowLowThreshold(thresholdUsd float64) bool {
	return b.BalanceUsd < thresholdUsd
}

func (b *PaymasterBalance) IsBelowHardFloor(floorUsd float64) bool {
	return b.BalanceUsd < floorUsd
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type OperationType string

const (
	OpWalletDeploy        OperationType = "wallet_deploy"
	OpTransactionSponsor  OperationType = "transaction_sponsor"
	OpContractInteraction OperationType = "contract_interaction"
)

// PaymasterPayment is append-only: status transitions pending -> confirmed|failed
// and is terminal once reached (§3). Pre-recorded with a client-generated id
// before submission so the receipt poller can patch it on confirmation.
type PaymasterPayment struct {
	common.BaseEntity `bson:",inline"`
	PaymasterAddress  string           `bson:"paymaster_address"`
	Chain             chain_vo.ChainID `bson:"chain"`
	Amount            string           `bson:"amount,omitempty"` // decimal string in native unit
	AmountWei         string           `bson:"amount_wei,omitempty"`
	GasForAddress     string           `bson:"gas_for_address,omitempty"`
	TxHash            string           `bson:"tx_hash,omitempty"` // unique
	BlockNumber       uint64           `bson:"block_number,omitempty"`
	GasPrice          string           `bson:"gas_price,omitempty"`
	GasUsed           uint64           `bson:"gas_used,omitempty"`
	UsdValue          float64          `bson:"usd_value,omitempty"`
	OperationType     OperationType    `bson:"operation_type"`
	UserOperationHash string           `bson:"user_operation_hash,omitempty"`
	Status            PaymentStatus    `bson:"status"`
}

func NewPendingPayment(id uuid.UUID, projectID uuid.UUID, paymasterAddress string, chain chain_vo.ChainID, opType OperationType, predictedAmountWei string) *PaymasterPayment {
	p := &PaymasterPayment{
		BaseEntity:        common.NewEntity(projectID),
		PaymasterAddress:  paymasterAddress,
		Chain:             chain,
		AmountWei:         predictedAmountWei,
		OperationType:     opType,
		Status:            PaymentStatusPending,
	}
	p.ID = id
	return p
}

// Confirm is the one allowed non-terminal -> terminal transition; calling it
// twice, or calling it on an already-terminal payment, is a caller bug.
func (p *PaymasterPayment) Confirm(txHash string, blockNumber uint64, gasPrice string, gasUsed uint64, amountWei string, usdValue float64) {
	p.TxHash = txHash
	p.BlockNumber = blockNumber
	p.GasPrice = gasPrice
	p.GasUsed = gasUsed
	p.AmountWei = amountWei
	p.UsdValue = usdValue
	p.Status = PaymentStatusConfirmed
}

func (p *PaymasterPayment) Fail() {
	p.Status = PaymentStatusFailed
}

func (p *PaymasterPayment) IsTerminal() bool {
	return p.Status == PaymentStatusConfirmed || p.Status == PaymentStatusFailed
}
