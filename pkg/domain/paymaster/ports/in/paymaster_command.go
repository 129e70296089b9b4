// Package in defines inbound ports for the paymaster engine (§4.6).
package in

import (
	"context"

	chain_vo "github.com/nexuspay/nexuspay/pkg/domain/chain/value-objects"
	paymaster_entities "github.com/nexuspay/nexuspay/pkg/domain/paymaster/entities"
	"github.com/google/uuid"
)

type FundingMethod string

const (
	FundingMethodSelfCustodial FundingMethod = "self_custodial"
	FundingMethodCard          FundingMethod = "card"
	FundingMethodBank          FundingMethod = "bank"
)

// FundResult is either a deposit address + QR payload (self-custodial) or a
// checkout URL (card/bank), never both (§4.6).
type FundResult struct {
	DepositAddress string
	QRPayload      string
	CheckoutURL    string
}

// SponsorRequest is what the wallet/chain layer asks the paymaster engine to
// pre-record and, on success, pay for.
type SponsorRequest struct {
	ProjectID          uuid.UUID
	Chain              chain_vo.ChainID
	OperationType      paymaster_entities.OperationType
	PredictedAmountWei string
	PaymentID          uuid.UUID
}

type PaymasterCommand interface {
	// ProvisionForProject deploys (or predicts) one paymaster per requested
	// chain, synchronously, during project creation (§4.3, §4.6).
	ProvisionForProject(ctx context.Context, projectID uuid.UUID, chains []chain_vo.ChainID) error
	RollbackProject(ctx context.Context, projectID uuid.UUID) error
	FreezeAllForProject(ctx context.Context, projectID uuid.UUID) error

	GetBalance(ctx context.Context, projectID uuid.UUID, chain chain_vo.ChainID, refresh bool) (*paymaster_entities.PaymasterBalance, error)
	RefreshAllBalances(ctx context.Context) error

	Fund(ctx context.Context, projectID uuid.UUID, chain chain_vo.ChainID, method FundingMethod, amountUsd float64) (*FundResult, error)

	// PreRecordPayment is called before a sponsored submission so the tx is
	// tracked even if the process crashes before the receipt arrives.
	PreRecordPayment(ctx context.Context, req SponsorRequest) (*paymaster_entities.PaymasterPayment, error)
	ConfirmPayment(ctx context.Context, paymentID uuid.UUID, txHash string, blockNumber uint64, gasPrice string, gasUsed uint64, amountWei string) error
	FailPayment(ctx context.Context, paymentID uuid.UUID) error

	TotalSpentUsd(ctx context.Context, projectID uuid.UUID, chain chain_vo.ChainID) (float64, error)

	// ListAddresses returns every chain's provisioned paymaster for a project.
	ListAddresses(ctx context.Context, projectID uuid.UUID) ([]*paymaster_entities.ProjectPaymaster, error)
	// ListPayments returns a chain's sponsored-payment ledger, paginated.
	ListPayments(ctx context.Context, projectID uuid.UUID, chain chain_vo.ChainID, page, limit int) ([]*paymaster_entities.PaymasterPayment, int, error)
}
