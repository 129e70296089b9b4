// Package out defines outbound ports for the paymaster engine: persistence,
// the chain adapters it submits through, a token-price oracle, and the
// webhook/email collaborators it notifies on low balance.
package out

import (
	"context"

	chain_vo "github.com/nexuspay/nexuspay/pkg/domain/chain/value-objects"
	paymaster_entities "github.com/nexuspay/nexuspay/pkg/domain/paymaster/entities"
	"github.com/google/uuid"
)

type PaymasterRepository interface {
	Create(ctx context.Context, p *paymaster_entities.ProjectPaymaster) error
	Update(ctx context.Context, p *paymaster_entities.ProjectPaymaster) error
	FindByProjectAndChain(ctx context.Context, projectID uuid.UUID, chain chain_vo.ChainID) (*paymaster_entities.ProjectPaymaster, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*paymaster_entities.ProjectPaymaster, error)
	// ListAll feeds the background balance refresher (§4.6).
	ListAll(ctx context.Context) ([]*paymaster_entities.ProjectPaymaster, error)
}

type BalanceRepository interface {
	Upsert(ctx context.Context, b *paymaster_entities.PaymasterBalance) error
	FindByProjectAndChain(ctx context.Context, projectID uuid.UUID, chain chain_vo.ChainID) (*paymaster_entities.PaymasterBalance, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *paymaster_entities.PaymasterPayment) error
	// Patch applies the receipt poller's confirmation/failure terminal update.
	Patch(ctx context.Context, p *paymaster_entities.PaymasterPayment) error
	FindByID(ctx context.Context, id uuid.UUID) (*paymaster_entities.PaymasterPayment, error)
	FindByTxHash(ctx context.Context, txHash string) (*paymaster_entities.PaymasterPayment, error)
	ListPending(ctx context.Context) ([]*paymaster_entities.PaymasterPayment, error)
	// TotalConfirmedUsd sums confirmed payments for a project, optionally
	// scoped to one chain; spend is monotonic (§4.6).
	TotalConfirmedUsd(ctx context.Context, projectID uuid.UUID, chain chain_vo.ChainID) (float64, error)
	// ListByProjectAndChain feeds the §6 `GET .../paymaster/transactions`
	// route, newest first.
	ListByProjectAndChain(ctx context.Context, projectID uuid.UUID, chain chain_vo.ChainID, page, limit int) ([]*paymaster_entities.PaymasterPayment, int, error)
}

// PriceOracle returns the USD price of one unit of a chain's native token.
type PriceOracle interface {
	PriceUsd(ctx context.Context, chain chain_vo.ChainID) (float64, error)
}

// LowBalanceNotifier emits the §4.6 webhook when a paymaster balance crosses
// the configured low threshold.
type LowBalanceNotifier interface {
	NotifyLowBalance(ctx context.Context, projectID uuid.UUID, chain chain_vo.ChainID, balanceUsd float64) error
}

// PaymentConfirmedNotifier emits the §6 `paymaster.payment_confirmed`
// webhook once a sponsored payment's receipt lands.
type PaymentConfirmedNotifier interface {
	NotifyPaymentConfirmed(ctx context.Context, payment *paymaster_entities.PaymasterPayment) error
}

// Encryptor wraps the project-scoped AEAD used to seal/open the paymaster
// signing key (pkg/infra/crypto.SecretBox satisfies this).
type Encryptor interface {
	Seal(projectID, plaintext string) (string, error)
	Open(projectID, encoded string) (string, error)
}

// FundingGateway delegates card/bank funding to an external payment
// collaborator (§4.6 fund(), method "card"/"bank").
type FundingGateway interface {
	CreateFundingIntent(ctx context.Context, projectID uuid.UUID, chain chain_vo.ChainID, amountUsd float64) (intentID string, checkoutURL string, err error)
}
