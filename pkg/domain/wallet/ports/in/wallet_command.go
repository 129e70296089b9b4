// Package wallet_in defines inbound command interfaces for wallet operations.
package wallet_in

import (
	"context"

	chain_vo "github.com/nexuspay/nexuspay/pkg/domain/chain/value-objects"
	wallet_entities "github.com/nexuspay/nexuspay/pkg/domain/wallet/entities"
	"github.com/google/uuid"
)

type CreateWalletInput struct {
	ProjectID  uuid.UUID
	SocialID   string
	SocialType string
}

type DeployWalletInput struct {
	ProjectID uuid.UUID
	WalletID  uuid.UUID
	Chain     chain_vo.ChainID
}

// DeployWalletResult reports the transition observed: a fresh pending
// deploy, an already-pending deploy (returned as-is), or a no-op because the
// wallet is already deployed on that chain (§4.5).
type DeployWalletResult struct {
	Wallet    *wallet_entities.Wallet
	TxHash    string
	AlreadyDone bool
}

// WalletCommand is the single in-port for wallet creation and deployment.
type WalletCommand interface {
	CreateWallet(ctx context.Context, input CreateWalletInput) (*wallet_entities.Wallet, error)
	DeployWallet(ctx context.Context, input DeployWalletInput) (*DeployWalletResult, error)
}
