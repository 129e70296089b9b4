// Package wallet_in defines inbound query interfaces for wallet operations.
package wallet_in

import (
	"context"

	wallet_entities "github.com/nexuspay/nexuspay/pkg/domain/wallet/entities"
	"github.com/google/uuid"
)

// WalletQuery is the single in-port for wallet reads. Read endpoints return
// addresses even when undeployed (counterfactual), annotated with per-chain
// deployment status (§4.5).
type WalletQuery interface {
	GetWallet(ctx context.Context, projectID, walletID uuid.UUID) (*wallet_entities.Wallet, error)
	GetBySocialID(ctx context.Context, projectID uuid.UUID, socialID, socialType string) (*wallet_entities.Wallet, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, page, limit int) ([]*wallet_entities.Wallet, int, error)
}
