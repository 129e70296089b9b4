// Package wallet_out defines outbound repository interfaces for wallet
// persistence and chain access.
package wallet_out

import (
	"context"

	chain_vo "github.com/nexuspay/nexuspay/pkg/domain/chain/value-objects"
	wallet_entities "github.com/nexuspay/nexuspay/pkg/domain/wallet/entities"
	wallet_vo "github.com/nexuspay/nexuspay/pkg/domain/wallet/value-objects"
	"github.com/google/uuid"
)

type WalletRepository interface {
	Create(ctx context.Context, w *wallet_entities.Wallet) error
	// CompareAndSwapDeployment performs the conditional transition that
	// enforces at-most-one-concurrent-deploy-per-(wallet,chain) (§4.5): it
	// applies next only if the currently stored status for chain still
	// equals expectedStatus, and reports whether the swap took effect.
	CompareAndSwapDeployment(ctx context.Context, walletID uuid.UUID, chain chain_vo.ChainID, expectedStatus wallet_vo.DeploymentStatus, next wallet_vo.ChainDeployment) (bool, error)
	Update(ctx context.Context, w *wallet_entities.Wallet) error
	FindByID(ctx context.Context, projectID, id uuid.UUID) (*wallet_entities.Wallet, error)
	FindBySocialID(ctx context.Context, projectID uuid.UUID, socialID, socialType string) (*wallet_entities.Wallet, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, page, limit int) ([]*wallet_entities.Wallet, int, error)
	// ListPendingDeploys feeds the receipt poller background worker.
	ListPendingDeploys(ctx context.Context) ([]*wallet_entities.Wallet, error)
}
