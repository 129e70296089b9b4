package wallet_entities

import (
	chain_vo "github.com/nexuspay/nexuspay/pkg/domain/chain/value-objects"
	common "github.com/nexuspay/nexuspay/pkg/domain/common"
	wallet_vo "github.com/nexuspay/nexuspay/pkg/domain/wallet/value-objects"
	"github.com/google/uuid"
)

// Wallet is spec.md §3's Wallet, unique on (projectId, socialId, socialType).
// Addresses are a pure function of those three inputs plus the chain
// registry and are therefore stable across re-reads; only deployment state
// is mutable (§4.5).
type Wallet struct {
	common.BaseEntity `bson:",inline"`

	SocialID   string `bson:"social_id"`
	SocialType string `bson:"social_type"`

	AddressesByChain        map[chain_vo.ChainID]string                    `bson:"addresses_by_chain"`
	DeploymentStatusByChain map[chain_vo.ChainID]wallet_vo.ChainDeployment `bson:"deployment_status_by_chain"`
}

func NewWallet(projectID uuid.UUID, socialID, socialType string) *Wallet {
	return &Wallet{
		BaseEntity:              common.NewEntity(projectID),
		SocialID:                socialID,
		SocialType:              socialType,
		AddressesByChain:        make(map[chain_vo.ChainID]string),
		DeploymentStatusByChain: make(map[chain_vo.ChainID]wallet_vo.ChainDeployment),
	}
}

func (w *Wallet) SetAddress(chain chain_vo.ChainID, address string) {
	w.AddressesByChain[chain] = address
	if _, ok := w.DeploymentStatusByChain[chain]; !ok {
		w.DeploymentStatusByChain[chain] = wallet_vo.ChainDeployment{Status: wallet_vo.StatusUndeployed}
	}
}

func (w *Wallet) Address(chain chain_vo.ChainID) (string, bool) {
	addr, ok := w.AddressesByChain[chain]
	return addr, ok
}

func (w *Wallet) Deployment(chain chain_vo.ChainID) wallet_vo.ChainDeployment {
	return w.DeploymentStatusByChain[chain]
}

func (w *Wallet) SetDeployment(chain chain_vo.ChainID, d wallet_vo.ChainDeployment) {
	w.DeploymentStatusByChain[chain] = d
}
