package wallet_vo

import "github.com/google/uuid"

// DeploymentStatus is the per-chain wallet deployment state machine (§4.5):
// undeployed -> pending -> deployed | failed, with failed retryable back to
// pending.
type DeploymentStatus string

const (
	StatusUndeployed DeploymentStatus = "undeployed"
	StatusPending    DeploymentStatus = "pending"
	StatusDeployed   DeploymentStatus = "deployed"
	StatusFailed     DeploymentStatus = "failed"
)

type ChainDeployment struct {
	Status      DeploymentStatus `bson:"status"`
	TxHash      string           `bson:"tx_hash,omitempty"`
	BlockNumber uint64           `bson:"block_number,omitempty"`
	Error       string           `bson:"error,omitempty"`
	// LogID and PaymentID let the receipt poller reconcile a pending deploy
	// back to its TransactionLog row and, when sponsored, its
	// PaymasterPayment row (§4.5, §4.6) without re-deriving either.
	LogID     uuid.UUID `bson:"log_id,omitempty"`
	PaymentID uuid.UUID `bson:"payment_id,omitempty"`
}

// CanTransitionToPending enforces the at-most-one-concurrent-deploy
// invariant: only undeployed or failed may move to pending.
func (d ChainDeployment) CanTransitionToPending() bool {
	return d.Status == StatusUndeployed || d.Status == StatusFailed
}
