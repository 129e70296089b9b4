package out

import (
	"context"
	"math/big"

	chain_vo "github.com/nexuspay/nexuspay/pkg/domain/chain/value-objects"
)

// ReceiptStatus is the on-chain confirmation state returned by GetReceipt.
type ReceiptStatus string

const (
	ReceiptPending   ReceiptStatus = "pending"
	ReceiptConfirmed ReceiptStatus = "confirmed"
	ReceiptFailed    ReceiptStatus = "failed"
)

type Receipt struct {
	Status      ReceiptStatus
	BlockNumber uint64
	GasUsed     uint64
	GasPrice    *big.Int
}

// PaymasterData carries the sponsor address and any chain-specific extra
// payload a sponsored operation needs.
type PaymasterData struct {
	PaymasterAddress string
}

// UserOperation is a minimal, chain-agnostic description of the call the
// Wallet/Paymaster services ask a ChainAdapter to submit.
type UserOperation struct {
	Owner      string
	Salt       [32]byte
	CallData   []byte
	OpType     string // "wallet_deploy" | "sponsored_call"
}

// ChainAdapter is the uniform per-chain interface from spec.md §4.8. EVM
// adapters target the ERC-4337 EntryPoint; the Solana adapter targets the
// project's deployed programs.
type ChainAdapter interface {
	ChainID() chain_vo.ChainID

	// PredictWalletAddress computes the CREATE2-style counterfactual address
	// for (owner, salt) without any on-chain call.
	PredictWalletAddress(ctx context.Context, owner string, salt [32]byte) (string, error)

	// DeployWallet submits the factory call that deploys the smart wallet,
	// optionally sponsored by paymaster. Returns the submitted tx hash.
	DeployWallet(ctx context.Context, owner string, salt [32]byte, paymaster *PaymasterData) (txHash string, err error)

	// SubmitSponsoredOp submits a user operation paid for by paymaster.
	SubmitSponsoredOp(ctx context.Context, op UserOperation, paymaster PaymasterData) (txHash string, err error)

	// GetBalance returns the native balance, in wei (EVM) or lamports (Solana).
	GetBalance(ctx context.Context, address string) (*big.Int, error)

	// GetReceipt polls for a transaction's confirmation state.
	GetReceipt(ctx context.Context, txHash string) (*Receipt, error)

	// PredictPaymasterAddress computes the CREATE2-style counterfactual
	// address for a project's paymaster before it is deployed (§4.6).
	PredictPaymasterAddress(ctx context.Context, salt [32]byte) (string, error)

	// DeployPaymaster deploys a minimal proxy through the PaymasterFactory.
	DeployPaymaster(ctx context.Context, salt [32]byte) (address string, txHash string, err error)
}
