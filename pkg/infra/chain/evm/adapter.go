// Package evm implements the ChainAdapter port for ERC-4337 EVM chains.
// The WalletFactory/PaymasterFactory/EntryPoint contracts themselves are
// out of scope (spec.md §1) — this adapter only predicts CREATE2 addresses
// and submits/polls through an RPC client, exactly the boundary §4.8 draws.
package evm

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	chain_out "github.com/nexuspay/nexuspay/pkg/domain/chain/ports/out"
	chain_vo "github.com/nexuspay/nexuspay/pkg/domain/chain/value-objects"
)

// RPCClient is the narrow surface this adapter needs from an EVM JSON-RPC
// client; kept as a small port so tests can fake it without a live node.
type RPCClient interface {
	SendRawTransaction(ctx context.Context, to gethcommon.Address, data []byte) (txHash string, err error)
	BalanceAt(ctx context.Context, address gethcommon.Address) (*big.Int, error)
	TransactionReceipt(ctx context.Context, txHash string) (*chain_out.Receipt, error)
}

type Adapter struct {
	cfg    chain_vo.ChainConfig
	client RPCClient

	mu      sync.Mutex
	pending map[string]chain_out.UserOperation
}

func NewAdapter(cfg chain_vo.ChainConfig, client RPCClient) *Adapter {
	return &Adapter{cfg: cfg, client: client, pending: map[string]chain_out.UserOperation{}}
}

func (a *Adapter) ChainID() chain_vo.ChainID { return a.cfg.ChainID }

// create2Address implements keccak256(0xff ++ factory ++ salt ++ initCodeHash)[12:],
// the standard CREATE2 formula. initCodeHash binds the owner address into the
// minimal-proxy bytecode hash the real WalletFactory would use; since the
// factory bytecode is an external collaborator (§1), the owner-keyed hash
// stands in for "the bytecode this owner's proxy would deploy with".
func create2Address(factory gethcommon.Address, salt [32]byte, initCodeHash [32]byte) gethcommon.Address {
	data := make([]byte, 0, 85)
	data = append(data, 0xff)
	data = append(data, factory.Bytes()...)
	data = append(data, salt[:]...)
	data = append(data, initCodeHash[:]...)
	hash := crypto.Keccak256(data)
	var addr gethcommon.Address
	copy(addr[:], hash[12:])
	return addr
}

func ownerInitCodeHash(owner string) [32]byte {
	var h [32]byte
	copy(h[:], crypto.Keccak256([]byte("nexuspay:wallet-proxy:"+owner)))
	return h
}

func (a *Adapter) PredictWalletAddress(ctx context.Context, owner string, salt [32]byte) (string, error) {
	if a.cfg.WalletFactoryAddr == "" {
		return "", fmt.Errorf("evm(%s): no wallet factory configured", a.cfg.ChainID)
	}
	factory := gethcommon.HexToAddress(a.cfg.WalletFactoryAddr)
	addr := create2Address(factory, salt, ownerInitCodeHash(owner))
	return addr.Hex(), nil
}

func (a *Adapter) PredictPaymasterAddress(ctx context.Context, salt [32]byte) (string, error) {
	if a.cfg.PaymasterFactoryAddr == "" {
		return "", fmt.Errorf("evm(%s): no paymaster factory configured", a.cfg.ChainID)
	}
	factory := gethcommon.HexToAddress(a.cfg.PaymasterFactoryAddr)
	var initCodeHash [32]byte
	copy(initCodeHash[:], crypto.Keccak256([]byte("nexuspay:paymaster-proxy")))
	addr := create2Address(factory, salt, initCodeHash)
	return addr.Hex(), nil
}

func (a *Adapter) DeployWallet(ctx context.Context, owner string, salt [32]byte, paymaster *chain_out.PaymasterData) (string, error) {
	factory := gethcommon.HexToAddress(a.cfg.WalletFactoryAddr)
	callData := append([]byte{}, salt[:]...)
	callData = append(callData, []byte(owner)...)
	txHash, err := a.client.SendRawTransaction(ctx, factory, callData)
	if err != nil {
		return "", fmt.Errorf("evm(%s) deploy wallet: %w", a.cfg.ChainID, err)
	}
	return txHash, nil
}

func (a *Adapter) DeployPaymaster(ctx context.Context, salt [32]byte) (string, string, error) {
	factory := gethcommon.HexToAddress(a.cfg.PaymasterFactoryAddr)
	predicted, err := a.PredictPaymasterAddress(ctx, salt)
	if err != nil {
		return "", "", err
	}
	txHash, err := a.client.SendRawTransaction(ctx, factory, salt[:])
	if err != nil {
		return "", "", fmt.Errorf("evm(%s) deploy paymaster: %w", a.cfg.ChainID, err)
	}
	return predicted, txHash, nil
}

func (a *Adapter) SubmitSponsoredOp(ctx context.Context, op chain_out.UserOperation, paymaster chain_out.PaymasterData) (string, error) {
	entryPoint := gethcommon.HexToAddress(a.cfg.EntryPointAddr)
	txHash, err := a.client.SendRawTransaction(ctx, entryPoint, op.CallData)
	if err != nil {
		return "", fmt.Errorf("evm(%s) submit sponsored op: %w", a.cfg.ChainID, err)
	}
	a.mu.Lock()
	a.pending[txHash] = op
	a.mu.Unlock()
	return txHash, nil
}

func (a *Adapter) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	return a.client.BalanceAt(ctx, gethcommon.HexToAddress(address))
}

func (a *Adapter) GetReceipt(ctx context.Context, txHash string) (*chain_out.Receipt, error) {
	return a.client.TransactionReceipt(ctx, txHash)
}
