package evm

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	chain_out "github.com/nexuspay/nexuspay/pkg/domain/chain/ports/out"
)

// EthClient wraps go-ethereum's *ethclient.Client to satisfy the adapter's
// narrow RPCClient port, signing every submitted transaction with signerKey
// (the project's derived owner/paymaster signing key, never persisted).
type EthClient struct {
	rpc       *ethclient.Client
	chainID   *big.Int
	signerKey *ecdsa.PrivateKey
	from      gethcommon.Address
}

// DialEthClient connects to rpcURL and binds signerKeyHex (no 0x prefix) as
// the account every SendRawTransaction call signs with.
func DialEthClient(ctx context.Context, rpcURL string, signerKeyHex string) (*EthClient, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial EVM RPC endpoint: %w", err)
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch EVM chain id: %w", err)
	}

	key, err := crypto.HexToECDSA(signerKeyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to parse EVM signer key: %w", err)
	}

	return &EthClient{
		rpc:       client,
		chainID:   chainID,
		signerKey: key,
		from:      crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

func (e *EthClient) SendRawTransaction(ctx context.Context, to gethcommon.Address, data []byte) (string, error) {
	nonce, err := e.rpc.PendingNonceAt(ctx, e.from)
	if err != nil {
		return "", fmt.Errorf("failed to fetch nonce: %w", err)
	}
	gasPrice, err := e.rpc.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to suggest gas price: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    big.NewInt(0),
		Gas:      300_000,
		GasPrice: gasPrice,
		Data:     data,
	})

	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(e.chainID), e.signerKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := e.rpc.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("failed to broadcast transaction: %w", err)
	}
	return signedTx.Hash().Hex(), nil
}

func (e *EthClient) BalanceAt(ctx context.Context, address gethcommon.Address) (*big.Int, error) {
	return e.rpc.BalanceAt(ctx, address, nil)
}

func (e *EthClient) TransactionReceipt(ctx context.Context, txHash string) (*chain_out.Receipt, error) {
	receipt, err := e.rpc.TransactionReceipt(ctx, gethcommon.HexToHash(txHash))
	if err != nil {
		if err == ethclient.NotFound {
			return &chain_out.Receipt{Status: chain_out.ReceiptPending}, nil
		}
		return nil, fmt.Errorf("failed to fetch transaction receipt: %w", err)
	}

	status := chain_out.ReceiptFailed
	if receipt.Status == types.ReceiptStatusSuccessful {
		status = chain_out.ReceiptConfirmed
	}

	tx, _, err := e.rpc.TransactionByHash(ctx, gethcommon.HexToHash(txHash))
	gasPrice := big.NewInt(0)
	if err == nil && tx != nil {
		gasPrice = tx.GasPrice()
	}

	return &chain_out.Receipt{
		Status:      status,
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
		GasPrice:    gasPrice,
	}, nil
}

var _ RPCClient = (*EthClient)(nil)
