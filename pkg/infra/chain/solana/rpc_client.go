package solana

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mr-tron/base58"
	chain_out "github.com/nexuspay/nexuspay/pkg/domain/chain/ports/out"
)

// JSONRPCClient talks Solana's JSON-RPC protocol directly over net/http.
// No Solana RPC SDK (e.g. gagliardetto/solana-go) appears in the example
// pack — only its base58 encoding helper does — so this follows the same
// plain net/http.Client pattern the teacher's own external adapters use
// (pkg/infra/adapters/crypto, pkg/infra/adapters/paypal) rather than
// introducing an unvalidated dependency.
type JSONRPCClient struct {
	endpoint   string
	httpClient *http.Client
}

func NewJSONRPCClient(endpoint string) *JSONRPCClient {
	return &JSONRPCClient{endpoint: endpoint, httpClient: &http.Client{Timeout: 15 * time.Second}}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *JSONRPCClient) call(ctx context.Context, method string, params []interface{}, out interface{}) error {
	reqBody, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("failed to marshal solana rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("failed to build solana rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("solana rpc request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("failed to decode solana rpc response: %w", err)
	}
	if parsed.Error != nil {
		return fmt.Errorf("solana rpc error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if out != nil {
		if err := json.Unmarshal(parsed.Result, out); err != nil {
			return fmt.Errorf("failed to decode solana rpc result: %w", err)
		}
	}
	return nil
}

// SendTransaction submits a pre-signed raw transaction (base64-encoded
// per the sendTransaction RPC method's default encoding) and returns its
// base58 signature.
func (c *JSONRPCClient) SendTransaction(ctx context.Context, rawTx []byte) (string, error) {
	encoded := base64.StdEncoding.EncodeToString(rawTx)
	var signature string
	params := []interface{}{encoded, map[string]interface{}{"encoding": "base64"}}
	if err := c.call(ctx, "sendTransaction", params, &signature); err != nil {
		return "", err
	}
	return signature, nil
}

func (c *JSONRPCClient) GetBalance(ctx context.Context, address string) (uint64, error) {
	if _, err := base58.Decode(address); err != nil {
		return 0, fmt.Errorf("invalid solana address: %w", err)
	}

	var result struct {
		Value uint64 `json:"value"`
	}
	if err := c.call(ctx, "getBalance", []interface{}{address}, &result); err != nil {
		return 0, err
	}
	return result.Value, nil
}

func (c *JSONRPCClient) GetSignatureStatus(ctx context.Context, signature string) (*chain_out.Receipt, error) {
	var result struct {
		Value []*struct {
			Slot               uint64 `json:"slot"`
			ConfirmationStatus string `json:"confirmationStatus"`
			Err                interface{} `json:"err"`
		} `json:"value"`
	}
	params := []interface{}{[]string{signature}}
	if err := c.call(ctx, "getSignatureStatuses", params, &result); err != nil {
		return nil, err
	}

	if len(result.Value) == 0 || result.Value[0] == nil {
		return &chain_out.Receipt{Status: chain_out.ReceiptPending}, nil
	}

	status := result.Value[0]
	if status.Err != nil {
		return &chain_out.Receipt{Status: chain_out.ReceiptFailed, BlockNumber: status.Slot}, nil
	}
	if status.ConfirmationStatus == "confirmed" || status.ConfirmationStatus == "finalized" {
		return &chain_out.Receipt{Status: chain_out.ReceiptConfirmed, BlockNumber: status.Slot}, nil
	}
	return &chain_out.Receipt{Status: chain_out.ReceiptPending, BlockNumber: status.Slot}, nil
}

var _ RPCClient = (*JSONRPCClient)(nil)
