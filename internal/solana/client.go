// Package solana is the gateway to a Solana node's JSON-RPC surface plus the
// on-chain account layouts the CLI needs to decode.
package solana

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"solana-cli/internal/jsonrpc"
)

// maxMultipleAccounts is the node's limit for getMultipleAccounts.
const maxMultipleAccounts = 100

// Client issues Solana JSON-RPC calls at a fixed commitment.
type Client struct {
	rpc        *jsonrpc.Client
	commitment string
}

// NewClient creates a node client. An empty commitment means "confirmed".
func NewClient(rpc *jsonrpc.Client, commitment string) *Client {
	if commitment == "" {
		commitment = CommitmentConfirmed
	}
	return &Client{rpc: rpc, commitment: commitment}
}

// Commitment returns the commitment used for reads.
func (c *Client) Commitment() string {
	return c.commitment
}

type contextValue[T any] struct {
	Context struct {
		Slot uint64 `json:"slot"`
	} `json:"context"`
	Value T `json:"value"`
}

type rawAccount struct {
	Lamports   uint64   `json:"lamports"`
	Owner      string   `json:"owner"`
	Data       []string `json:"data"` // [base64_data, encoding]
	Executable bool     `json:"executable"`
	RentEpoch  uint64   `json:"rentEpoch"`
	Space      uint64   `json:"space"`
}

func (r *rawAccount) toInfo() *AccountInfo {
	if r == nil {
		return nil
	}
	info := &AccountInfo{
		Lamports:   r.Lamports,
		Owner:      r.Owner,
		Executable: r.Executable,
		RentEpoch:  r.RentEpoch,
		Space:      r.Space,
	}
	if len(r.Data) >= 1 {
		info.Data = r.Data[0]
	}
	return info
}

// GetBalance returns the lamport balance of pubkey.
func (c *Client) GetBalance(ctx context.Context, pubkey string) (uint64, error) {
	params := []interface{}{pubkey, map[string]interface{}{"commitment": c.commitment}}

	var result contextValue[uint64]
	if err := c.rpc.Call(ctx, "getBalance", params, &result); err != nil {
		return 0, fmt.Errorf("getBalance %s: %w", pubkey, err)
	}
	return result.Value, nil
}

// GetAccountInfo retrieves account info by public key.
// Returns nil if account not found.
func (c *Client) GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error) {
	params := []interface{}{
		pubkey,
		map[string]interface{}{
			"encoding":   "base64",
			"commitment": c.commitment,
		},
	}

	var result contextValue[*rawAccount]
	if err := c.rpc.Call(ctx, "getAccountInfo", params, &result); err != nil {
		return nil, fmt.Errorf("getAccountInfo %s: %w", pubkey, err)
	}
	return result.Value.toInfo(), nil
}

// GetMultipleAccounts retrieves accounts in request order; missing accounts are nil.
// Requests are chunked to the node's per-call limit.
func (c *Client) GetMultipleAccounts(ctx context.Context, pubkeys []string) ([]*AccountInfo, error) {
	out := make([]*AccountInfo, 0, len(pubkeys))
	for _, chunk := range lo.Chunk(pubkeys, maxMultipleAccounts) {
		params := []interface{}{
			chunk,
			map[string]interface{}{
				"encoding":   "base64",
				"commitment": c.commitment,
			},
		}

		var result contextValue[[]*rawAccount]
		if err := c.rpc.Call(ctx, "getMultipleAccounts", params, &result); err != nil {
			return nil, fmt.Errorf("getMultipleAccounts: %w", err)
		}
		if len(result.Value) != len(chunk) {
			return nil, fmt.Errorf("getMultipleAccounts: expected %d accounts, got %d", len(chunk), len(result.Value))
		}
		for _, raw := range result.Value {
			out = append(out, raw.toInfo())
		}
	}
	return out, nil
}

// GetTokenLargestAccounts returns the largest token accounts of mint.
func (c *Client) GetTokenLargestAccounts(ctx context.Context, mint string) ([]TokenAccountBalance, error) {
	params := []interface{}{mint, map[string]interface{}{"commitment": c.commitment}}

	var result contextValue[[]TokenAccountBalance]
	if err := c.rpc.Call(ctx, "getTokenLargestAccounts", params, &result); err != nil {
		return nil, fmt.Errorf("getTokenLargestAccounts %s: %w", mint, err)
	}
	return result.Value, nil
}

// GetTokenSupply returns the total supply of mint.
func (c *Client) GetTokenSupply(ctx context.Context, mint string) (*TokenAmount, error) {
	params := []interface{}{mint, map[string]interface{}{"commitment": c.commitment}}

	var result contextValue[TokenAmount]
	if err := c.rpc.Call(ctx, "getTokenSupply", params, &result); err != nil {
		return nil, fmt.Errorf("getTokenSupply %s: %w", mint, err)
	}
	return &result.Value, nil
}

// GetLatestBlockhash returns a recent blockhash for signing transactions.
func (c *Client) GetLatestBlockhash(ctx context.Context) (*Blockhash, error) {
	params := []interface{}{map[string]interface{}{"commitment": c.commitment}}

	var result contextValue[Blockhash]
	if err := c.rpc.Call(ctx, "getLatestBlockhash", params, &result); err != nil {
		return nil, fmt.Errorf("getLatestBlockhash: %w", err)
	}
	if result.Value.Blockhash == "" {
		return nil, fmt.Errorf("getLatestBlockhash: empty blockhash")
	}
	return &result.Value, nil
}

// GetMinimumBalanceForRentExemption returns the rent-exempt minimum for size bytes.
func (c *Client) GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	params := []interface{}{size, map[string]interface{}{"commitment": c.commitment}}

	var lamports uint64
	if err := c.rpc.Call(ctx, "getMinimumBalanceForRentExemption", params, &lamports); err != nil {
		return 0, fmt.Errorf("getMinimumBalanceForRentExemption(%d): %w", size, err)
	}
	return lamports, nil
}

// SendTransaction submits a signed, serialized transaction and returns its signature.
func (c *Client) SendTransaction(ctx context.Context, wire string) (string, error) {
	params := []interface{}{
		wire,
		map[string]interface{}{
			"encoding":            "base64",
			"preflightCommitment": c.commitment,
		},
	}

	var signature string
	if err := c.rpc.Call(ctx, "sendTransaction", params, &signature); err != nil {
		return "", fmt.Errorf("sendTransaction: %w", err)
	}
	return signature, nil
}

// GetSignatureStatuses returns statuses in request order; unknown signatures are nil.
func (c *Client) GetSignatureStatuses(ctx context.Context, signatures []string) ([]*SignatureStatus, error) {
	params := []interface{}{
		signatures,
		map[string]interface{}{"searchTransactionHistory": true},
	}

	var result contextValue[[]*SignatureStatus]
	if err := c.rpc.Call(ctx, "getSignatureStatuses", params, &result); err != nil {
		return nil, fmt.Errorf("getSignatureStatuses: %w", err)
	}
	return result.Value, nil
}
