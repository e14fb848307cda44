// Package stub provides in-memory substitutes for the node gateway, plus
// helpers that encode SPL account layouts for tests.
package stub

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"

	solanago "github.com/gagliardetto/solana-go"

	"solana-cli/internal/solana"
)

// ErrNotFound is returned for mints the stub knows nothing about.
var ErrNotFound = errors.New("not found")

// Chain serves account reads from maps.
type Chain struct {
	Accounts map[string]*solana.AccountInfo
	Largest  map[string][]solana.TokenAccountBalance
	Supply   map[string]*solana.TokenAmount

	// Errors forces a method (by RPC name) to fail.
	Errors map[string]error
	// Calls counts invocations by RPC name.
	Calls map[string]int
}

// NewChain creates an empty stub chain.
func NewChain() *Chain {
	return &Chain{
		Accounts: make(map[string]*solana.AccountInfo),
		Largest:  make(map[string][]solana.TokenAccountBalance),
		Supply:   make(map[string]*solana.TokenAmount),
		Errors:   make(map[string]error),
		Calls:    make(map[string]int),
	}
}

func (c *Chain) hit(method string) error {
	c.Calls[method]++
	return c.Errors[method]
}

// GetAccountInfo returns the stored account or nil.
func (c *Chain) GetAccountInfo(_ context.Context, pubkey string) (*solana.AccountInfo, error) {
	if err := c.hit("getAccountInfo"); err != nil {
		return nil, err
	}
	return c.Accounts[pubkey], nil
}

// GetMultipleAccounts returns stored accounts in request order.
func (c *Chain) GetMultipleAccounts(_ context.Context, pubkeys []string) ([]*solana.AccountInfo, error) {
	if err := c.hit("getMultipleAccounts"); err != nil {
		return nil, err
	}
	out := make([]*solana.AccountInfo, len(pubkeys))
	for i, k := range pubkeys {
		out[i] = c.Accounts[k]
	}
	return out, nil
}

// GetTokenLargestAccounts returns the stored largest accounts of mint.
func (c *Chain) GetTokenLargestAccounts(_ context.Context, mint string) ([]solana.TokenAccountBalance, error) {
	if err := c.hit("getTokenLargestAccounts"); err != nil {
		return nil, err
	}
	return c.Largest[mint], nil
}

// GetTokenSupply returns the stored supply of mint.
func (c *Chain) GetTokenSupply(_ context.Context, mint string) (*solana.TokenAmount, error) {
	if err := c.hit("getTokenSupply"); err != nil {
		return nil, err
	}
	s, ok := c.Supply[mint]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// AddTokenAccount stores a token account and registers it as one of mint's
// largest accounts.
func (c *Chain) AddTokenAccount(address, mint, owner string, amount uint64) {
	c.Accounts[address] = &solana.AccountInfo{
		Lamports: 2_039_280,
		Owner:    solana.TokenProgramID.String(),
		Data:     TokenAccountData(mint, owner, amount),
		Space:    solana.TokenAccountSize,
	}
	c.Largest[mint] = append(c.Largest[mint], solana.TokenAccountBalance{
		Address:     address,
		TokenAmount: solana.TokenAmount{Amount: fmt.Sprint(amount)},
	})
}

// AddMint stores an initialized mint account.
func (c *Chain) AddMint(mint string, decimals uint8) {
	c.Accounts[mint] = &solana.AccountInfo{
		Lamports: 1_461_600,
		Owner:    solana.TokenProgramID.String(),
		Data:     MintData(decimals, true),
		Space:    solana.MintAccountSize,
	}
}

// TokenAccountData encodes an initialized SPL token account as base64.
func TokenAccountData(mint, owner string, amount uint64) string {
	b := make([]byte, 0, solana.TokenAccountSize)
	b = append(b, solanago.MustPublicKeyFromBase58(mint).Bytes()...)
	b = append(b, solanago.MustPublicKeyFromBase58(owner).Bytes()...)
	b = binary.LittleEndian.AppendUint64(b, amount)
	b = append(b, make([]byte, 4+32)...) // delegate: none
	b = append(b, 1)                     // state: initialized
	b = append(b, make([]byte, 4+8)...)  // is_native: none
	b = binary.LittleEndian.AppendUint64(b, 0)
	b = append(b, make([]byte, 4+32)...) // close_authority: none
	return base64.StdEncoding.EncodeToString(b)
}

// MintData encodes an SPL mint with no authorities as base64.
func MintData(decimals uint8, initialized bool) string {
	b := make([]byte, 0, solana.MintAccountSize)
	b = append(b, make([]byte, 4+32)...) // mint_authority: none
	b = binary.LittleEndian.AppendUint64(b, 1_000_000)
	b = append(b, decimals)
	if initialized {
		b = append(b, 1)
	} else {
		b = append(b, 0)
	}
	b = append(b, make([]byte, 4+32)...) // freeze_authority: none
	return base64.StdEncoding.EncodeToString(b)
}
