package solana

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = 1_000_000_000

// Commitment levels accepted by the node.
const (
	CommitmentProcessed = "processed"
	CommitmentConfirmed = "confirmed"
	CommitmentFinalized = "finalized"
)

// ErrAccountNotFound is returned when an account does not exist on chain.
var ErrAccountNotFound = errors.New("account not found")

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Data       string `json:"data"` // base64 encoded
	Executable bool   `json:"executable"`
	RentEpoch  uint64 `json:"rentEpoch"`
	Space      uint64 `json:"space"`
}

// DataBytes decodes the base64 account data.
func (a *AccountInfo) DataBytes() ([]byte, error) {
	if a == nil || a.Data == "" {
		return nil, nil
	}
	b, err := base64.StdEncoding.DecodeString(a.Data)
	if err != nil {
		return nil, fmt.Errorf("decode account data: %w", err)
	}
	return b, nil
}

// TokenAmount is the amount shape returned by getTokenSupply and friends.
// Amount holds raw base units as a decimal string.
type TokenAmount struct {
	Amount         string   `json:"amount"`
	Decimals       uint8    `json:"decimals"`
	UIAmount       *float64 `json:"uiAmount"`
	UIAmountString string   `json:"uiAmountString"`
}

// Raw parses Amount as an integer number of base units.
func (t TokenAmount) Raw() (decimal.Decimal, error) {
	if t.Amount == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(t.Amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse token amount %q: %w", t.Amount, err)
	}
	return d, nil
}

// TokenAccountBalance is one entry of getTokenLargestAccounts.
type TokenAccountBalance struct {
	Address string `json:"address"`
	TokenAmount
}

// Blockhash is the value of getLatestBlockhash.
type Blockhash struct {
	Blockhash            string `json:"blockhash"`
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
}

// SignatureStatus is one entry of getSignatureStatuses. Nil entries mean unknown.
type SignatureStatus struct {
	Slot               uint64      `json:"slot"`
	Confirmations      *uint64     `json:"confirmations"`
	Err                interface{} `json:"err"`
	ConfirmationStatus string      `json:"confirmationStatus"`
}

// Reached reports whether the status satisfies the requested commitment.
func (s *SignatureStatus) Reached(commitment string) bool {
	if s == nil {
		return false
	}
	return commitmentRank(s.ConfirmationStatus) >= commitmentRank(commitment)
}

func commitmentRank(c string) int {
	switch c {
	case CommitmentProcessed:
		return 1
	case CommitmentConfirmed:
		return 2
	case CommitmentFinalized:
		return 3
	default:
		return 0
	}
}

// FormatSOL renders lamports as "◎<sol>" with nine fractional digits.
func FormatSOL(lamports uint64) string {
	return "◎" + Lamports(lamports).Shift(-9).StringFixed(9)
}

// Lamports converts a lamport count to an integer decimal.
func Lamports(lamports uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), 0)
}
