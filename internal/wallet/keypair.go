// Package wallet loads keypairs and builds, submits and confirms the
// transactions the CLI sends.
package wallet

import (
	"errors"
	"fmt"
	"math/big"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for SOL amounts that are not a positive
// multiple of one lamport within the uint64 range.
var ErrInvalidAmount = errors.New("invalid amount")

var maxLamports = decimal.NewFromBigInt(new(big.Int).SetUint64(^uint64(0)), 0)

// LoadKeypair reads a solana-keygen JSON keypair file.
func LoadKeypair(path string) (solanago.PrivateKey, error) {
	key, err := solanago.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keypair file %s: %w", path, err)
	}
	return key, nil
}

// NewMintKeypair generates a fresh keypair for a mint account.
func NewMintKeypair() (solanago.PrivateKey, error) {
	return solanago.NewRandomPrivateKey()
}

// ParseSOL converts a decimal SOL amount such as "0.5" into lamports.
func ParseSOL(s string) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s)
	}
	lamports := d.Shift(9)
	switch {
	case !lamports.IsPositive():
		return 0, fmt.Errorf("%w: %s must be greater than zero", ErrInvalidAmount, s)
	case !lamports.Equal(lamports.Truncate(0)):
		return 0, fmt.Errorf("%w: %s has more than 9 decimal places", ErrInvalidAmount, s)
	case lamports.GreaterThan(maxLamports):
		return 0, fmt.Errorf("%w: %s is too large", ErrInvalidAmount, s)
	}
	return lamports.BigInt().Uint64(), nil
}
