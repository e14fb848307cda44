package solana

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
)

// SPL Token account sizes. Token-2022 accounts carry extensions after the base layout.
const (
	TokenAccountSize = 165
	MintAccountSize  = 82
)

// Program IDs the CLI recognises when decoding accounts.
var (
	TokenProgramID     = solanago.TokenProgramID
	Token2022ProgramID = solanago.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
)

// IsTokenProgram reports whether owner is the SPL Token or Token-2022 program.
func IsTokenProgram(owner string) bool {
	return owner == TokenProgramID.String() || owner == Token2022ProgramID.String()
}

// DecodeTokenAccount decodes the base SPL token account layout.
func DecodeTokenAccount(data []byte) (*token.Account, error) {
	if len(data) < TokenAccountSize {
		return nil, fmt.Errorf("token account data too short: %d", len(data))
	}
	var acc token.Account
	if err := bin.NewBinDecoder(data[:TokenAccountSize]).Decode(&acc); err != nil {
		return nil, fmt.Errorf("decode token account: %w", err)
	}
	return &acc, nil
}

// DecodeMint decodes the base SPL mint layout.
func DecodeMint(data []byte) (*token.Mint, error) {
	if len(data) < MintAccountSize {
		return nil, fmt.Errorf("mint data too short: %d", len(data))
	}
	var mint token.Mint
	if err := bin.NewBinDecoder(data[:MintAccountSize]).Decode(&mint); err != nil {
		return nil, fmt.Errorf("decode mint: %w", err)
	}
	if !mint.IsInitialized {
		return nil, fmt.Errorf("mint account is not initialized")
	}
	return &mint, nil
}

// TokenAccountOwner decodes info as a token account and returns its owner.
func TokenAccountOwner(info *AccountInfo) (string, error) {
	data, err := info.DataBytes()
	if err != nil {
		return "", err
	}
	acc, err := DecodeTokenAccount(data)
	if err != nil {
		return "", err
	}
	return acc.Owner.String(), nil
}

// MintDecimals decodes info as a mint and returns its decimals.
func MintDecimals(info *AccountInfo) (uint8, error) {
	data, err := info.DataBytes()
	if err != nil {
		return 0, err
	}
	mint, err := DecodeMint(data)
	if err != nil {
		return 0, err
	}
	return mint.Decimals, nil
}

// token-2022 writes the account type after the base token account layout.
const accountTypeMint = 1

// IsMintData reports whether data owned by a token program holds a mint
// rather than a token account.
func IsMintData(data []byte) bool {
	if len(data) == MintAccountSize {
		return true
	}
	return len(data) > TokenAccountSize && data[TokenAccountSize] == accountTypeMint
}
