package wallet

import (
	"encoding/base64"
	"fmt"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"

	"solana-cli/internal/solana"
)

// BuildTransfer returns a signed transaction moving lamports from the
// owner of from to to.
func BuildTransfer(blockhash solanago.Hash, from solanago.PrivateKey, to solanago.PublicKey, lamports uint64) (*solanago.Transaction, error) {
	ix := system.NewTransferInstruction(lamports, from.PublicKey(), to).Build()
	return buildSigned(blockhash, []solanago.Instruction{ix}, from)
}

// BuildCreateMint returns a signed transaction that creates the mint
// account and initializes it with decimals. The mint is its own mint and
// freeze authority; payer funds the rent.
func BuildCreateMint(blockhash solanago.Hash, payer, mint solanago.PrivateKey, rent uint64, decimals uint8) (*solanago.Transaction, error) {
	mintKey := mint.PublicKey()
	create := system.NewCreateAccountInstruction(
		rent,
		solana.MintAccountSize,
		solana.TokenProgramID,
		payer.PublicKey(),
		mintKey,
	).Build()
	initialize := token.NewInitializeMintInstruction(
		decimals,
		mintKey,
		mintKey,
		mintKey,
		solanago.SysVarRentPubkey,
	).Build()
	return buildSigned(blockhash, []solanago.Instruction{create, initialize}, payer, mint)
}

// buildSigned assembles a transaction paid by the first signer and signs it
// with every signer.
func buildSigned(blockhash solanago.Hash, instructions []solanago.Instruction, signers ...solanago.PrivateKey) (*solanago.Transaction, error) {
	payer := signers[0].PublicKey()
	tx, err := solanago.NewTransaction(instructions, blockhash, solanago.TransactionPayer(payer))
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	_, err = tx.Sign(func(key solanago.PublicKey) *solanago.PrivateKey {
		for i := range signers {
			if key.Equals(signers[i].PublicKey()) {
				return &signers[i]
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	return tx, nil
}

// encodeWire serializes tx for sendTransaction with base64 encoding.
func encodeWire(tx *solanago.Transaction) (string, error) {
	b, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("serialize transaction: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
