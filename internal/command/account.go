package command

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/urfave/cli/v2"

	"solana-cli/internal/solana"
)

func balanceCommand() *cli.Command {
	return &cli.Command{
		Name:      "balance",
		Usage:     "print the SOL balance of an address",
		ArgsUsage: "<address>",
		Action:    action(runBalance),
	}
}

func runBalance(ctx context.Context, c *cli.Context, rt *runtime) error {
	address, err := addressArg(c)
	if err != nil {
		return err
	}
	lamports, err := rt.node().GetBalance(ctx, address)
	if err != nil {
		return err
	}
	fmt.Fprintf(rt.stdout, "%s: %s\n", address, solana.FormatSOL(lamports))
	return nil
}

func accountCommand() *cli.Command {
	return &cli.Command{
		Name:      "account",
		Usage:     "print an account, decoding SPL token accounts and mints",
		ArgsUsage: "<address>",
		Action:    action(runAccount),
	}
}

func runAccount(ctx context.Context, c *cli.Context, rt *runtime) error {
	address, err := addressArg(c)
	if err != nil {
		return err
	}
	info, err := rt.node().GetAccountInfo(ctx, address)
	if err != nil {
		return err
	}
	if info == nil {
		return fmt.Errorf("account %s: %w", address, solana.ErrAccountNotFound)
	}
	data, err := info.DataBytes()
	if err != nil {
		return err
	}
	return writeAccount(rt.stdout, address, info, data)
}

func addressArg(c *cli.Context) (string, error) {
	if err := requireArgs(c, 1); err != nil {
		return "", err
	}
	pk, err := solanago.PublicKeyFromBase58(c.Args().First())
	if err != nil {
		return "", fmt.Errorf("invalid address %q: %w", c.Args().First(), err)
	}
	return pk.String(), nil
}

func writeAccount(w io.Writer, address string, info *solana.AccountInfo, data []byte) error {
	fmt.Fprintf(w, "Public Key: %s\n", address)
	fmt.Fprintf(w, "Balance: %s\n", solana.FormatSOL(info.Lamports))
	fmt.Fprintf(w, "Owner: %s\n", info.Owner)
	fmt.Fprintf(w, "Executable: %t\n", info.Executable)
	fmt.Fprintf(w, "Rent Epoch: %d\n", info.RentEpoch)
	fmt.Fprintf(w, "Length: %d (0x%x) bytes\n", len(data), len(data))

	if solana.IsTokenProgram(info.Owner) && len(data) > 0 {
		if solana.IsMintData(data) {
			mint, err := solana.DecodeMint(data)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "SPL Mint:")
			fmt.Fprintf(w, "  Supply: %d\n", mint.Supply)
			fmt.Fprintf(w, "  Decimals: %d\n", mint.Decimals)
			fmt.Fprintf(w, "  Mint Authority: %s\n", optionalKey(mint.MintAuthority))
			fmt.Fprintf(w, "  Freeze Authority: %s\n", optionalKey(mint.FreezeAuthority))
			return nil
		}
		acc, err := solana.DecodeTokenAccount(data)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "SPL Token Account:")
		fmt.Fprintf(w, "  Mint: %s\n", acc.Mint)
		fmt.Fprintf(w, "  Owner: %s\n", acc.Owner)
		fmt.Fprintf(w, "  Amount: %d\n", acc.Amount)
		fmt.Fprintf(w, "  Delegate: %s\n", optionalKey(acc.Delegate))
		fmt.Fprintf(w, "  Close Authority: %s\n", optionalKey(acc.CloseAuthority))
		return nil
	}

	if len(data) > 0 {
		fmt.Fprint(w, hex.Dump(data))
	}
	return nil
}

func optionalKey(pk *solanago.PublicKey) string {
	if pk == nil {
		return "(not set)"
	}
	return pk.String()
}
