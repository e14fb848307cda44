package command

import (
	"context"
	"fmt"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/urfave/cli/v2"

	"solana-cli/internal/solana"
	"solana-cli/internal/wallet"
)

func transferCommand() *cli.Command {
	return &cli.Command{
		Name:      "transfer",
		Usage:     "transfer SOL from the configured keypair",
		ArgsUsage: "<to> <amount>",
		Action:    action(runTransfer),
	}
}

func runTransfer(ctx context.Context, c *cli.Context, rt *runtime) error {
	if err := requireArgs(c, 2); err != nil {
		return err
	}
	to, err := solanago.PublicKeyFromBase58(c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("invalid recipient %q: %w", c.Args().Get(0), err)
	}
	amount := c.Args().Get(1)
	lamports, err := wallet.ParseSOL(amount)
	if err != nil {
		return err
	}
	from, err := rt.loadKeypair()
	if err != nil {
		return err
	}

	if onCurve, err := solana.IsOnCurveAddress(to.String()); err == nil && !onCurve {
		fmt.Fprintf(rt.stderr, "Warning: %s is a program-derived address with no private key\n", to)
	}

	fmt.Fprintf(rt.stdout, "Transferring %s SOL from %s to %s\n", amount, from.PublicKey(), to)

	node := rt.node()
	sender, release := rt.sender(ctx, node)
	defer release()

	sig, err := sender.Transfer(ctx, from, to, lamports)
	if err != nil {
		if sig != "" {
			fmt.Fprintf(rt.stderr, "Transaction Signature: %s\n", sig)
		}
		return fmt.Errorf("transfer: %w", err)
	}
	fmt.Fprintf(rt.stdout, "Transaction Signature: %s\n", sig)
	return nil
}

func mintTokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "mint-token",
		Usage: "create a new SPL token mint funded by the configured keypair",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  "decimals",
				Value: 9,
				Usage: "decimals of the new mint",
			},
		},
		Action: action(runMintToken),
	}
}

func runMintToken(ctx context.Context, c *cli.Context, rt *runtime) error {
	if err := requireArgs(c, 0); err != nil {
		return err
	}
	decimals := c.Uint("decimals")
	if decimals > 255 {
		return fmt.Errorf("decimals must be at most 255, got %d", decimals)
	}
	payer, err := rt.loadKeypair()
	if err != nil {
		return err
	}
	mint, err := wallet.NewMintKeypair()
	if err != nil {
		return fmt.Errorf("generate mint keypair: %w", err)
	}
	fmt.Fprintf(rt.stdout, "Mint account(%s) private key: %s\n", mint.PublicKey(), mint)

	node := rt.node()
	sender, release := rt.sender(ctx, node)
	defer release()

	sig, err := sender.CreateMint(ctx, payer, mint, uint8(decimals))
	if err != nil {
		if sig != "" {
			fmt.Fprintf(rt.stderr, "Transaction Signature: %s\n", sig)
		}
		return fmt.Errorf("create mint: %w", err)
	}
	fmt.Fprintf(rt.stdout, "Transaction Signature: %s\n", sig)
	return nil
}

func (rt *runtime) loadKeypair() (solanago.PrivateKey, error) {
	path, err := rt.cluster.Keypair()
	if err != nil {
		return nil, err
	}
	return wallet.LoadKeypair(path)
}
