package command

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"solana-cli/internal/analysis"
	"solana-cli/internal/export"
	"solana-cli/internal/helius"
	"solana-cli/internal/price"
)

func tokenAnalysisCommand() *cli.Command {
	return &cli.Command{
		Name:      "token-analysis",
		Usage:     "report the largest holders of a token and what else they hold",
		ArgsUsage: "<mint>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "Helius API key",
				EnvVars: []string{helius.APIKeyEnv},
			},
			&cli.StringFlag{
				Name:  "holder-source",
				Value: analysis.SourceRPC,
				Usage: "where holders come from: rpc (largest accounts) or das (getTokenAccounts by mint)",
			},
			&cli.IntFlag{
				Name:  "page",
				Value: analysis.DefaultPage,
				Usage: "DAS page of token accounts (das source)",
			},
			&cli.IntFlag{
				Name:  "page-size",
				Value: analysis.DefaultPageSize,
				Usage: "DAS page size (das source)",
			},
			&cli.IntFlag{
				Name:  "top-holders",
				Value: analysis.DefaultTopHolders,
				Usage: "number of holders to display",
			},
			&cli.IntFlag{
				Name:  "top-other-tokens",
				Value: analysis.DefaultTopOtherTokens,
				Usage: "other tokens listed per holder",
			},
			&cli.IntFlag{
				Name:  "transfer-limit",
				Value: analysis.DefaultTransferLimit,
				Usage: "recent signatures to list (0 disables)",
			},
			&cli.BoolFlag{
				Name:  "holders-only",
				Usage: "stop after the holder list",
			},
			&cli.StringFlag{
				Name:  "format",
				Value: formatText,
				Usage: "stdout format: text or markdown",
			},
			&cli.StringFlag{
				Name:  "csv",
				Usage: "also write every holder to this CSV file",
			},
			&cli.StringFlag{
				Name:  "xlsx",
				Usage: "also write the report to this XLSX file",
			},
		},
		Action: action(runTokenAnalysis),
	}
}

const (
	formatText     = "text"
	formatMarkdown = "markdown"
)

func runTokenAnalysis(ctx context.Context, c *cli.Context, rt *runtime) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	format := c.String("format")
	if format != formatText && format != formatMarkdown {
		return fmt.Errorf("invalid --format %q: want %s or %s", format, formatText, formatMarkdown)
	}
	opts := analysis.Options{
		Mint:           c.Args().First(),
		HolderSource:   c.String("holder-source"),
		Page:           c.Int("page"),
		PageSize:       c.Int("page-size"),
		TopHolders:     c.Int("top-holders"),
		TopOtherTokens: c.Int("top-other-tokens"),
		TransferLimit:  c.Int("transfer-limit"),
		HoldersOnly:    c.Bool("holders-only"),
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	indexer, err := rt.indexer(c.String("api-key"))
	if err != nil {
		return err
	}
	feed := price.NewClient(rt.settings.JupiterURL, price.DefaultTimeout, rt.logger)
	prices := price.NewCache(feed, rt.logger, rt.metrics)
	analyzer := analysis.NewAnalyzer(rt.node(), indexer, prices, rt.logger, rt.metrics)

	report, err := analyzer.Run(ctx, opts)
	if err != nil {
		return err
	}
	if format == formatMarkdown {
		if _, err := io.WriteString(rt.stdout, export.RenderMarkdown(report)); err != nil {
			return err
		}
	} else if err := report.WriteText(rt.stdout); err != nil {
		return err
	}

	if path := c.String("csv"); path != "" {
		if err := export.SaveHoldersCSV(path, report); err != nil {
			return err
		}
		fmt.Fprintf(rt.stderr, "Holders written to %s\n", path)
	}

	if path := c.String("xlsx"); path != "" {
		if err := export.SaveXLSX(path, report); err != nil {
			return err
		}
		fmt.Fprintf(rt.stderr, "Report written to %s\n", path)
	}
	return nil
}
