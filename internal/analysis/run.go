package analysis

import (
	"context"
	"errors"
	"fmt"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"solana-cli/internal/helius"
	"solana-cli/internal/holders"
	"solana-cli/internal/solana"
)

// Holder sources.
const (
	SourceRPC = "rpc"
	SourceDAS = "das"
)

// Default option values.
const (
	DefaultPage           = 1
	DefaultPageSize       = 100
	DefaultTopHolders     = 10
	DefaultTopOtherTokens = 5
	DefaultTransferLimit  = 25
)

// Options controls one analysis run.
type Options struct {
	Mint           string
	HolderSource   string
	Page           int
	PageSize       int
	TopHolders     int
	TopOtherTokens int
	TransferLimit  int
	HoldersOnly    bool
}

// DefaultOptions returns the CLI defaults for mint.
func DefaultOptions(mint string) Options {
	return Options{
		Mint:           mint,
		HolderSource:   SourceRPC,
		Page:           DefaultPage,
		PageSize:       DefaultPageSize,
		TopHolders:     DefaultTopHolders,
		TopOtherTokens: DefaultTopOtherTokens,
		TransferLimit:  DefaultTransferLimit,
	}
}

// Validate rejects options the analysis cannot run with.
func (o Options) Validate() error {
	if _, err := solanago.PublicKeyFromBase58(o.Mint); err != nil {
		return &FieldError{Field: FieldMintAddress, Err: fmt.Errorf("invalid mint %q: %w", o.Mint, err)}
	}
	switch o.HolderSource {
	case SourceRPC, SourceDAS:
	default:
		return fmt.Errorf("unknown holder source %q (want %s or %s)", o.HolderSource, SourceRPC, SourceDAS)
	}
	if o.Page < 1 || o.PageSize < 1 {
		return errors.New("page and page-size must be at least 1")
	}
	if o.TopHolders < 0 || o.TopOtherTokens < 0 || o.TransferLimit < 0 {
		return errors.New("limits must not be negative")
	}
	return nil
}

// Run performs the analysis and returns the report. Essential failures
// return an error; enrichment failures become notices in the report.
func (a *Analyzer) Run(ctx context.Context, opts Options) (*Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	mint := opts.Mint
	report := &Report{Mint: mint, Label: mint, HoldersOnly: opts.HoldersOnly, TransferLimit: opts.TransferLimit}

	decimals, err := a.decimals.Get(ctx, mint)
	if _, fatal := degrade(FieldSubjectDecimals, err); fatal != nil {
		return nil, fatal
	}
	report.Decimals = decimals

	supply, err := a.chain.GetTokenSupply(ctx, mint)
	if notice, _ := degrade(FieldSupply, err); notice != "" {
		a.logger.Debug("Supply unavailable", zap.String("mint", mint), zap.Error(err))
	} else {
		report.Supply = supply
	}

	meta, err := a.resolveMetadata(ctx, mint)
	if notice, _ := degrade(FieldSubjectMetadata, err); notice != "" {
		report.Notices = append(report.Notices, notice+"; showing the mint address only")
	}
	report.Metadata = meta
	report.Label = meta.Label(mint)

	balances, resolver, err := a.holderBalances(ctx, opts)
	if err != nil {
		return nil, err
	}
	if len(balances) == 0 {
		report.Empty = "No token accounts returned; the token may have no holders or the mint may be wrong."
		return report, nil
	}

	list, err := holders.Aggregate(balances, resolver)
	if _, fatal := degrade(FieldAccountData, err); fatal != nil {
		return nil, fatal
	}
	a.metrics.RecordAggregation(len(balances), len(list))
	if len(list) == 0 {
		report.Empty = "No funded holders could be aggregated."
		return report, nil
	}

	top := holders.Top(list, opts.TopHolders)
	report.Holders = list
	report.Displayed = len(top)
	report.Subtotal = holders.Total(top)
	report.Total = holders.Total(list)

	if opts.HoldersOnly {
		return report, nil
	}

	for _, h := range top {
		section := OwnerSection{Owner: h.Owner}
		tokens, notices, err := a.OtherTokens(ctx, h.Owner, mint, opts.TopOtherTokens)
		if notice, _ := degrade(FieldOwnerTokens, err); notice != "" {
			section.Err = notice
		}
		section.Tokens = tokens
		section.Notices = notices
		report.Others = append(report.Others, section)
	}

	report.Signatures = a.signatures(ctx, mint, decimals, opts.TransferLimit)
	return report, nil
}

// holderBalances lists the subject's token accounts from the chosen source
// and returns an owner resolver for them.
func (a *Analyzer) holderBalances(ctx context.Context, opts Options) ([]holders.AccountBalance, holders.OwnerResolver, error) {
	if opts.HolderSource == SourceDAS {
		return a.dasBalances(ctx, opts)
	}
	return a.rpcBalances(ctx, opts.Mint)
}

func (a *Analyzer) rpcBalances(ctx context.Context, mint string) ([]holders.AccountBalance, holders.OwnerResolver, error) {
	largest, err := a.chain.GetTokenLargestAccounts(ctx, mint)
	if _, fatal := degrade(FieldHolderAccounts, err); fatal != nil {
		return nil, nil, fatal
	}

	balances := make([]holders.AccountBalance, 0, len(largest))
	for _, b := range largest {
		if _, err := solanago.PublicKeyFromBase58(b.Address); err != nil {
			a.logger.Warn("Skipping malformed token account address", zap.String("address", b.Address))
			continue
		}
		raw, err := b.Raw()
		if err != nil {
			return nil, nil, &FieldError{Field: FieldHolderAccounts, Err: err}
		}
		balances = append(balances, holders.AccountBalance{Address: b.Address, Amount: raw})
	}

	funded := lo.FilterMap(balances, func(b holders.AccountBalance, _ int) (string, bool) {
		return b.Address, b.Amount.IsPositive()
	})
	if len(funded) == 0 {
		return balances, holders.OwnerResolverFunc(func(string) (string, bool, error) {
			return "", false, nil
		}), nil
	}

	infos, err := a.chain.GetMultipleAccounts(ctx, funded)
	if _, fatal := degrade(FieldHolderAccounts, err); fatal != nil {
		return nil, nil, fatal
	}
	if len(infos) != len(funded) {
		return nil, nil, &FieldError{Field: FieldHolderAccounts, Err: fmt.Errorf("expected %d accounts, got %d", len(funded), len(infos))}
	}
	byAddress := make(map[string]*solana.AccountInfo, len(funded))
	for i, addr := range funded {
		byAddress[addr] = infos[i]
	}

	resolver := holders.OwnerResolverFunc(func(address string) (string, bool, error) {
		info := byAddress[address]
		if info == nil {
			return "", false, nil
		}
		owner, err := solana.TokenAccountOwner(info)
		if err != nil {
			return "", false, err
		}
		return owner, true, nil
	})
	return balances, resolver, nil
}

func (a *Analyzer) dasBalances(ctx context.Context, opts Options) ([]holders.AccountBalance, holders.OwnerResolver, error) {
	page, err := a.indexer.GetTokenAccounts(ctx, helius.TokenAccountsQuery{
		Mint:  opts.Mint,
		Page:  opts.Page,
		Limit: opts.PageSize,
	})
	if _, fatal := degrade(FieldHolderAccounts, err); fatal != nil {
		return nil, nil, fatal
	}

	owners := make(map[string]string, len(page.TokenAccounts))
	balances := make([]holders.AccountBalance, 0, len(page.TokenAccounts))
	for _, acc := range page.TokenAccounts {
		owners[acc.Address] = acc.Owner
		balances = append(balances, holders.AccountBalance{Address: acc.Address, Amount: rawUnits(acc.Amount)})
	}

	resolver := holders.OwnerResolverFunc(func(address string) (string, bool, error) {
		owner := owners[address]
		return owner, owner != "", nil
	})
	return balances, resolver, nil
}

// signatures lists recent signatures when the mint has zero decimals;
// getSignaturesForAsset only covers NFT-like assets.
func (a *Analyzer) signatures(ctx context.Context, mint string, decimals uint8, limit int) *SignatureSection {
	section := &SignatureSection{Limit: limit}
	switch {
	case limit <= 0:
		section.Notice = "Use --transfer-limit N to list recent token signatures."
	case decimals > 0:
		section.Notice = fmt.Sprintf("getSignaturesForAsset mainly covers NFTs; skipping signature lookup for a token with %d decimals.", decimals)
	default:
		page, err := a.indexer.GetSignaturesForAsset(ctx, mint, 1, limit)
		if notice, _ := degrade(FieldSignatures, err); notice != "" {
			section.Notice = notice + "; some assets do not support this method"
			return section
		}
		section.Listed = true
		section.Items = lo.Map(page.Items, func(it helius.SignatureItem, _ int) string { return it.Signature })
		if len(section.Items) == 0 {
			section.Notice = "No signatures returned; try again later or change the limit."
		}
	}
	return section
}
