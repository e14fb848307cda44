// Package analysis builds the holder-distribution report for a token mint.
package analysis

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"solana-cli/internal/domain"
	"solana-cli/internal/helius"
	"solana-cli/internal/memo"
	"solana-cli/internal/observability"
	"solana-cli/internal/solana"
)

// ChainReader is the node capability the analysis needs.
type ChainReader interface {
	GetAccountInfo(ctx context.Context, pubkey string) (*solana.AccountInfo, error)
	GetMultipleAccounts(ctx context.Context, pubkeys []string) ([]*solana.AccountInfo, error)
	GetTokenLargestAccounts(ctx context.Context, mint string) ([]solana.TokenAccountBalance, error)
	GetTokenSupply(ctx context.Context, mint string) (*solana.TokenAmount, error)
}

// Indexer is the DAS capability the analysis needs.
type Indexer interface {
	GetAsset(ctx context.Context, id string) (*helius.Asset, error)
	GetTokenAccounts(ctx context.Context, q helius.TokenAccountsQuery) (*helius.TokenAccountsPage, error)
	GetSignaturesForAsset(ctx context.Context, id string, page, limit int) (*helius.SignaturesPage, error)
}

// PriceSource returns a USD price for a mint, if one is known.
type PriceSource interface {
	Price(ctx context.Context, mint string) (float64, bool)
}

// Analyzer runs token analyses. Its caches live as long as the Analyzer,
// which is one command invocation.
type Analyzer struct {
	chain   ChainReader
	indexer Indexer
	prices  PriceSource
	logger  *zap.Logger
	metrics *observability.Metrics

	decimals *memo.Resolver[uint8]
	metadata *memo.Resolver[domain.TokenMetadata]
}

// NewAnalyzer wires the capabilities together. metrics may be nil.
func NewAnalyzer(chain ChainReader, indexer Indexer, prices PriceSource, logger *zap.Logger, metrics *observability.Metrics) *Analyzer {
	a := &Analyzer{
		chain:   chain,
		indexer: indexer,
		prices:  prices,
		logger:  logger.Named("analysis"),
		metrics: metrics,
	}
	a.decimals = memo.New[uint8](a.fetchDecimals)
	a.metadata = memo.New[domain.TokenMetadata](a.fetchMetadata, memo.CacheFailures())
	return a
}

// fetchDecimals reads decimals from the mint account on chain.
func (a *Analyzer) fetchDecimals(ctx context.Context, mint string) (uint8, error) {
	info, err := a.chain.GetAccountInfo(ctx, mint)
	if err != nil {
		return 0, err
	}
	if info == nil {
		return 0, fmt.Errorf("mint %s: %w", mint, solana.ErrAccountNotFound)
	}
	d, err := solana.MintDecimals(info)
	if err != nil {
		return 0, fmt.Errorf("mint %s: %w", mint, err)
	}
	return d, nil
}

// fetchMetadata asks the indexer first and falls back to the on-chain
// Metaplex account. The indexer's error is reported when both fail.
func (a *Analyzer) fetchMetadata(ctx context.Context, mint string) (domain.TokenMetadata, error) {
	asset, err := a.indexer.GetAsset(ctx, mint)
	if err == nil && asset != nil {
		return metadataFromAsset(asset), nil
	}

	onChain, chainErr := a.onChainMetadata(ctx, mint)
	if chainErr == nil {
		return onChain, nil
	}
	a.logger.Debug("On-chain metadata unavailable", zap.String("mint", mint), zap.Error(chainErr))

	if err != nil {
		return domain.TokenMetadata{}, err
	}
	return domain.TokenMetadata{}, nil
}

func (a *Analyzer) onChainMetadata(ctx context.Context, mint string) (domain.TokenMetadata, error) {
	addr, err := solana.MetadataAddress(mint)
	if err != nil {
		return domain.TokenMetadata{}, err
	}
	info, err := a.chain.GetAccountInfo(ctx, addr)
	if err != nil {
		return domain.TokenMetadata{}, err
	}
	if info == nil {
		return domain.TokenMetadata{}, fmt.Errorf("metadata account %s: %w", addr, solana.ErrAccountNotFound)
	}
	data, err := info.DataBytes()
	if err != nil {
		return domain.TokenMetadata{}, err
	}
	md, err := solana.ParseMetaplexMetadata(data)
	if err != nil {
		return domain.TokenMetadata{}, err
	}

	var out domain.TokenMetadata
	if md.Name != "" {
		out.Name = &md.Name
	}
	if md.Symbol != "" {
		out.Symbol = &md.Symbol
	}
	return out, nil
}

func metadataFromAsset(asset *helius.Asset) domain.TokenMetadata {
	return domain.TokenMetadata{
		Name:     asset.Name(),
		Symbol:   asset.Symbol(),
		Decimals: asset.Decimals(),
		PriceUSD: asset.PriceUSD(),
	}
}

// resolveMetadata returns cached or fetched metadata, empty on failure, and
// seeds the decimals cache from it.
func (a *Analyzer) resolveMetadata(ctx context.Context, mint string) (domain.TokenMetadata, error) {
	meta, err := a.metadata.Get(ctx, mint)
	if err != nil {
		return domain.TokenMetadata{}, err
	}
	if meta.Decimals != nil {
		a.decimals.Seed(mint, *meta.Decimals)
	}
	return meta, nil
}
