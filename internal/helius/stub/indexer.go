// Package stub provides an in-memory substitute for the DAS gateway.
package stub

import (
	"context"

	"solana-cli/internal/helius"
)

// Indexer serves DAS reads from maps.
type Indexer struct {
	Assets         map[string]*helius.Asset
	OwnerAccounts  map[string][]helius.TokenAccount
	MintAccounts   map[string][]helius.TokenAccount
	Signatures     map[string][]helius.SignatureItem
	AssetErrors    map[string]error
	OwnerErrors    map[string]error
	SignaturesErr  error
	AssetCalls     map[string]int
	AccountQueries []helius.TokenAccountsQuery
}

// NewIndexer creates an empty stub indexer.
func NewIndexer() *Indexer {
	return &Indexer{
		Assets:        make(map[string]*helius.Asset),
		OwnerAccounts: make(map[string][]helius.TokenAccount),
		MintAccounts:  make(map[string][]helius.TokenAccount),
		Signatures:    make(map[string][]helius.SignatureItem),
		AssetErrors:   make(map[string]error),
		OwnerErrors:   make(map[string]error),
		AssetCalls:    make(map[string]int),
	}
}

// GetAsset returns the stored asset, nil when unknown.
func (s *Indexer) GetAsset(_ context.Context, id string) (*helius.Asset, error) {
	s.AssetCalls[id]++
	if err := s.AssetErrors[id]; err != nil {
		return nil, err
	}
	return s.Assets[id], nil
}

// GetTokenAccounts pages through stored accounts by owner or mint.
func (s *Indexer) GetTokenAccounts(_ context.Context, q helius.TokenAccountsQuery) (*helius.TokenAccountsPage, error) {
	s.AccountQueries = append(s.AccountQueries, q)

	var all []helius.TokenAccount
	if q.Owner != "" {
		if err := s.OwnerErrors[q.Owner]; err != nil {
			return nil, err
		}
		all = s.OwnerAccounts[q.Owner]
	} else {
		all = s.MintAccounts[q.Mint]
	}

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = len(all)
	}
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}

	return &helius.TokenAccountsPage{
		Total:         end - start,
		Limit:         limit,
		Page:          page,
		TokenAccounts: all[start:end],
	}, nil
}

// GetSignaturesForAsset returns up to limit stored signatures.
func (s *Indexer) GetSignaturesForAsset(_ context.Context, id string, page, limit int) (*helius.SignaturesPage, error) {
	if s.SignaturesErr != nil {
		return nil, s.SignaturesErr
	}
	items := s.Signatures[id]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return &helius.SignaturesPage{Total: len(items), Limit: limit, Page: page, Items: items}, nil
}

// AddFungible stores an asset with name, symbol, decimals and an optional price.
func (s *Indexer) AddFungible(mint, name, symbol string, decimals int, price *float64) {
	asset := &helius.Asset{
		ID:        mint,
		Interface: "FungibleToken",
		Content:   &helius.AssetContent{Metadata: &helius.AssetMetadata{Name: &name, Symbol: &symbol}},
		TokenInfo: &helius.TokenInfo{Decimals: &decimals},
	}
	if price != nil {
		asset.TokenInfo.PriceInfo = &helius.PriceInfo{PricePerToken: *price, Currency: "USDC"}
	}
	s.Assets[mint] = asset
}
