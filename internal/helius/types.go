package helius

import (
	"encoding/json"
	"fmt"
)

// Asset is the subset of a DAS asset the CLI reads.
type Asset struct {
	ID        string        `json:"id"`
	Interface string        `json:"interface"`
	Content   *AssetContent `json:"content"`
	TokenInfo *TokenInfo    `json:"token_info"`
}

// AssetContent holds off-chain and on-chain display data.
type AssetContent struct {
	JSONURI  string         `json:"json_uri"`
	Metadata *AssetMetadata `json:"metadata"`
}

// AssetMetadata carries the display name and symbol.
type AssetMetadata struct {
	Name   *string `json:"name"`
	Symbol *string `json:"symbol"`
}

// TokenInfo is present for fungible assets when showFungible is set.
type TokenInfo struct {
	Symbol       *string    `json:"symbol"`
	Decimals     *int       `json:"decimals"`
	Supply       *uint64    `json:"supply"`
	TokenProgram string     `json:"token_program"`
	PriceInfo    *PriceInfo `json:"price_info"`
}

// PriceInfo is the indexer's own price quote.
type PriceInfo struct {
	PricePerToken float64 `json:"price_per_token"`
	Currency      string  `json:"currency"`
}

// Name returns content.metadata.name when present.
func (a *Asset) Name() *string {
	if a == nil || a.Content == nil || a.Content.Metadata == nil {
		return nil
	}
	return a.Content.Metadata.Name
}

// Symbol prefers content.metadata.symbol and falls back to token_info.symbol.
func (a *Asset) Symbol() *string {
	if a == nil {
		return nil
	}
	if a.Content != nil && a.Content.Metadata != nil && a.Content.Metadata.Symbol != nil {
		return a.Content.Metadata.Symbol
	}
	if a.TokenInfo != nil {
		return a.TokenInfo.Symbol
	}
	return nil
}

// Decimals returns token_info.decimals when it fits a uint8.
func (a *Asset) Decimals() *uint8 {
	if a == nil || a.TokenInfo == nil || a.TokenInfo.Decimals == nil {
		return nil
	}
	d := *a.TokenInfo.Decimals
	if d < 0 || d > 255 {
		return nil
	}
	v := uint8(d)
	return &v
}

// PriceUSD returns token_info.price_info.price_per_token when present.
func (a *Asset) PriceUSD() *float64 {
	if a == nil || a.TokenInfo == nil || a.TokenInfo.PriceInfo == nil {
		return nil
	}
	p := a.TokenInfo.PriceInfo.PricePerToken
	return &p
}

// TokenAccount is one entry of getTokenAccounts.
type TokenAccount struct {
	Address         string `json:"address"`
	Mint            string `json:"mint"`
	Owner           string `json:"owner"`
	Amount          uint64 `json:"amount"`
	DelegatedAmount uint64 `json:"delegated_amount"`
	Frozen          bool   `json:"frozen"`
}

// TokenAccountsPage is the getTokenAccounts result.
type TokenAccountsPage struct {
	Total         int            `json:"total"`
	Limit         int            `json:"limit"`
	Page          int            `json:"page"`
	TokenAccounts []TokenAccount `json:"token_accounts"`
}

// SignatureItem is a (signature, transaction type) pair.
type SignatureItem struct {
	Signature string
	Type      string
}

// UnmarshalJSON decodes the ["sig", "type"] tuple form.
func (s *SignatureItem) UnmarshalJSON(data []byte) error {
	var tuple []string
	if err := json.Unmarshal(data, &tuple); err != nil {
		return fmt.Errorf("decode signature item: %w", err)
	}
	if len(tuple) == 0 {
		return fmt.Errorf("decode signature item: empty tuple")
	}
	s.Signature = tuple[0]
	if len(tuple) > 1 {
		s.Type = tuple[1]
	}
	return nil
}

// SignaturesPage is the getSignaturesForAsset result.
type SignaturesPage struct {
	Total int             `json:"total"`
	Limit int             `json:"limit"`
	Page  int             `json:"page"`
	Items []SignatureItem `json:"items"`
}
