// Package helius is the gateway to the Helius Digital Asset Standard (DAS) API.
package helius

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"solana-cli/internal/jsonrpc"
)

// DefaultBaseURL is the Helius mainnet RPC endpoint.
const DefaultBaseURL = "https://mainnet.helius-rpc.com/"

// APIKeyEnv names the environment variable holding the API key.
const APIKeyEnv = "HELIUS_API_KEY"

// ErrMissingAPIKey is returned when no API key was supplied.
var ErrMissingAPIKey = errors.New("no Helius API key: pass --api-key or set " + APIKeyEnv)

// Endpoint appends apiKey to baseURL as the api-key query parameter.
func Endpoint(baseURL, apiKey string) (string, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return "", ErrMissingAPIKey
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse Helius URL: %w", err)
	}
	q := u.Query()
	q.Set("api-key", apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Client calls DAS methods with named parameters.
type Client struct {
	rpc *jsonrpc.Client
}

// NewClient creates a DAS client over rpc.
func NewClient(rpc *jsonrpc.Client) *Client {
	return &Client{rpc: rpc}
}

type displayOptions struct {
	ShowFungible bool `json:"showFungible"`
}

type getAssetParams struct {
	ID             string         `json:"id"`
	DisplayOptions displayOptions `json:"displayOptions"`
}

// GetAsset fetches an asset with fungible token info. A nil asset with nil
// error means the indexer does not know the id.
func (c *Client) GetAsset(ctx context.Context, id string) (*Asset, error) {
	params := getAssetParams{ID: id, DisplayOptions: displayOptions{ShowFungible: true}}

	var asset *Asset
	if err := c.rpc.Call(ctx, "getAsset", params, &asset); err != nil {
		return nil, fmt.Errorf("getAsset %s: %w", id, err)
	}
	return asset, nil
}

// TokenAccountsQuery selects token accounts by owner or by mint.
type TokenAccountsQuery struct {
	Owner string `json:"owner,omitempty"`
	Mint  string `json:"mint,omitempty"`
	Page  int    `json:"page,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// GetTokenAccounts lists token accounts matching q.
func (c *Client) GetTokenAccounts(ctx context.Context, q TokenAccountsQuery) (*TokenAccountsPage, error) {
	if q.Owner == "" && q.Mint == "" {
		return nil, fmt.Errorf("getTokenAccounts: owner or mint is required")
	}

	var page TokenAccountsPage
	if err := c.rpc.Call(ctx, "getTokenAccounts", q, &page); err != nil {
		return nil, fmt.Errorf("getTokenAccounts: %w", err)
	}
	return &page, nil
}

type signaturesParams struct {
	ID    string `json:"id"`
	Page  int    `json:"page,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// GetSignaturesForAsset lists recent transaction signatures touching asset id.
func (c *Client) GetSignaturesForAsset(ctx context.Context, id string, page, limit int) (*SignaturesPage, error) {
	params := signaturesParams{ID: id, Page: page, Limit: limit}

	var result SignaturesPage
	if err := c.rpc.Call(ctx, "getSignaturesForAsset", params, &result); err != nil {
		return nil, fmt.Errorf("getSignaturesForAsset %s: %w", id, err)
	}
	return &result, nil
}
