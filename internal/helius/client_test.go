package helius

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-cli/internal/jsonrpc"
)

type dasCall struct {
	ID     uint64                 `json:"id"`
	Method string                 `json:"method"`
	Params map[string]interface{} `json:"params"`
}

func newDASServer(t *testing.T, handler func(call dasCall) interface{}) (*Client, func()) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call dasCall
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&call))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      call.ID,
			"result":  handler(call),
		})
	}))
	return NewClient(jsonrpc.NewClient(server.URL)), server.Close
}

func TestEndpoint(t *testing.T) {
	got, err := Endpoint("", "key123")
	require.NoError(t, err)
	assert.Equal(t, "https://mainnet.helius-rpc.com/?api-key=key123", got)

	got, err = Endpoint("http://localhost:8899/?foo=bar", " k ")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8899/?api-key=k&foo=bar", got)
}

func TestEndpoint_MissingKey(t *testing.T) {
	_, err := Endpoint(DefaultBaseURL, "  ")
	assert.True(t, errors.Is(err, ErrMissingAPIKey))
}

func TestClient_GetAsset(t *testing.T) {
	client, done := newDASServer(t, func(call dasCall) interface{} {
		assert.Equal(t, "getAsset", call.Method)
		assert.Equal(t, "mint1", call.Params["id"])
		opts, _ := call.Params["displayOptions"].(map[string]interface{})
		assert.Equal(t, true, opts["showFungible"])

		return map[string]interface{}{
			"id":        "mint1",
			"interface": "FungibleToken",
			"content": map[string]interface{}{
				"metadata": map[string]interface{}{"name": "Bonk", "symbol": ""},
			},
			"token_info": map[string]interface{}{
				"symbol":     "BONK",
				"decimals":   5,
				"price_info": map[string]interface{}{"price_per_token": 0.0000231, "currency": "USDC"},
			},
		}
	})
	defer done()

	asset, err := client.GetAsset(context.Background(), "mint1")
	require.NoError(t, err)
	require.NotNil(t, asset)

	require.NotNil(t, asset.Name())
	assert.Equal(t, "Bonk", *asset.Name())
	// An empty content symbol still wins over token_info.
	require.NotNil(t, asset.Symbol())
	assert.Equal(t, "", *asset.Symbol())
	require.NotNil(t, asset.Decimals())
	assert.Equal(t, uint8(5), *asset.Decimals())
	require.NotNil(t, asset.PriceUSD())
	assert.InDelta(t, 0.0000231, *asset.PriceUSD(), 1e-12)
}

func TestClient_GetAsset_Null(t *testing.T) {
	client, done := newDASServer(t, func(call dasCall) interface{} { return nil })
	defer done()

	asset, err := client.GetAsset(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, asset)
	assert.Nil(t, asset.Name())
	assert.Nil(t, asset.Symbol())
	assert.Nil(t, asset.Decimals())
	assert.Nil(t, asset.PriceUSD())
}

func TestAsset_SymbolFallback(t *testing.T) {
	sym := "USDC"
	asset := &Asset{TokenInfo: &TokenInfo{Symbol: &sym}}
	require.NotNil(t, asset.Symbol())
	assert.Equal(t, "USDC", *asset.Symbol())
}

func TestAsset_DecimalsOutOfRange(t *testing.T) {
	for _, d := range []int{-1, 256} {
		d := d
		asset := &Asset{TokenInfo: &TokenInfo{Decimals: &d}}
		assert.Nil(t, asset.Decimals(), "decimals %d", d)
	}
}

func TestClient_GetTokenAccounts(t *testing.T) {
	client, done := newDASServer(t, func(call dasCall) interface{} {
		assert.Equal(t, "getTokenAccounts", call.Method)
		assert.Equal(t, "owner1", call.Params["owner"])
		assert.NotContains(t, call.Params, "mint")
		assert.EqualValues(t, 1, call.Params["page"])
		assert.EqualValues(t, 25, call.Params["limit"])

		return map[string]interface{}{
			"total": 1,
			"limit": 25,
			"page":  1,
			"token_accounts": []map[string]interface{}{
				{"address": "acc1", "mint": "mintA", "owner": "owner1", "amount": uint64(18_000_000_000_000_000_000), "frozen": false},
			},
		}
	})
	defer done()

	page, err := client.GetTokenAccounts(context.Background(), TokenAccountsQuery{Owner: "owner1", Page: 1, Limit: 25})
	require.NoError(t, err)
	require.Len(t, page.TokenAccounts, 1)
	assert.Equal(t, "mintA", page.TokenAccounts[0].Mint)
	assert.Equal(t, uint64(18_000_000_000_000_000_000), page.TokenAccounts[0].Amount)
}

func TestClient_GetTokenAccounts_RequiresSelector(t *testing.T) {
	client := NewClient(jsonrpc.NewClient("http://127.0.0.1:1"))
	_, err := client.GetTokenAccounts(context.Background(), TokenAccountsQuery{Page: 1})
	assert.Error(t, err)
}

func TestClient_GetSignaturesForAsset(t *testing.T) {
	client, done := newDASServer(t, func(call dasCall) interface{} {
		assert.Equal(t, "getSignaturesForAsset", call.Method)
		assert.EqualValues(t, 10, call.Params["limit"])
		return map[string]interface{}{
			"total": 2,
			"limit": 10,
			"page":  1,
			"items": [][]string{{"sig1", "MintToCollectionV1"}, {"sig2", "Transfer"}},
		}
	})
	defer done()

	page, err := client.GetSignaturesForAsset(context.Background(), "asset1", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "sig1", page.Items[0].Signature)
	assert.Equal(t, "Transfer", page.Items[1].Type)
}

func TestClient_RPCError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      1,
			"error":   map[string]interface{}{"code": -32000, "message": "Asset Not Found"},
		})
	}))
	defer server.Close()

	client := NewClient(jsonrpc.NewClient(server.URL))
	_, err := client.GetAsset(context.Background(), "mint1")
	require.Error(t, err)

	var rpcErr *jsonrpc.Error
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, -32000, rpcErr.Code)
}
