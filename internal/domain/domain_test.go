package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T {
	return &v
}

func TestTokenMetadata_Label(t *testing.T) {
	tests := []struct {
		name string
		meta TokenMetadata
		want string
	}{
		{"symbol and name", TokenMetadata{Symbol: ptr("BONK"), Name: ptr("Bonk")}, "BONK / Bonk"},
		{"same symbol and name", TokenMetadata{Symbol: ptr("USDC"), Name: ptr("USDC")}, "USDC"},
		{"symbol only", TokenMetadata{Symbol: ptr("JUP")}, "JUP"},
		{"empty name", TokenMetadata{Symbol: ptr("JUP"), Name: ptr("")}, "JUP"},
		{"name only", TokenMetadata{Name: ptr("Jupiter")}, "Jupiter"},
		{"empty symbol falls to name", TokenMetadata{Symbol: ptr(""), Name: ptr("Jupiter")}, "Jupiter"},
		{"nothing", TokenMetadata{}, "MintAddr"},
		{"empty strings", TokenMetadata{Symbol: ptr(""), Name: ptr("")}, "MintAddr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.meta.Label("MintAddr"))
		})
	}
}

func TestTokenMetadata_WithPrice(t *testing.T) {
	base := TokenMetadata{Symbol: ptr("SOL")}
	priced := base.WithPrice(150)

	assert.Nil(t, base.PriceUSD)
	assert.Equal(t, 150.0, *priced.PriceUSD)
	assert.True(t, TokenMetadata{}.IsEmpty())
	assert.False(t, priced.IsEmpty())
}

func TestAggregatedHolder(t *testing.T) {
	h := AggregatedHolder{
		Owner:    "X",
		TotalRaw: decimal.NewFromInt(150),
		TokenAccounts: []HolderSnapshot{
			{TokenAccount: "A"},
			{TokenAccount: "C"},
		},
	}

	assert.Equal(t, "1.5", h.TotalUI(2).String())
	assert.Equal(t, "150", h.TotalUI(0).String())
	assert.Equal(t, 2, h.AccountCount())

	primary, ok := h.PrimaryAccount()
	assert.True(t, ok)
	assert.Equal(t, "A", primary)

	_, ok = AggregatedHolder{}.PrimaryAccount()
	assert.False(t, ok)
}

func TestAggregatedHolder_TotalUIPrecision(t *testing.T) {
	raw, _ := decimal.NewFromString("340282366920938463463374607431768211455")
	h := AggregatedHolder{TotalRaw: raw}

	assert.Equal(t, "340282366920938463463374607431.768211455", h.TotalUI(9).String())
}

func TestHolderToken_Value(t *testing.T) {
	v := decimal.NewFromFloat(12.5)
	assert.True(t, HolderToken{ValueUSD: &v}.Value().Equal(v))
	assert.True(t, HolderToken{}.Value().IsZero())
}
