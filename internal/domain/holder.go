// Package domain holds the entities of a holder-distribution report.
// Nothing here outlives a single command invocation.
package domain

import "github.com/shopspring/decimal"

// HolderSnapshot is one token account belonging to an owner.
type HolderSnapshot struct {
	TokenAccount string
}

// AggregatedHolder is one owner's total position in the subject mint.
// TotalRaw is in integer base units; scale only for display.
type AggregatedHolder struct {
	Owner         string
	TotalRaw      decimal.Decimal
	TokenAccounts []HolderSnapshot
}

// TotalUI scales the raw total by 10^decimals.
func (h AggregatedHolder) TotalUI(decimals uint8) decimal.Decimal {
	return h.TotalRaw.Shift(-int32(decimals))
}

// PrimaryAccount returns the first token account seen for the owner.
func (h AggregatedHolder) PrimaryAccount() (string, bool) {
	if len(h.TokenAccounts) == 0 {
		return "", false
	}
	return h.TokenAccounts[0].TokenAccount, true
}

// AccountCount returns how many token accounts were merged into the holder.
func (h AggregatedHolder) AccountCount() int {
	return len(h.TokenAccounts)
}

// HolderToken is one other-token balance held by a top holder.
type HolderToken struct {
	Mint     string
	AmountUI decimal.Decimal
	Decimals uint8
	Metadata TokenMetadata
	PriceUSD *float64
	ValueUSD *decimal.Decimal
}

// Value returns the USD value, zero when unknown.
func (t HolderToken) Value() decimal.Decimal {
	if t.ValueUSD == nil {
		return decimal.Zero
	}
	return *t.ValueUSD
}
