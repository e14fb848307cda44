// Package holders merges per-token-account balances into per-owner totals.
package holders

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"solana-cli/internal/domain"
)

// AccountBalance is a token account and its raw balance in base units.
type AccountBalance struct {
	Address string
	Amount  decimal.Decimal
}

// OwnerResolver maps a token account to its owner. found is false when the
// account no longer exists; err means the account data could not be decoded.
type OwnerResolver interface {
	OwnerOf(address string) (owner string, found bool, err error)
}

// OwnerResolverFunc adapts a function to OwnerResolver.
type OwnerResolverFunc func(address string) (string, bool, error)

// OwnerOf calls f.
func (f OwnerResolverFunc) OwnerOf(address string) (string, bool, error) {
	return f(address)
}

// Aggregate sums balances per owner in a single pass and returns holders
// ordered by total descending. Ties keep first-seen order. Zero balances and
// unresolvable accounts are skipped; a decode error aborts the pass.
func Aggregate(balances []AccountBalance, resolver OwnerResolver) ([]domain.AggregatedHolder, error) {
	index := make(map[string]int)
	var out []domain.AggregatedHolder

	for _, b := range balances {
		if !b.Amount.IsPositive() {
			continue
		}

		owner, found, err := resolver.OwnerOf(b.Address)
		if err != nil {
			return nil, fmt.Errorf("resolve owner of token account %s: %w", b.Address, err)
		}
		if !found {
			continue
		}

		i, ok := index[owner]
		if !ok {
			i = len(out)
			index[owner] = i
			out = append(out, domain.AggregatedHolder{Owner: owner, TotalRaw: decimal.Zero})
		}
		out[i].TotalRaw = out[i].TotalRaw.Add(b.Amount)
		out[i].TokenAccounts = append(out[i].TokenAccounts, domain.HolderSnapshot{TokenAccount: b.Address})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalRaw.GreaterThan(out[j].TotalRaw)
	})
	return out, nil
}

// DisplayCount is min(len(list), max(n, 1)).
func DisplayCount(list []domain.AggregatedHolder, n int) int {
	if n < 1 {
		n = 1
	}
	return min(len(list), n)
}

// Top returns the first DisplayCount holders. The full list is untouched.
func Top(list []domain.AggregatedHolder, n int) []domain.AggregatedHolder {
	return list[:DisplayCount(list, n)]
}

// Total sums the raw totals of list.
func Total(list []domain.AggregatedHolder) decimal.Decimal {
	return lo.Reduce(list, func(acc decimal.Decimal, h domain.AggregatedHolder, _ int) decimal.Decimal {
		return acc.Add(h.TotalRaw)
	}, decimal.Zero)
}
