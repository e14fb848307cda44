package analysis

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"solana-cli/internal/domain"
	"solana-cli/internal/helius"
)

// overFetch is how many owner token accounts are requested per displayed slot.
const overFetch = 5

// OtherTokens returns up to limit priced holdings of owner, excluding
// skipMint and zero balances, ordered by USD value descending. Holdings that
// cannot be priced or scaled are dropped with a notice.
func (a *Analyzer) OtherTokens(ctx context.Context, owner, skipMint string, limit int) ([]domain.HolderToken, []string, error) {
	if limit <= 0 {
		return nil, nil, nil
	}

	page, err := a.indexer.GetTokenAccounts(ctx, helius.TokenAccountsQuery{
		Owner: owner,
		Page:  1,
		Limit: limit * overFetch,
	})
	if err != nil {
		return nil, nil, err
	}

	candidates := lo.Filter(page.TokenAccounts, func(acc helius.TokenAccount, _ int) bool {
		return acc.Mint != "" && acc.Mint != skipMint && acc.Amount > 0
	})

	var (
		tokens  []domain.HolderToken
		notices []string
	)
	for _, acc := range candidates {
		mint := acc.Mint

		decimals, err := a.decimals.Get(ctx, mint)
		if err != nil {
			notice, _ := degrade(FieldOtherDecimals, err)
			notices = append(notices, fmt.Sprintf("%s: %s, skipped", mint, notice))
			a.metrics.RecordHoldingSkipped("decimals")
			continue
		}

		meta, err := a.resolveMetadata(ctx, mint)
		if err != nil {
			a.logger.Debug("Metadata unavailable", zap.String("mint", mint), zap.Error(err))
		}

		price, ok := a.priceOf(ctx, mint, meta)
		if !ok {
			notices = append(notices, fmt.Sprintf("%s: no price quote, skipped", mint))
			a.metrics.RecordHoldingSkipped("no_price")
			continue
		}
		meta = meta.WithPrice(price)
		a.metadata.Put(mint, meta)

		amountUI := rawUnits(acc.Amount).Shift(-int32(decimals))
		value := amountUI.Mul(decimal.NewFromFloat(price))
		tokens = append(tokens, domain.HolderToken{
			Mint:     mint,
			AmountUI: amountUI,
			Decimals: decimals,
			Metadata: meta,
			PriceUSD: &price,
			ValueUSD: &value,
		})
	}

	sort.SliceStable(tokens, func(i, j int) bool {
		return tokens[i].Value().GreaterThan(tokens[j].Value())
	})
	if len(tokens) > limit {
		tokens = tokens[:limit]
	}
	return tokens, notices, nil
}

// priceOf prefers the price embedded in metadata over the price feed.
func (a *Analyzer) priceOf(ctx context.Context, mint string, meta domain.TokenMetadata) (float64, bool) {
	if meta.PriceUSD != nil {
		return *meta.PriceUSD, true
	}
	return a.prices.Price(ctx, mint)
}

func rawUnits(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}
