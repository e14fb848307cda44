package price

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"solana-cli/internal/memo"
	"solana-cli/internal/observability"
)

// Source fetches a quote for one mint.
type Source interface {
	FetchPrice(ctx context.Context, mint string) (float64, error)
}

// Cache memoizes quotes for one invocation. Each mint is requested from the
// source at most once; misses and failures are remembered as "no price".
type Cache struct {
	resolver *memo.Resolver[float64]
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// NewCache wraps source. metrics may be nil.
func NewCache(source Source, logger *zap.Logger, metrics *observability.Metrics) *Cache {
	c := &Cache{
		logger:  logger.Named("price_cache"),
		metrics: metrics,
	}
	c.resolver = memo.New[float64](func(ctx context.Context, mint string) (float64, error) {
		p, err := source.FetchPrice(ctx, mint)
		switch {
		case err == nil:
			c.metrics.RecordPriceLookup("hit")
			return p, nil
		case errors.Is(err, ErrNoPrice):
			c.metrics.RecordPriceLookup("miss")
			c.logger.Debug("No quote for mint", zap.String("mint", mint))
			return 0, ErrNoPrice
		default:
			c.metrics.RecordPriceLookup("error")
			c.logger.Warn("Price lookup failed", zap.String("mint", mint), zap.Error(err))
			return 0, ErrNoPrice
		}
	}, memo.CacheFailures())
	return c
}

// Price returns the USD price of mint and whether one is available.
func (c *Cache) Price(ctx context.Context, mint string) (float64, bool) {
	p, err := c.resolver.Get(ctx, mint)
	if err != nil {
		return 0, false
	}
	return p, true
}
