package cache

import (
	"context"
	"errors"
	"log/slog"
)

// RateFetcher pulls a fresh exchange rate from its origin. The storefront
// scraper implements it.
type RateFetcher interface {
	CurrentExchangeRate(ctx context.Context) (float64, error)
}

// RateProvider serves the analyzer's exchange rate reads through the
// cache, refreshing from the fetcher on a miss. It implements the
// analyzer rate source.
type RateProvider struct {
	cache   *Cache
	fetcher RateFetcher
	logger  *slog.Logger
}

func NewRateProvider(cache *Cache, fetcher RateFetcher, logger *slog.Logger) *RateProvider {
	return &RateProvider{
		cache:   cache,
		fetcher: fetcher,
		logger:  logger.With("component", "rate_provider"),
	}
}

// CurrentRate returns the cached rate when fresh, otherwise fetches and
// caches a new one. Cache write failures are logged, not fatal.
func (p *RateProvider) CurrentRate(ctx context.Context) (float64, error) {
	rate, err := p.cache.GetRate(ctx)
	if err == nil {
		return rate, nil
	}
	if !errors.Is(err, ErrMiss) {
		p.logger.Warn("rate cache read failed", "error", err)
	}

	if p.fetcher == nil {
		return 0, errors.New("cache: no rate fetcher configured")
	}

	rate, err = p.fetcher.CurrentExchangeRate(ctx)
	if err != nil {
		return 0, err
	}

	if err := p.cache.SetRate(ctx, rate); err != nil {
		p.logger.Warn("rate cache write failed", "error", err)
	}
	return rate, nil
}
