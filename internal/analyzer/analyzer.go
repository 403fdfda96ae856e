package analyzer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/brasildev/paraguay-price-scout/internal/models"
)

// ErrNoProductName is returned when a record reaches the analyzer without
// a product name to search comparables for.
var ErrNoProductName = errors.New("analyzer: product name is required")

// PriceSource supplies comparable market price observations for a product.
// Implementations must not panic; errors degrade the affected pool to
// empty rather than aborting the analysis.
type PriceSource interface {
	OfficialPrices(ctx context.Context, productName string) ([]models.MarketPrice, error)
	GrayMarketPrices(ctx context.Context, productName string) ([]models.MarketPrice, error)
}

// RateSource supplies the current USD→BRL exchange rate.
type RateSource interface {
	CurrentRate(ctx context.Context) (float64, error)
}

// Analyzer sequences the market-analysis pipeline for one product: gather
// observation pools, compute stats, estimate landed cost, suggest resale
// prices, score the opportunity and generate recommendations.
type Analyzer struct {
	prices PriceSource
	rates  RateSource
	costs  CostParams
	logger *slog.Logger
}

// New creates an Analyzer. rates may be nil; the cost estimator then falls
// back to its configured default exchange rate.
func New(prices PriceSource, rates RateSource, costs CostParams, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		prices: prices,
		rates:  rates,
		costs:  costs,
		logger: logger.With("component", "analyzer"),
	}
}

// AnalyzeProduct runs the full pipeline and assembles a MarketAnalysis. A
// failed comparable-price fetch shows up as an empty pool with absent
// stats; only an invalid input record produces an error.
func (a *Analyzer) AnalyzeProduct(ctx context.Context, product models.Product) (*models.MarketAnalysis, error) {
	if product.Name == "" {
		return nil, ErrNoProductName
	}

	a.logger.Info("analyzing market", "product", product.Name, "price_usd", product.PriceUSD)

	official := a.fetchPool(ctx, product.Name, a.prices.OfficialPrices, "official")
	gray := a.fetchPool(ctx, product.Name, a.prices.GrayMarketPrices, "gray")

	officialStats := ComputeStats(official)
	grayStats := ComputeStats(gray)

	costs := a.costs.Estimate(product.PriceUSD, a.exchangeRate(ctx, product))

	score := OpportunityScore(product.PriceUSD, costs.TotalCost, officialStats, grayStats)
	position := ClassifyPosition(costs.TotalCost, officialStats)

	analysis := &models.MarketAnalysis{
		ProductName:      product.Name,
		SourcePriceUSD:   product.PriceUSD,
		SourcePriceBRL:   product.PriceBRL,
		OfficialMarket:   official,
		GrayMarket:       gray,
		OfficialStats:    officialStats,
		GrayStats:        grayStats,
		Costs:            costs,
		SuggestedPrices:  SuggestPrices(costs.TotalCost, officialStats, grayStats),
		OpportunityScore: score,
		MarketPosition:   position,
		Recommendations:  Recommend(score, position, officialStats, costs),
		AnalyzedAt:       time.Now(),
	}

	a.logger.Info("analysis complete",
		"product", product.Name,
		"score", score,
		"position", position,
		"official_count", officialStats.Count,
		"gray_count", grayStats.Count,
	)

	return analysis, nil
}

type poolFetch func(ctx context.Context, productName string) ([]models.MarketPrice, error)

func (a *Analyzer) fetchPool(ctx context.Context, name string, fetch poolFetch, pool string) []models.MarketPrice {
	prices, err := fetch(ctx, name)
	if err != nil {
		a.logger.Warn("market search failed, degrading to empty pool",
			"pool", pool, "product", name, "error", err)
		return nil
	}
	return prices
}

func (a *Analyzer) exchangeRate(ctx context.Context, product models.Product) float64 {
	if product.ExchangeRate > 0 {
		return product.ExchangeRate
	}
	if a.rates == nil {
		return 0
	}

	rate, err := a.rates.CurrentRate(ctx)
	if err != nil {
		a.logger.Warn("exchange rate lookup failed, using default", "error", err)
		return 0
	}
	return rate
}
