package analyzer

import "github.com/brasildev/paraguay-price-scout/internal/models"

// Price suggestion strategy names.
const (
	StrategyCompetitive     = "competitive"
	StrategyPremium         = "premium"
	StrategyAggressive      = "aggressive"
	StrategyMarketBased     = "market_based"
	StrategyGrayCompetitive = "gray_competitive"
)

// SuggestPrices produces candidate resale prices per strategy. The three
// margin-based strategies are always present; market_based and
// gray_competitive appear only when the corresponding pool has data.
func SuggestPrices(totalCost float64, official, gray models.PriceStats) map[string]float64 {
	suggestions := map[string]float64{
		StrategyCompetitive: totalCost * 1.30,
		StrategyPremium:     totalCost * 1.50,
		StrategyAggressive:  totalCost * 1.20,
	}

	if official.HasData() {
		// 15% below the official average
		suggestions[StrategyMarketBased] = *official.Avg * 0.85
	}
	if gray.HasData() {
		// 10% above the gray market
		suggestions[StrategyGrayCompetitive] = *gray.Avg * 1.10
	}

	return suggestions
}
