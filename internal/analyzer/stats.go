package analyzer

import "github.com/brasildev/paraguay-price-scout/internal/models"

// ComputeStats reduces a pool of market price observations to min, max and
// arithmetic mean. An empty pool yields absent stats with count 0; it is a
// total function over any finite input.
func ComputeStats(prices []models.MarketPrice) models.PriceStats {
	if len(prices) == 0 {
		return models.PriceStats{}
	}

	min := prices[0].PriceBRL
	max := prices[0].PriceBRL
	var sum float64

	for _, p := range prices {
		sum += p.PriceBRL
		if p.PriceBRL < min {
			min = p.PriceBRL
		}
		if p.PriceBRL > max {
			max = p.PriceBRL
		}
	}

	avg := sum / float64(len(prices))

	return models.PriceStats{
		Min:   &min,
		Max:   &max,
		Avg:   &avg,
		Count: len(prices),
	}
}
