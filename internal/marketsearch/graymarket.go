package marketsearch

import (
	"strings"
	"time"

	"github.com/brasildev/paraguay-price-scout/internal/models"
)

// Gray-market observations are category-typical estimates, not live
// quotes. Cross-border sellers do not expose a scrapeable listing, so
// the pool is synthesized from known price bands per category.
var grayMarketSources = []string{"AliExpress", "Shopee", "Wish"}

// Categories are matched in order; a name hitting keywords in more than
// one category always resolves to the first match.
var grayCategoryBands = []struct {
	category string
	keywords []string
	band     []float64
}{
	{"smartphone", []string{"smartphone", "celular", "phone", "redmi", "galaxy", "iphone", "xiaomi", "poco"}, []float64{299, 399, 499, 599, 799}},
	{"tablet", []string{"tablet", "ipad", "tab"}, []float64{199, 299, 399, 499}},
	{"notebook", []string{"notebook", "laptop", "macbook", "ultrabook"}, []float64{899, 1299, 1599, 1999}},
}

var defaultPriceBand = []float64{99, 199, 299, 499}

// GrayMarketEstimator produces a synthetic observation pool for the
// informal import market.
type GrayMarketEstimator struct{}

func NewGrayMarketEstimator() *GrayMarketEstimator {
	return &GrayMarketEstimator{}
}

// Estimate returns one observation per gray-market source, priced from
// the band matching the product's inferred category.
func (g *GrayMarketEstimator) Estimate(productName string) []models.MarketPrice {
	band := priceBand(productName)

	prices := make([]models.MarketPrice, 0, len(grayMarketSources))
	for i, source := range grayMarketSources {
		if i >= len(band) {
			break
		}
		prices = append(prices, models.MarketPrice{
			Source:       source,
			PriceBRL:     band[i],
			Condition:    models.ConditionNew,
			Availability: models.AvailabilityInStock,
			FoundAt:      time.Now(),
		})
	}
	return prices
}

func priceBand(productName string) []float64 {
	name := strings.ToLower(productName)
	for _, entry := range grayCategoryBands {
		for _, keyword := range entry.keywords {
			if strings.Contains(name, keyword) {
				return entry.band
			}
		}
	}
	return defaultPriceBand
}
