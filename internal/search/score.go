package search

import (
	"strings"

	"github.com/brasildev/paraguay-price-scout/internal/analyzer"
	"github.com/brasildev/paraguay-price-scout/internal/models"
)

// Brands that move on name recognition alone.
var recognizedBrands = map[string]bool{
	"xiaomi":  true,
	"samsung": true,
	"apple":   true,
	"lg":      true,
}

// Listing advisory strings.
const (
	noteCheapImport   = "Excellent source price for importing."
	noteInStock       = "Product available in stock."
	noteCompetitiveVS = "Very competitive price versus the Brazilian market."
)

// ScoreListing rates a single listing on the 0–14 advanced-search rubric:
// a price-tier base (4–10), a stock bonus (0–2) and a brand-recognition
// bonus (1–2). This rubric is intentionally distinct from the 0–10
// market-analysis opportunity score and the two must never be merged.
func ScoreListing(p models.Product) models.OpportunityAnalysis {
	var (
		priceScore    float64
		priceCategory string
	)

	switch {
	case p.PriceUSD <= 50:
		priceScore, priceCategory = 10, models.CategoryBudget
	case p.PriceUSD <= 200:
		priceScore, priceCategory = 8, models.CategoryMidRange
	case p.PriceUSD <= 500:
		priceScore, priceCategory = 6, models.CategoryPremium
	default:
		priceScore, priceCategory = 4, models.CategoryPremium
	}

	var stockScore float64
	if p.InStock() {
		stockScore = 2
	}

	brandScore := 1.0
	if recognizedBrands[strings.ToLower(p.Brand)] {
		brandScore = 2
	}

	score := priceScore + stockScore + brandScore

	var rating string
	switch {
	case score >= 12:
		rating = models.RatingExcellent
	case score >= 10:
		rating = models.RatingGood
	case score >= 8:
		rating = models.RatingFair
	default:
		rating = models.RatingPoor
	}

	var recs []string
	if p.PriceUSD < 100 {
		recs = append(recs, noteCheapImport)
	}
	if p.InStock() {
		recs = append(recs, noteInStock)
	}
	if p.PriceBRL > 0 && p.PriceUSD > 0 {
		// Rough exchange sanity check against the default rate.
		if p.PriceBRL/(p.PriceUSD*analyzer.DefaultExchangeRate) < 1.2 {
			recs = append(recs, noteCompetitiveVS)
		}
	}

	return models.OpportunityAnalysis{
		Product:         p,
		Score:           score,
		PriceCategory:   priceCategory,
		ValueRating:     rating,
		Recommendations: recs,
	}
}
