package analyzer

import "github.com/brasildev/paraguay-price-scout/internal/models"

// Advisory messages, ordered: score tier first, then position note, then
// competition and high-value notes. The order is part of the contract;
// downstream display relies on it.
const (
	adviceTopOpportunity  = "Excellent opportunity: high profit margin."
	adviceGoodOpportunity = "Good opportunity with an attractive margin."
	adviceModerate        = "Moderate opportunity. Review additional costs before committing."
	adviceLowMargin       = "Low margin. Consider other products."

	adviceBudgetPosition  = "Competitive positioning: landed cost sits well below the market."
	advicePremiumPosition = "Price is high compared to the market. The value needs justification."

	adviceLowCompetition = "Little competition found on the official market."
	adviceHighValue      = "High-value product. Consider a premium marketing strategy."
)

// Recommend maps an analysis outcome onto the fixed rules table of
// advisory strings.
func Recommend(score float64, position string, official models.PriceStats, costs models.CostBreakdown) []string {
	var recs []string

	switch {
	case score >= 8:
		recs = append(recs, adviceTopOpportunity)
	case score >= 6:
		recs = append(recs, adviceGoodOpportunity)
	case score >= 4:
		recs = append(recs, adviceModerate)
	default:
		recs = append(recs, adviceLowMargin)
	}

	switch position {
	case models.PositionBudget:
		recs = append(recs, adviceBudgetPosition)
	case models.PositionPremium:
		recs = append(recs, advicePremiumPosition)
	}

	if official.Count == 0 {
		recs = append(recs, adviceLowCompetition)
	}

	if costs.TotalCost > 1000 {
		recs = append(recs, adviceHighValue)
	}

	return recs
}
