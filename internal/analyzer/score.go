package analyzer

import "github.com/brasildev/paraguay-price-scout/internal/models"

// OpportunityScore rates resale attractiveness on a 0–10 scale. The score
// is additive over four capped signals: potential margin against the
// official market (0–4), undercutting the gray market (0–3), source price
// band (0–2) and official data availability (0–1). The thresholds are a
// hand-tuned rubric; changing them changes the product.
func OpportunityScore(sourcePriceUSD, totalCost float64, official, gray models.PriceStats) float64 {
	var score float64

	if official.HasData() && totalCost > 0 {
		potentialMargin := (*official.Avg - totalCost) / totalCost
		switch {
		case potentialMargin > 1.0:
			score += 4
		case potentialMargin > 0.5:
			score += 3
		case potentialMargin > 0.3:
			score += 2
		case potentialMargin > 0.1:
			score += 1
		}
	}

	if gray.HasData() {
		switch {
		case totalCost < *gray.Avg*0.8:
			score += 3
		case totalCost < *gray.Avg:
			score += 2
		}
	}

	// Cheaper products move faster.
	if sourcePriceUSD < 100 {
		score += 2
	} else if sourcePriceUSD < 300 {
		score += 1
	}

	if official.Count > 0 {
		score++
	}

	if score > 10 {
		return 10
	}
	return score
}

// ClassifyPosition places the landed cost relative to the official-market
// average, with a 30% target margin folded into the comparison. Without
// official data the position is unknown.
func ClassifyPosition(totalCost float64, official models.PriceStats) string {
	if !official.HasData() {
		return models.PositionUnknown
	}

	avg := *official.Avg
	switch {
	case totalCost*1.3 < avg*0.7:
		return models.PositionBudget
	case totalCost*1.3 < avg:
		return models.PositionCompetitive
	default:
		return models.PositionPremium
	}
}
