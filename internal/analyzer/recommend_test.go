package analyzer

import (
	"testing"

	"github.com/brasildev/paraguay-price-scout/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendTiers(t *testing.T) {
	tests := []struct {
		score    float64
		expected string
	}{
		{10, adviceTopOpportunity},
		{8, adviceTopOpportunity},
		{7.5, adviceGoodOpportunity},
		{6, adviceGoodOpportunity},
		{5, adviceModerate},
		{4, adviceModerate},
		{3.9, adviceLowMargin},
		{0, adviceLowMargin},
	}

	for _, tt := range tests {
		recs := Recommend(tt.score, models.PositionCompetitive, statsWithAvg(1000), models.CostBreakdown{})
		require.NotEmpty(t, recs)
		assert.Equal(t, tt.expected, recs[0], "score %v", tt.score)
	}
}

func TestRecommendPositionNotes(t *testing.T) {
	official := statsWithAvg(1000)

	budget := Recommend(5, models.PositionBudget, official, models.CostBreakdown{})
	assert.Contains(t, budget, adviceBudgetPosition)

	premium := Recommend(5, models.PositionPremium, official, models.CostBreakdown{})
	assert.Contains(t, premium, advicePremiumPosition)

	competitive := Recommend(5, models.PositionCompetitive, official, models.CostBreakdown{})
	assert.NotContains(t, competitive, adviceBudgetPosition)
	assert.NotContains(t, competitive, advicePremiumPosition)

	unknown := Recommend(5, models.PositionUnknown, official, models.CostBreakdown{})
	assert.Len(t, unknown, 1)
}

func TestRecommendLowCompetitionAndHighValue(t *testing.T) {
	recs := Recommend(2, models.PositionUnknown, models.PriceStats{}, models.CostBreakdown{TotalCost: 1500})

	require.Len(t, recs, 3)
	assert.Equal(t, adviceLowMargin, recs[0])
	assert.Equal(t, adviceLowCompetition, recs[1])
	assert.Equal(t, adviceHighValue, recs[2])
}

func TestRecommendOrderIsFixed(t *testing.T) {
	recs := Recommend(9, models.PositionBudget, models.PriceStats{}, models.CostBreakdown{TotalCost: 2500})

	assert.Equal(t, []string{
		adviceTopOpportunity,
		adviceBudgetPosition,
		adviceLowCompetition,
		adviceHighValue,
	}, recs)
}
