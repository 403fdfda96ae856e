package marketsearch

import (
	"context"
	"errors"
	"testing"

	"github.com/brasildev/paraguay-price-scout/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrayMarketEstimate(t *testing.T) {
	estimator := NewGrayMarketEstimator()

	tests := []struct {
		name       string
		product    string
		wantPrices []float64
	}{
		{"smartphone band", "Xiaomi Redmi Note 13", []float64{299, 399, 499}},
		{"tablet band", "Apple iPad Air 11", []float64{199, 299, 399}},
		{"notebook band", "Notebook Lenovo IdeaPad 3", []float64{899, 1299, 1599}},
		{"ambiguous name takes first category", "Samsung Galaxy Tab S9", []float64{299, 399, 499}},
		{"default band", "Fone Bluetooth TWS", []float64{99, 199, 299}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prices := estimator.Estimate(tt.product)
			require.Len(t, prices, len(grayMarketSources))

			for i, price := range prices {
				assert.Equal(t, grayMarketSources[i], price.Source)
				assert.InDelta(t, tt.wantPrices[i], price.PriceBRL, 1e-9)
				assert.Equal(t, models.ConditionNew, price.Condition)
				assert.Equal(t, models.AvailabilityInStock, price.Availability)
			}
		})
	}
}

func TestGrayMarketEstimateStable(t *testing.T) {
	estimator := NewGrayMarketEstimator()

	seen := map[float64]bool{}
	for i := 0; i < 200; i++ {
		prices := estimator.Estimate("Samsung Galaxy Tab S9")
		require.NotEmpty(t, prices)
		seen[prices[0].PriceBRL] = true
	}
	assert.Len(t, seen, 1)
	assert.True(t, seen[299])
}

type stubOfficial struct {
	prices []models.MarketPrice
	err    error
}

func (s stubOfficial) Search(context.Context, string) ([]models.MarketPrice, error) {
	return s.prices, s.err
}

func TestServicePools(t *testing.T) {
	official := stubOfficial{prices: []models.MarketPrice{{Source: "Mercado Livre", PriceBRL: 1200}}}
	service := NewService(official, NewGrayMarketEstimator(), discard())

	officialPool, err := service.OfficialPrices(context.Background(), "redmi note 13")
	require.NoError(t, err)
	assert.Len(t, officialPool, 1)

	grayPool, err := service.GrayMarketPrices(context.Background(), "redmi note 13")
	require.NoError(t, err)
	assert.Len(t, grayPool, len(grayMarketSources))
}

func TestServiceOfficialErrorPropagates(t *testing.T) {
	service := NewService(stubOfficial{err: errors.New("blocked")}, NewGrayMarketEstimator(), discard())

	_, err := service.OfficialPrices(context.Background(), "redmi")
	assert.Error(t, err)
}
