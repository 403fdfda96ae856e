package search

import (
	"testing"

	"github.com/brasildev/paraguay-price-scout/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func sampleProducts() []models.Product {
	return []models.Product{
		{Name: "Redmi Note 13", Brand: "Xiaomi", Category: "Smartphone", PriceUSD: 189, PriceBRL: 1100, Stock: models.StockInStock},
		{Name: "Galaxy A15", Brand: "Samsung", Category: "Smartphone", PriceUSD: 145, PriceBRL: 880, Stock: models.StockInStock},
		{Name: "iPad 10", Brand: "Apple", Category: "Tablet", PriceUSD: 420, PriceBRL: 2700, Stock: models.StockOutOfStock},
		{Name: "Ideapad 3", Brand: "Lenovo", Category: "Notebook", PriceUSD: 640, PriceBRL: 4100, Stock: models.StockInStock},
		{Name: "Band 8", Brand: "Xiaomi", Category: "Smartwatch", PriceUSD: 38, PriceBRL: 240, Stock: models.StockLimited},
	}
}

func names(products []models.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}

func TestApplyFiltersPriceBounds(t *testing.T) {
	products := sampleProducts()

	tests := []struct {
		name     string
		filters  models.SearchFilters
		expected []string
	}{
		{
			name:     "no bounds keeps everything",
			filters:  models.SearchFilters{},
			expected: []string{"Redmi Note 13", "Galaxy A15", "iPad 10", "Ideapad 3", "Band 8"},
		},
		{
			name:     "usd min only",
			filters:  models.SearchFilters{MinPriceUSD: f(150)},
			expected: []string{"Redmi Note 13", "iPad 10", "Ideapad 3"},
		},
		{
			name:     "usd range",
			filters:  models.SearchFilters{MinPriceUSD: f(100), MaxPriceUSD: f(300)},
			expected: []string{"Redmi Note 13", "Galaxy A15"},
		},
		{
			name:     "brl max",
			filters:  models.SearchFilters{MaxPriceBRL: f(1000)},
			expected: []string{"Galaxy A15", "Band 8"},
		},
		{
			name:     "bounds are inclusive",
			filters:  models.SearchFilters{MinPriceUSD: f(38), MaxPriceUSD: f(38)},
			expected: []string{"Band 8"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyFilters(products, tt.filters)
			assert.Equal(t, tt.expected, names(got))

			for _, p := range got {
				if tt.filters.MinPriceUSD != nil {
					assert.GreaterOrEqual(t, p.PriceUSD, *tt.filters.MinPriceUSD)
				}
				if tt.filters.MaxPriceUSD != nil {
					assert.LessOrEqual(t, p.PriceUSD, *tt.filters.MaxPriceUSD)
				}
			}
		})
	}
}

func TestApplyFiltersSetsAndStock(t *testing.T) {
	products := sampleProducts()

	byCategory := ApplyFilters(products, models.SearchFilters{Categories: []string{"SMARTPHONE", "tablet"}})
	assert.Equal(t, []string{"Redmi Note 13", "Galaxy A15", "iPad 10"}, names(byCategory))

	byBrand := ApplyFilters(products, models.SearchFilters{Brands: []string{"xiaomi"}})
	assert.Equal(t, []string{"Redmi Note 13", "Band 8"}, names(byBrand))

	inStock := ApplyFilters(products, models.SearchFilters{InStockOnly: true})
	assert.Equal(t, []string{"Redmi Note 13", "Galaxy A15", "Ideapad 3"}, names(inStock))
}

func TestSortProducts(t *testing.T) {
	products := sampleProducts()

	asc := SortProducts(products, models.SortPriceAsc)
	assert.Equal(t, []string{"Band 8", "Galaxy A15", "Redmi Note 13", "iPad 10", "Ideapad 3"}, names(asc))

	desc := SortProducts(products, models.SortPriceDesc)
	assert.Equal(t, []string{"Ideapad 3", "iPad 10", "Redmi Note 13", "Galaxy A15", "Band 8"}, names(desc))

	byName := SortProducts(products, models.SortName)
	assert.Equal(t, []string{"Band 8", "Galaxy A15", "Ideapad 3", "Redmi Note 13", "iPad 10"}, names(byName))

	relevance := SortProducts(products, models.SortRelevance)
	assert.Equal(t, names(products), names(relevance))

	// Input order is never mutated.
	assert.Equal(t, "Redmi Note 13", products[0].Name)
}

func TestSortProductsStable(t *testing.T) {
	products := []models.Product{
		{Name: "first", PriceUSD: 100},
		{Name: "second", PriceUSD: 100},
		{Name: "third", PriceUSD: 100},
	}

	sorted := SortProducts(products, models.SortPriceAsc)
	require.Equal(t, []string{"first", "second", "third"}, names(sorted))
}
