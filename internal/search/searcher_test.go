package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/brasildev/paraguay-price-scout/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	products map[string][]models.Product
	err      error
	queries  []string
}

func (c *stubCatalog) SearchProducts(_ context.Context, query, _ string) ([]models.Product, error) {
	c.queries = append(c.queries, query)
	if c.err != nil {
		return nil, c.err
	}
	return c.products[query], nil
}

func (c *stubCatalog) Categories(_ context.Context) ([]string, error) {
	return []string{"Eletrônicos", "Telefonia"}, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSearchWithFilters(t *testing.T) {
	catalog := &stubCatalog{products: map[string][]models.Product{
		"xiaomi": sampleProducts(),
	}}
	s := NewSearcher(catalog, discard())

	got := s.SearchWithFilters(context.Background(), "xiaomi", models.SearchFilters{
		Brands:      []string{"Xiaomi"},
		InStockOnly: true,
		SortBy:      models.SortPriceAsc,
	})

	require.Len(t, got, 1)
	assert.Equal(t, "Redmi Note 13", got[0].Name)
}

func TestSearchWithFiltersDegradesOnCatalogError(t *testing.T) {
	s := NewSearcher(&stubCatalog{err: errors.New("storefront unreachable")}, discard())

	got := s.SearchWithFilters(context.Background(), "tablet", models.SearchFilters{})

	assert.Empty(t, got)
}

func TestFindBestOpportunities(t *testing.T) {
	catalog := &stubCatalog{products: map[string][]models.Product{
		"smartwatch": {
			{Name: "Band 8", Brand: "Xiaomi", PriceUSD: 38, Stock: models.StockInStock},
			{Name: "Watch Fit", Brand: "Huawei", PriceUSD: 90, Stock: models.StockInStock},
			{Name: "Pricey Watch", Brand: "NoName", PriceUSD: 900, Stock: models.StockInStock},
			{Name: "Sold Out", Brand: "Apple", PriceUSD: 45, Stock: models.StockOutOfStock},
		},
	}}
	s := NewSearcher(catalog, discard())

	got := s.FindBestOpportunities(context.Background(), "smartwatch", 500, 7)

	// Pricey Watch is over budget, Sold Out fails the stock filter and
	// Watch Fit scores 11 (8+2+1), Band 8 scores 14.
	require.Len(t, got, 2)
	assert.Equal(t, "Band 8", got[0].Product.Name)
	assert.Equal(t, 14.0, got[0].Score)
	assert.Equal(t, "Watch Fit", got[1].Product.Name)

	for _, o := range got {
		assert.GreaterOrEqual(t, o.Score, 7.0)
	}
}

func TestFindBestOpportunitiesCapsAtTwenty(t *testing.T) {
	var many []models.Product
	for i := 0; i < 40; i++ {
		many = append(many, models.Product{
			Name:     fmt.Sprintf("Gadget %02d", i),
			Brand:    "Xiaomi",
			PriceUSD: 40,
			Stock:    models.StockInStock,
		})
	}
	catalog := &stubCatalog{products: map[string][]models.Product{"gadget": many}}
	s := NewSearcher(catalog, discard())

	got := s.FindBestOpportunities(context.Background(), "gadget", 100, 0)

	assert.Len(t, got, maxOpportunities)
}

func TestFindBestOpportunitiesEmptyQueryScansPopularCategories(t *testing.T) {
	catalog := &stubCatalog{products: map[string][]models.Product{
		"smartphone": {{Name: "Redmi", Brand: "Xiaomi", PriceUSD: 120, Stock: models.StockInStock}},
		"notebook":   {{Name: "Ideapad", Brand: "Lenovo", PriceUSD: 450, Stock: models.StockInStock}},
	}}
	s := NewSearcher(catalog, discard())

	got := s.FindBestOpportunities(context.Background(), "", 500, 0)

	require.Len(t, got, 2)
	assert.ElementsMatch(t, popularCategories, catalog.queries)
	// Sorted descending by score: Redmi 12, Ideapad 9.
	assert.Equal(t, "Redmi", got[0].Product.Name)
}

func TestSearchByPriceRange(t *testing.T) {
	catalog := &stubCatalog{products: map[string][]models.Product{
		"": sampleProducts(),
	}}
	s := NewSearcher(catalog, discard())

	got := s.SearchByPriceRange(context.Background(), 100, 300, "")

	require.NotEmpty(t, got)
	for _, p := range got {
		assert.GreaterOrEqual(t, p.PriceUSD, 100.0)
		assert.LessOrEqual(t, p.PriceUSD, 300.0)
	}
}

func TestPriceSuggestionsByTier(t *testing.T) {
	var spread []models.Product
	for i := 0; i < 10; i++ {
		spread = append(spread,
			models.Product{Name: fmt.Sprintf("budget-%d", i), PriceUSD: float64(10 + i)},
			models.Product{Name: fmt.Sprintf("mid-%d", i), PriceUSD: float64(150 + i)},
			models.Product{Name: fmt.Sprintf("prem-%d", i), PriceUSD: float64(400 + i)},
		)
	}
	catalog := &stubCatalog{products: map[string][]models.Product{"phone": spread}}
	s := NewSearcher(catalog, discard())

	got := s.PriceSuggestionsByTier(context.Background(), "phone")

	require.Len(t, got, 3)
	assert.Len(t, got[models.CategoryBudget], tierTopN)
	assert.Len(t, got[models.CategoryMidRange], tierTopN)
	assert.Len(t, got[models.CategoryPremium], tierTopN)

	for _, p := range got[models.CategoryBudget] {
		assert.LessOrEqual(t, p.PriceUSD, 100.0)
	}
	// Cheapest first inside each tier.
	assert.Equal(t, "budget-0", got[models.CategoryBudget][0].Name)
}
