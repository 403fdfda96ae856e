package search

import (
	"context"
	"log/slog"
	"sort"

	"github.com/brasildev/paraguay-price-scout/internal/models"
)

// Defaults for opportunity hunting.
const (
	maxOpportunities = 20
	tierTopN         = 5
)

// Categories tried when an opportunity search has no query.
var popularCategories = []string{"smartphone", "tablet", "notebook", "smartwatch", "fone"}

// Catalog is the storefront search collaborator. Implementations return
// normalized product records; values may be missing and are treated as
// absent by the filters.
type Catalog interface {
	SearchProducts(ctx context.Context, query, category string) ([]models.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

// Searcher applies filter, sort and listing-score logic over catalog
// results.
type Searcher struct {
	catalog Catalog
	logger  *slog.Logger
}

func NewSearcher(catalog Catalog, logger *slog.Logger) *Searcher {
	return &Searcher{
		catalog: catalog,
		logger:  logger.With("component", "search"),
	}
}

// SearchWithFilters runs a catalog search and applies the filter and sort
// specification. A catalog failure degrades to an empty result.
func (s *Searcher) SearchWithFilters(ctx context.Context, query string, filters models.SearchFilters) []models.Product {
	products, err := s.catalog.SearchProducts(ctx, query, "")
	if err != nil {
		s.logger.Warn("catalog search failed", "query", query, "error", err)
		return nil
	}
	if len(products) == 0 {
		s.logger.Debug("no products found", "query", query)
		return nil
	}

	filtered := ApplyFilters(products, filters)
	sorted := SortProducts(filtered, filters.SortBy)

	s.logger.Info("search complete", "query", query, "found", len(products), "after_filters", len(sorted))
	return sorted
}

// FindBestOpportunities scores in-stock listings up to maxPriceUSD and
// returns the top candidates at or above minScore, sorted descending by
// score and capped at 20 results. An empty query scans popular categories.
func (s *Searcher) FindBestOpportunities(ctx context.Context, query string, maxPriceUSD, minScore float64) []models.OpportunityAnalysis {
	filters := models.SearchFilters{
		MaxPriceUSD: &maxPriceUSD,
		InStockOnly: true,
		SortBy:      models.SortPriceAsc,
	}

	var products []models.Product
	if query != "" {
		products = s.SearchWithFilters(ctx, query, filters)
	} else {
		products = s.searchPopularCategories(ctx, filters)
	}

	opportunities := make([]models.OpportunityAnalysis, 0, len(products))
	for _, p := range products {
		analysis := ScoreListing(p)
		if analysis.Score >= minScore {
			opportunities = append(opportunities, analysis)
		}
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].Score > opportunities[j].Score
	})

	if len(opportunities) > maxOpportunities {
		opportunities = opportunities[:maxOpportunities]
	}

	s.logger.Info("opportunity scan complete", "query", query, "qualified", len(opportunities))
	return opportunities
}

// SearchByPriceRange returns products inside a USD price band, optionally
// constrained to one category.
func (s *Searcher) SearchByPriceRange(ctx context.Context, minUSD, maxUSD float64, category string) []models.Product {
	filters := models.SearchFilters{
		MinPriceUSD: &minUSD,
		MaxPriceUSD: &maxUSD,
		SortBy:      models.SortPriceAsc,
	}
	if category != "" {
		filters.Categories = []string{category}
	}

	query := category
	return s.SearchWithFilters(ctx, query, filters)
}

// PriceSuggestionsByTier buckets search results into the fixed budget /
// mid-range / premium USD tiers, keeping the five cheapest per tier.
func (s *Searcher) PriceSuggestionsByTier(ctx context.Context, query string) map[string][]models.Product {
	tiers := []struct {
		name string
		min  float64
		max  float64
	}{
		{models.CategoryBudget, 0, 100},
		{models.CategoryMidRange, 100, 300},
		{models.CategoryPremium, 300, 1000},
	}

	suggestions := make(map[string][]models.Product, len(tiers))
	for _, tier := range tiers {
		min, max := tier.min, tier.max
		filters := models.SearchFilters{
			MinPriceUSD: &min,
			MaxPriceUSD: &max,
			SortBy:      models.SortPriceAsc,
		}

		products := s.SearchWithFilters(ctx, query, filters)
		if len(products) > tierTopN {
			products = products[:tierTopN]
		}
		suggestions[tier.name] = products
	}

	return suggestions
}

func (s *Searcher) searchPopularCategories(ctx context.Context, filters models.SearchFilters) []models.Product {
	var all []models.Product
	for _, category := range popularCategories {
		products := s.SearchWithFilters(ctx, category, filters)
		if len(products) > 10 {
			products = products[:10]
		}
		all = append(all, products...)
	}
	return all
}
