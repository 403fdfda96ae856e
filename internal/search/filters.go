package search

import (
	"sort"
	"strings"

	"github.com/brasildev/paraguay-price-scout/internal/models"
)

// ApplyFilters narrows a candidate list with the numeric, set-membership
// and stock predicates of the filter. Nil bounds impose no constraint.
func ApplyFilters(products []models.Product, filters models.SearchFilters) []models.Product {
	filtered := make([]models.Product, 0, len(products))

	categories := lowerSet(filters.Categories)
	brands := lowerSet(filters.Brands)

	for _, p := range products {
		if filters.MinPriceUSD != nil && p.PriceUSD < *filters.MinPriceUSD {
			continue
		}
		if filters.MaxPriceUSD != nil && p.PriceUSD > *filters.MaxPriceUSD {
			continue
		}
		if filters.MinPriceBRL != nil && p.PriceBRL < *filters.MinPriceBRL {
			continue
		}
		if filters.MaxPriceBRL != nil && p.PriceBRL > *filters.MaxPriceBRL {
			continue
		}
		if len(categories) > 0 && !categories[strings.ToLower(p.Category)] {
			continue
		}
		if len(brands) > 0 && !brands[strings.ToLower(p.Brand)] {
			continue
		}
		if filters.InStockOnly && !p.InStock() {
			continue
		}
		filtered = append(filtered, p)
	}

	return filtered
}

// SortProducts orders products by the given sort key. The sort is stable
// so that source ordering survives ties; an unknown key keeps the original
// (relevance) order.
func SortProducts(products []models.Product, sortBy string) []models.Product {
	sorted := make([]models.Product, len(products))
	copy(sorted, products)

	switch sortBy {
	case models.SortPriceAsc:
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].PriceUSD < sorted[j].PriceUSD })
	case models.SortPriceDesc:
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].PriceUSD > sorted[j].PriceUSD })
	case models.SortName:
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	}

	return sorted
}

func lowerSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = true
	}
	return set
}
