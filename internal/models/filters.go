package models

// Sort keys accepted by SearchFilters.SortBy.
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortName      = "name"
	SortRelevance = "relevance"
)

// SearchFilters narrows a candidate product list before opportunity
// analysis. Nil bounds impose no constraint. A filter is a pure predicate
// and sort specification; it has no stored identity.
type SearchFilters struct {
	MinPriceUSD *float64 `json:"min_price_usd,omitempty"`
	MaxPriceUSD *float64 `json:"max_price_usd,omitempty"`
	MinPriceBRL *float64 `json:"min_price_brl,omitempty"`
	MaxPriceBRL *float64 `json:"max_price_brl,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Brands      []string `json:"brands,omitempty"`
	InStockOnly bool     `json:"in_stock_only"`
	SortBy      string   `json:"sort_by,omitempty"`
}

// Price categories and value ratings used by the listing-score rubric.
const (
	CategoryBudget   = "budget"
	CategoryMidRange = "mid_range"
	CategoryPremium  = "premium"

	RatingExcellent = "excellent"
	RatingGood      = "good"
	RatingFair      = "fair"
	RatingPoor      = "poor"
)

// OpportunityAnalysis is the advanced-search verdict for one listing.
//
// Score uses the 0–14 listing rubric, which is deliberately distinct from
// the 0–10 market-analysis opportunity score. The two rubrics coexist in
// the product and must not be unified.
type OpportunityAnalysis struct {
	Product         Product  `json:"product"`
	Score           float64  `json:"opportunity_score"`
	PriceCategory   string   `json:"price_category"`
	ValueRating     string   `json:"value_rating"`
	Recommendations []string `json:"recommendations"`
}
