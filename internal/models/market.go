package models

import "time"

// Market price condition values.
const (
	ConditionNew         = "new"
	ConditionUsed        = "used"
	ConditionRefurbished = "refurbished"
)

// Market price availability values. Same domain as the Stock* constants
// on Product; observations collected from marketplaces only ever report
// listings that are for sale, so collectors set in_stock.
const (
	AvailabilityInStock    = "in_stock"
	AvailabilityOutOfStock = "out_of_stock"
	AvailabilityLimited    = "limited"
)

// MarketPrice is a single comparable price observation collected from a
// Brazilian marketplace. Pool membership (official vs. gray market) is
// decided by the source that produced the observation, never by the price.
type MarketPrice struct {
	Source       string    `json:"source"`
	PriceBRL     float64   `json:"price_brl"`
	URL          string    `json:"url,omitempty"`
	Seller       string    `json:"seller,omitempty"`
	Condition    string    `json:"condition,omitempty"`
	Availability string    `json:"availability,omitempty"`
	ShippingCost *float64  `json:"shipping_cost,omitempty"`
	FoundAt      time.Time `json:"found_at,omitempty"`
}

// PriceStats summarizes a pool of observations. Min/Max/Avg are nil when
// the pool is empty; callers must treat absent stats as "no data", not as
// zero.
type PriceStats struct {
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
	Avg   *float64 `json:"avg"`
	Count int      `json:"count"`
}

func (s PriceStats) HasData() bool {
	return s.Count > 0 && s.Avg != nil
}

// CostBreakdown is the landed-cost estimate for importing one unit into
// Brazil. All monetary fields are BRL.
type CostBreakdown struct {
	ExchangeRate float64 `json:"exchange_rate"`
	PriceBRL     float64 `json:"price_brl"`
	ImportTax    float64 `json:"import_tax"`
	Shipping     float64 `json:"shipping"`
	Handling     float64 `json:"handling"`
	ImportCost   float64 `json:"import_cost"`
	TotalCost    float64 `json:"total_cost"`
}

// Market position classifications relative to the official-market average.
const (
	PositionUnknown     = "unknown"
	PositionBudget      = "budget"
	PositionCompetitive = "competitive"
	PositionPremium     = "premium"
)

// MarketAnalysis is the aggregate result of analyzing one product. It is
// created fresh per analysis call; the caller owns persistence.
type MarketAnalysis struct {
	ProductName    string  `json:"product_name"`
	SourcePriceUSD float64 `json:"source_price_usd"`
	SourcePriceBRL float64 `json:"source_price_brl"`

	OfficialMarket []MarketPrice `json:"official_market"`
	GrayMarket     []MarketPrice `json:"gray_market"`

	OfficialStats PriceStats `json:"official_stats"`
	GrayStats     PriceStats `json:"gray_stats"`

	Costs CostBreakdown `json:"costs"`

	SuggestedPrices  map[string]float64 `json:"suggested_prices"`
	OpportunityScore float64            `json:"opportunity_score"`
	MarketPosition   string             `json:"market_position"`
	Recommendations  []string           `json:"recommendations"`

	AnalyzedAt time.Time `json:"analyzed_at"`
}
