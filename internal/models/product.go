package models

import (
	"strings"
	"time"
)

// Stock status values after normalization. Extractors report free-form
// storefront strings ("Em estoque", "Fora de estoque", ...) which are
// mapped onto these at the coercion boundary.
const (
	StockInStock    = "in_stock"
	StockOutOfStock = "out_of_stock"
	StockLimited    = "limited"
)

// Product is a normalized product record extracted from a Paraguayan
// storefront. Records are immutable once extracted; the analysis pipeline
// only reads them.
type Product struct {
	Code         string    `json:"code,omitempty"`
	Name         string    `json:"name"`
	Brand        string    `json:"brand,omitempty"`
	Model        string    `json:"model,omitempty"`
	Category     string    `json:"category,omitempty"`
	PriceUSD     float64   `json:"price_usd"`
	PriceBRL     float64   `json:"price_brl"`
	Stock        string    `json:"stock,omitempty"`
	URL          string    `json:"url"`
	ExchangeRate float64   `json:"exchange_rate,omitempty"`
	Site         string    `json:"site,omitempty"`
	ExtractedAt  time.Time `json:"extracted_at,omitempty"`
}

func (p *Product) InStock() bool {
	return p.Stock == StockInStock
}

func (p *Product) Validate() []string {
	var errs []string

	if p.Name == "" {
		errs = append(errs, "name is required")
	}
	if p.URL == "" {
		errs = append(errs, "url is required")
	}
	if p.PriceUSD <= 0 {
		errs = append(errs, "price_usd must be positive")
	}

	return errs
}

// NormalizeStock maps a raw storefront availability string onto one of the
// Stock* constants. Unknown strings normalize to empty.
func NormalizeStock(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s == "":
		return ""
	case s == StockInStock || s == StockOutOfStock || s == StockLimited:
		return s
	case strings.Contains(s, "fora") || strings.Contains(s, "out of"):
		return StockOutOfStock
	case strings.Contains(s, "limit"):
		return StockLimited
	case strings.Contains(s, "estoque") || strings.Contains(s, "stock") || strings.Contains(s, "dispon"):
		return StockInStock
	default:
		return ""
	}
}
