package analyzer

import "github.com/brasildev/paraguay-price-scout/internal/models"

// Default import-duty parameters for bringing goods from Paraguay into
// Brazil: a flat 60% import tax over the converted price plus fixed
// shipping and handling fees in BRL.
const (
	DefaultExchangeRate = 5.5
	DefaultImportTax    = 0.60
	DefaultShippingFee  = 50.0
	DefaultHandlingFee  = 30.0
)

// CostParams holds the duty regime used by the cost estimator. The values
// are configuration constants; only the exchange rate varies per call.
type CostParams struct {
	DefaultExchangeRate float64
	ImportTaxRate       float64
	ShippingFee         float64
	HandlingFee         float64
}

func DefaultCostParams() CostParams {
	return CostParams{
		DefaultExchangeRate: DefaultExchangeRate,
		ImportTaxRate:       DefaultImportTax,
		ShippingFee:         DefaultShippingFee,
		HandlingFee:         DefaultHandlingFee,
	}
}

// Estimate converts a USD source price into a full landed-cost breakdown.
// A non-positive exchange rate falls back to the configured default; a
// negative price is clamped to zero so the function stays total (the
// coercion boundary already rejects negative prices, this keeps the
// estimator consistent with it).
func (cp CostParams) Estimate(priceUSD, exchangeRate float64) models.CostBreakdown {
	if exchangeRate <= 0 {
		exchangeRate = cp.DefaultExchangeRate
	}
	if priceUSD < 0 {
		priceUSD = 0
	}

	priceBRL := priceUSD * exchangeRate
	importTax := priceBRL * cp.ImportTaxRate
	importCost := importTax + cp.ShippingFee + cp.HandlingFee

	return models.CostBreakdown{
		ExchangeRate: exchangeRate,
		PriceBRL:     priceBRL,
		ImportTax:    importTax,
		Shipping:     cp.ShippingFee,
		Handling:     cp.HandlingFee,
		ImportCost:   importCost,
		TotalCost:    priceBRL + importCost,
	}
}
