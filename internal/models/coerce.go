package models

import (
	"strconv"
	"strings"
	"time"
)

// CoerceProduct builds a Product from an untrusted, possibly-partial
// mapping, such as the JSON an LLM extraction step returns. Missing or
// malformed fields default to zero values so downstream scoring stays
// total; negative prices are clamped to zero.
func CoerceProduct(raw map[string]any) Product {
	p := Product{
		Code:     coerceString(raw["code"]),
		Name:     coerceString(raw["name"]),
		Brand:    coerceString(raw["brand"]),
		Model:    coerceString(raw["model"]),
		Category: coerceString(raw["category"]),
		PriceUSD: ParsePrice(raw["price_usd"]),
		PriceBRL: ParsePrice(raw["price_brl"]),
		Stock:    NormalizeStock(coerceString(raw["stock"])),
		URL:      coerceString(raw["url"]),
	}

	if rate := ParsePrice(raw["exchange_rate"]); rate > 0 {
		p.ExchangeRate = rate
	}
	p.ExtractedAt = time.Now()

	return p
}

// ParsePrice coerces an arbitrary JSON value into a non-negative price.
// Strings may carry currency symbols and either decimal convention
// ("U$ 1.299,90" or "1299.90"). Anything unparseable yields 0.
func ParsePrice(v any) float64 {
	switch n := v.(type) {
	case float64:
		return clampPrice(n)
	case float32:
		return clampPrice(float64(n))
	case int:
		return clampPrice(float64(n))
	case int64:
		return clampPrice(float64(n))
	case string:
		return clampPrice(parsePriceString(n))
	default:
		return 0
	}
}

func clampPrice(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func parsePriceString(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0
	}

	// Decide which separator is decimal: the rightmost one wins, the other
	// is treated as a thousands separator.
	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")
	if lastComma > lastDot {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	} else if lastDot > lastComma {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	val, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return val
}

func coerceString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
