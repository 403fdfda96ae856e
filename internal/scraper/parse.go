package scraper

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoProductData is returned when the selector fallback finds nothing
// usable on a page.
var ErrNoProductData = errors.New("scraper: no product data found in page")

// parseProductHTML extracts a product record with CSS selectors. It is
// the fallback path when no LLM client is configured; coverage is
// intentionally narrower than the extraction prompt.
func parseProductHTML(html string) (map[string]any, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	raw := map[string]any{}

	if name := firstText(doc, "h1.product-title", "h1[itemprop='name']", "h1"); name != "" {
		raw["name"] = name
	}
	if price := firstText(doc, ".product-price-usd", "[data-price-usd]", ".price .usd", "span.price"); price != "" {
		raw["price_usd"] = price
	}
	if price := firstText(doc, ".product-price-brl", "[data-price-brl]", ".price .brl"); price != "" {
		raw["price_brl"] = price
	}
	if brand := firstText(doc, ".product-brand", "[itemprop='brand']"); brand != "" {
		raw["brand"] = brand
	}
	if stock := firstText(doc, ".product-stock", ".stock-status", "[itemprop='availability']"); stock != "" {
		raw["stock"] = stock
	}
	if category := firstText(doc, ".breadcrumb li:nth-last-child(2)", ".product-category"); category != "" {
		raw["category"] = category
	}

	if raw["name"] == nil || raw["price_usd"] == nil {
		return nil, ErrNoProductData
	}
	return raw, nil
}

func firstText(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}
