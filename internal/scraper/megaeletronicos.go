package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/brasildev/paraguay-price-scout/internal/llm"
	"github.com/brasildev/paraguay-price-scout/internal/models"
	"github.com/brasildev/paraguay-price-scout/internal/ratelimit"
	"github.com/brasildev/paraguay-price-scout/internal/retry"
)

const (
	megaSiteName = "Mega Eletrônicos"
	megaBaseURL  = "https://www.megaeletronicos.com"

	maxSearchResults = 20
)

// Returned when a product page yields no usable record.
var ErrExtractionFailed = errors.New("scraper: product extraction failed")

// Fallback when the category menu cannot be read.
var defaultCategories = []string{"Eletrônicos", "Telefonia", "Casa & Cozinha", "Perfumaria & Cosméticos"}

// Extraction prompts. Field names match the models.CoerceProduct contract.
const (
	productPrompt = `Analyze this Mega Eletrônicos product page and extract:
{
  "code": "product code",
  "name": "full product name",
  "brand": "brand",
  "model": "specific model",
  "category": "product category",
  "price_usd": price in USD as a number,
  "price_brl": price in BRL as a number,
  "stock": "stock status (Em estoque, Fora de estoque, ...)",
  "url": "product URL"
}
Use null for anything not clearly visible. Prices must be plain numbers
(84.50, not "U$ 84.50"). Keep the JSON valid.`

	searchPrompt = `Analyze this Mega Eletrônicos page and list every product found.
Only include links containing "/producto/" in the URL. Return a JSON array:
[
  {"name": "...", "url": "...", "price_usd": number, "price_brl": number,
   "category": "...", "stock": "..."}
]
Limit to the 20 most relevant products. Use null for missing values.`

	ratePrompt = `Find the current USD exchange rate on this Mega Eletrônicos page.
Look for "Dólar hoje", "Cotação", "Câmbio" or values like "1 USD = X.XX BRL".
Return only: {"usd_to_brl": number}, or {"usd_to_brl": null} if absent.`

	categoriesPrompt = `Extract the product categories from this Mega Eletrônicos
home page navigation. Return a plain JSON array of category names, main
departments only, original names.`
)

// MegaEletronicos scrapes megaeletronicos.com through a page fetcher and
// an LLM extraction client. Requests are rate limited and retried with
// backoff at this boundary; the analysis core never retries.
type MegaEletronicos struct {
	fetcher PageFetcher
	llm     *llm.Client
	limiter ratelimit.Limiter
	retry   retry.Policy
	logger  *slog.Logger
}

func NewMegaEletronicos(fetcher PageFetcher, extractor *llm.Client, limiter ratelimit.Limiter, retryPolicy retry.Policy, logger *slog.Logger) *MegaEletronicos {
	return &MegaEletronicos{
		fetcher: fetcher,
		llm:     extractor,
		limiter: limiter,
		retry:   retryPolicy,
		logger:  logger.With("component", "mega_eletronicos"),
	}
}

func (m *MegaEletronicos) SiteName() string { return megaSiteName }
func (m *MegaEletronicos) BaseURL() string  { return megaBaseURL }

// ExtractProduct scrapes one product page and returns a coerced record.
func (m *MegaEletronicos) ExtractProduct(ctx context.Context, productURL string) (*models.Product, error) {
	if !strings.HasPrefix(productURL, "http") {
		joined, err := url.JoinPath(megaBaseURL, productURL)
		if err != nil {
			return nil, fmt.Errorf("invalid product URL %q: %w", productURL, err)
		}
		productURL = joined
	}

	m.logger.Info("extracting product", "url", productURL)

	page, err := m.fetchPage(ctx, productURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product page: %w", err)
	}

	raw, err := m.extractRecord(ctx, page, productPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	raw["url"] = productURL

	product := models.CoerceProduct(raw)
	product.Site = megaSiteName
	if errs := product.Validate(); len(errs) > 0 {
		m.logger.Warn("extracted record failed validation", "url", productURL, "problems", errs)
		return nil, fmt.Errorf("%w: %s", ErrExtractionFailed, strings.Join(errs, "; "))
	}

	m.logger.Info("product extracted", "name", product.Name, "price_usd", product.PriceUSD)
	return &product, nil
}

// SearchProducts runs a storefront search and extracts the result list.
// Records that fail coercion are skipped, not fatal.
func (m *MegaEletronicos) SearchProducts(ctx context.Context, query, category string) ([]models.Product, error) {
	searchURL := megaBaseURL + "/"
	if query != "" {
		searchURL += "?search=" + url.QueryEscape(query)
	}

	m.logger.Info("searching products", "query", query, "category", category)

	page, err := m.fetchPage(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch search page: %w", err)
	}

	if m.llm == nil {
		return nil, errors.New("scraper: search requires the llm extraction client")
	}
	payload, err := m.llm.ExtractJSON(ctx, page.Markdown+"\n\n"+page.HTML, searchPrompt)
	if err != nil {
		return nil, fmt.Errorf("search extraction failed: %w", err)
	}

	var rawList []map[string]any
	if err := json.Unmarshal(payload, &rawList); err != nil {
		return nil, fmt.Errorf("search results are not a list: %w", err)
	}

	products := make([]models.Product, 0, len(rawList))
	for _, raw := range rawList {
		product := models.CoerceProduct(raw)
		if product.URL == "" || !strings.Contains(product.URL, "/producto/") {
			continue
		}
		product.Site = megaSiteName
		products = append(products, product)
		if len(products) == maxSearchResults {
			break
		}
	}

	m.logger.Info("search finished", "query", query, "found", len(products))
	return products, nil
}

// Categories lists the storefront departments, falling back to a static
// set when the menu cannot be extracted.
func (m *MegaEletronicos) Categories(ctx context.Context) ([]string, error) {
	if m.llm == nil {
		return defaultCategories, nil
	}

	page, err := m.fetchPage(ctx, megaBaseURL)
	if err != nil {
		m.logger.Warn("failed to fetch home page for categories", "error", err)
		return defaultCategories, nil
	}

	payload, err := m.llm.ExtractJSON(ctx, page.Markdown, categoriesPrompt)
	if err != nil {
		return defaultCategories, nil
	}

	var categories []string
	if err := json.Unmarshal(payload, &categories); err != nil || len(categories) == 0 {
		return defaultCategories, nil
	}
	return categories, nil
}

// CurrentExchangeRate reads the USD quote published on the storefront
// home page. It implements the analyzer rate source (via the cache layer).
func (m *MegaEletronicos) CurrentExchangeRate(ctx context.Context) (float64, error) {
	if m.llm == nil {
		return 0, errors.New("scraper: rate extraction requires the llm client")
	}

	page, err := m.fetchPage(ctx, megaBaseURL)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch home page: %w", err)
	}

	payload, err := m.llm.ExtractJSON(ctx, page.Markdown+"\n\n"+page.HTML, ratePrompt)
	if err != nil {
		return 0, fmt.Errorf("rate extraction failed: %w", err)
	}

	var parsed struct {
		USDToBRL *float64 `json:"usd_to_brl"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil || parsed.USDToBRL == nil || *parsed.USDToBRL <= 0 {
		return 0, errors.New("exchange rate not found on page")
	}

	m.logger.Info("exchange rate extracted", "usd_to_brl", *parsed.USDToBRL)
	return *parsed.USDToBRL, nil
}

func (m *MegaEletronicos) fetchPage(ctx context.Context, pageURL string) (*PageContent, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var page *PageContent
	err := m.retry.Do(ctx, "fetch "+pageURL, func() error {
		var err error
		page, err = m.fetcher.FetchPage(ctx, pageURL)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (m *MegaEletronicos) extractRecord(ctx context.Context, page *PageContent, prompt string) (map[string]any, error) {
	if m.llm != nil {
		payload, err := m.llm.ExtractJSON(ctx, page.Markdown+"\n\n"+page.HTML, prompt)
		if err == nil {
			var raw map[string]any
			if err := json.Unmarshal(payload, &raw); err == nil {
				return raw, nil
			}
		}
		m.logger.Warn("llm extraction failed, falling back to selectors", "error", err)
	}

	return parseProductHTML(page.HTML)
}

var _ Extractor = (*MegaEletronicos)(nil)
