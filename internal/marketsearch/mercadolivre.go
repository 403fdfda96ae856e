package marketsearch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/brasildev/paraguay-price-scout/internal/models"
	"github.com/brasildev/paraguay-price-scout/internal/ratelimit"
	"github.com/brasildev/paraguay-price-scout/internal/retry"
)

const (
	mercadoLivreName    = "Mercado Livre"
	mercadoLivreListURL = "https://lista.mercadolivre.com.br/"

	maxResultsPerPage = 5
	maxObservations   = 10
)

// Noise tokens stripped from product names before searching. Storefront
// listings carry packaging and connectivity suffixes that hurt recall on
// marketplace search.
var queryStopWords = map[string]struct{}{
	"cel":        {},
	"smartphone": {},
	"dual":       {},
	"sim":        {},
	"lte":        {},
	"cx":         {},
	"slim":       {},
}

var nonQueryChars = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// CleanQuery reduces a storefront product name to marketplace search
// terms: lowercase, punctuation stripped, noise tokens removed, at most
// five words.
func CleanQuery(name string) string {
	cleaned := nonQueryChars.ReplaceAllString(strings.ToLower(name), " ")

	words := make([]string, 0, 5)
	for _, word := range strings.Fields(cleaned) {
		if _, skip := queryStopWords[word]; skip {
			continue
		}
		words = append(words, word)
		if len(words) == 5 {
			break
		}
	}
	return strings.Join(words, " ")
}

// MercadoLivre collects official-market price observations by scraping
// the public search listing.
type MercadoLivre struct {
	http    *http.Client
	listURL string
	limiter ratelimit.Limiter
	retry   retry.Policy
	logger  *slog.Logger
}

type MercadoLivreOptions struct {
	// ListURL overrides the production listing endpoint, for tests.
	ListURL string
	Timeout time.Duration
}

func NewMercadoLivre(opts MercadoLivreOptions, limiter ratelimit.Limiter, retryPolicy retry.Policy, logger *slog.Logger) *MercadoLivre {
	listURL := opts.ListURL
	if listURL == "" {
		listURL = mercadoLivreListURL
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &MercadoLivre{
		http:    &http.Client{Timeout: timeout},
		listURL: listURL,
		limiter: limiter,
		retry:   retryPolicy,
		logger:  logger.With("component", "mercadolivre"),
	}
}

// Search returns up to maxObservations price observations for the given
// product name. An empty cleaned query returns no observations.
func (m *MercadoLivre) Search(ctx context.Context, productName string) ([]models.MarketPrice, error) {
	query := CleanQuery(productName)
	if query == "" {
		return nil, nil
	}

	searchURL := m.listURL + strings.ReplaceAll(query, " ", "-")
	m.logger.Debug("searching marketplace", "query", query, "url", searchURL)

	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var body []byte
	err := m.retry.Do(ctx, "mercadolivre search", func() error {
		var err error
		body, err = m.fetch(ctx, searchURL)
		return err
	})
	if err != nil {
		return nil, err
	}

	prices, err := parseListing(body)
	if err != nil {
		return nil, err
	}
	if len(prices) > maxObservations {
		prices = prices[:maxObservations]
	}

	m.logger.Info("marketplace search finished", "query", query, "found", len(prices))
	return prices, nil
}

func (m *MercadoLivre) fetch(ctx context.Context, searchURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9")

	resp, err := m.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mercadolivre returned %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 4<<20))
}

// parseListing extracts price observations from a search results page.
// Only the first maxResultsPerPage cards are considered per page.
func parseListing(html []byte) ([]models.MarketPrice, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return nil, err
	}

	var prices []models.MarketPrice
	doc.Find("li.ui-search-layout__item, div.ui-search-result__wrapper").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		price := cardPrice(card)
		if price <= 0 {
			return true
		}

		observation := models.MarketPrice{
			Source:       mercadoLivreName,
			PriceBRL:     price,
			Condition:    models.ConditionNew,
			Availability: models.AvailabilityInStock,
			FoundAt:      time.Now(),
		}
		if href, ok := card.Find("a").First().Attr("href"); ok {
			observation.URL = href
		}
		if seller := strings.TrimSpace(card.Find(".ui-search-official-store-label, .ui-search-item__brand-discoverability").First().Text()); seller != "" {
			observation.Seller = seller
		}

		prices = append(prices, observation)
		return len(prices) < maxResultsPerPage
	})

	return prices, nil
}

func cardPrice(card *goquery.Selection) float64 {
	amount := strings.TrimSpace(card.Find(".andes-money-amount__fraction").First().Text())
	if amount == "" {
		return 0
	}

	// The fraction node holds the integer part with dots as thousands
	// separators; cents live in a sibling node.
	text := strings.ReplaceAll(amount, ".", "")
	if cents := strings.TrimSpace(card.Find(".andes-money-amount__cents").First().Text()); cents != "" {
		text += "," + cents
	}
	return models.ParsePrice(text)
}
