package scraper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/brasildev/paraguay-price-scout/internal/llm"
	"github.com/brasildev/paraguay-price-scout/internal/ratelimit"
	"github.com/brasildev/paraguay-price-scout/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	pages map[string]*PageContent
	err   error
	urls  []string
}

func (s *stubFetcher) FetchPage(_ context.Context, url string) (*PageContent, error) {
	s.urls = append(s.urls, url)
	if s.err != nil {
		return nil, s.err
	}
	if page, ok := s.pages[url]; ok {
		return page, nil
	}
	return &PageContent{HTML: "<html></html>"}, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestScraper(fetcher PageFetcher, client *llm.Client) *MegaEletronicos {
	limiter := ratelimit.NewIntervalLimiter(0, 0)
	policy := retry.NewPolicy(1, time.Millisecond, discard())
	return NewMegaEletronicos(fetcher, client, limiter, policy, discard())
}

func TestExtractProductSelectorFallback(t *testing.T) {
	productURL := megaBaseURL + "/producto/redmi-note-13"
	fetcher := &stubFetcher{pages: map[string]*PageContent{
		productURL: {HTML: productPage},
	}}

	scraper := newTestScraper(fetcher, nil)

	product, err := scraper.ExtractProduct(context.Background(), "/producto/redmi-note-13")
	require.NoError(t, err)

	assert.Equal(t, "Xiaomi Redmi Note 13 256GB", product.Name)
	assert.Equal(t, megaSiteName, product.Site)
	assert.Equal(t, productURL, product.URL)
	assert.InDelta(t, 189.0, product.PriceUSD, 1e-9)
}

func TestExtractProductFetchError(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("connection refused")}
	scraper := newTestScraper(fetcher, nil)

	_, err := scraper.ExtractProduct(context.Background(), megaBaseURL+"/producto/x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch product page")
}

func TestExtractProductUnusablePage(t *testing.T) {
	fetcher := &stubFetcher{}
	scraper := newTestScraper(fetcher, nil)

	_, err := scraper.ExtractProduct(context.Background(), megaBaseURL+"/producto/x")
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestSearchProductsRequiresLLM(t *testing.T) {
	scraper := newTestScraper(&stubFetcher{}, nil)

	_, err := scraper.SearchProducts(context.Background(), "redmi", "")
	require.Error(t, err)
}

func TestCategoriesFallback(t *testing.T) {
	scraper := newTestScraper(&stubFetcher{}, nil)

	categories, err := scraper.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, defaultCategories, categories)
}

func TestExtractProductResolvesRelativeURL(t *testing.T) {
	fetcher := &stubFetcher{}
	scraper := newTestScraper(fetcher, nil)

	scraper.ExtractProduct(context.Background(), "/producto/abc")

	require.Len(t, fetcher.urls, 1)
	assert.True(t, strings.HasPrefix(fetcher.urls[0], megaBaseURL), fetcher.urls[0])
}
