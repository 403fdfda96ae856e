package marketsearch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brasildev/paraguay-price-scout/internal/models"
	"github.com/brasildev/paraguay-price-scout/internal/ratelimit"
	"github.com/brasildev/paraguay-price-scout/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCleanQuery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"strips noise tokens", "Cel Xiaomi Redmi Note 13 Dual SIM LTE", "xiaomi redmi note 13"},
		{"caps at five words", "Samsung Galaxy A54 128GB Preto Versao Global Lacrado", "samsung galaxy a54 128gb preto"},
		{"drops punctuation", "iPhone 15 (128GB) - Azul!", "iphone 15 128gb azul"},
		{"all noise", "cel dual sim", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanQuery(tt.input))
		})
	}
}

const listingPage = `
<html><body><ol>
  <li class="ui-search-layout__item">
    <a href="https://produto.mercadolivre.com.br/MLB-1">item</a>
    <span class="andes-money-amount__fraction">1.299</span>
    <span class="andes-money-amount__cents">90</span>
    <span class="ui-search-official-store-label">Loja oficial Xiaomi</span>
  </li>
  <li class="ui-search-layout__item">
    <a href="https://produto.mercadolivre.com.br/MLB-2">item</a>
    <span class="andes-money-amount__fraction">1.450</span>
  </li>
  <li class="ui-search-layout__item">
    <span class="ui-search-item__title">no price card</span>
  </li>
  <li class="ui-search-layout__item">
    <a href="https://produto.mercadolivre.com.br/MLB-3">item</a>
    <span class="andes-money-amount__fraction">999</span>
  </li>
</ol></body></html>`

func TestParseListing(t *testing.T) {
	prices, err := parseListing([]byte(listingPage))
	require.NoError(t, err)
	require.Len(t, prices, 3)

	assert.InDelta(t, 1299.90, prices[0].PriceBRL, 1e-9)
	assert.Equal(t, "https://produto.mercadolivre.com.br/MLB-1", prices[0].URL)
	assert.Equal(t, "Loja oficial Xiaomi", prices[0].Seller)
	assert.Equal(t, mercadoLivreName, prices[0].Source)
	assert.Equal(t, models.AvailabilityInStock, prices[0].Availability)

	assert.InDelta(t, 1450.0, prices[1].PriceBRL, 1e-9)
	assert.InDelta(t, 999.0, prices[2].PriceBRL, 1e-9)
}

func TestParseListingCapsPerPage(t *testing.T) {
	page := "<html><body><ol>"
	for i := 0; i < 8; i++ {
		page += `<li class="ui-search-layout__item"><span class="andes-money-amount__fraction">100</span></li>`
	}
	page += "</ol></body></html>"

	prices, err := parseListing([]byte(page))
	require.NoError(t, err)
	assert.Len(t, prices, maxResultsPerPage)
}

func newTestMercadoLivre(listURL string) *MercadoLivre {
	limiter := ratelimit.NewIntervalLimiter(0, 0)
	policy := retry.NewPolicy(1, time.Millisecond, discard())
	return NewMercadoLivre(MercadoLivreOptions{ListURL: listURL}, limiter, policy, discard())
}

func TestMercadoLivreSearch(t *testing.T) {
	var requested string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		io.WriteString(w, listingPage)
	}))
	defer server.Close()

	ml := newTestMercadoLivre(server.URL + "/")

	prices, err := ml.Search(context.Background(), "Cel Xiaomi Redmi Note 13 Dual SIM")
	require.NoError(t, err)

	assert.Equal(t, "/xiaomi-redmi-note-13", requested)
	assert.Len(t, prices, 3)
}

func TestMercadoLivreSearchEmptyQuery(t *testing.T) {
	ml := newTestMercadoLivre("http://127.0.0.1:1/")

	prices, err := ml.Search(context.Background(), "cel dual sim")
	require.NoError(t, err)
	assert.Empty(t, prices)
}

func TestMercadoLivreSearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	ml := newTestMercadoLivre(server.URL + "/")

	_, err := ml.Search(context.Background(), "xiaomi redmi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
