package scraper

import (
	"context"

	"github.com/brasildev/paraguay-price-scout/internal/models"
)

// PageContent is a scraped page in the formats the extraction step works
// with. Markdown may be empty when the fetcher only renders HTML.
type PageContent struct {
	Markdown string
	HTML     string
}

// PageFetcher retrieves the rendered content of a storefront page. The
// Firecrawl client and the playwright browser both implement it.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (*PageContent, error)
}

// Extractor is the capability a site-specific storefront scraper must
// provide. The analysis pipeline depends only on this interface, never on
// a concrete site implementation.
type Extractor interface {
	SiteName() string
	BaseURL() string
	ExtractProduct(ctx context.Context, url string) (*models.Product, error)
	SearchProducts(ctx context.Context, query, category string) ([]models.Product, error)
	Categories(ctx context.Context) ([]string, error)
}
