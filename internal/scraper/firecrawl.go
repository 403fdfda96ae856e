package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// FirecrawlClient drives a Firecrawl instance (usually self-hosted) to
// fetch rendered storefront pages.
type FirecrawlClient struct {
	baseURL string
	apiKey  string
	waitFor int
	http    *http.Client
	logger  *slog.Logger
}

type FirecrawlOptions struct {
	BaseURL string
	APIKey  string
	WaitFor time.Duration
	Timeout time.Duration
}

func NewFirecrawlClient(opts FirecrawlOptions, logger *slog.Logger) *FirecrawlClient {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	waitFor := int(opts.WaitFor.Milliseconds())
	if waitFor == 0 {
		waitFor = 2000
	}
	return &FirecrawlClient{
		baseURL: opts.BaseURL,
		apiKey:  opts.APIKey,
		waitFor: waitFor,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With("component", "firecrawl"),
	}
}

type scrapeRequest struct {
	URL         string   `json:"url"`
	Formats     []string `json:"formats"`
	ExcludeTags []string `json:"excludeTags,omitempty"`
	WaitFor     int      `json:"waitFor,omitempty"`
}

type scrapeResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Markdown string `json:"markdown"`
		HTML     string `json:"html"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

// FetchPage implements PageFetcher over the Firecrawl scrape endpoint.
func (c *FirecrawlClient) FetchPage(ctx context.Context, url string) (*PageContent, error) {
	c.logger.Debug("crawling page", "url", url)

	body, err := json.Marshal(scrapeRequest{
		URL:         url,
		Formats:     []string{"markdown", "html"},
		ExcludeTags: []string{"script", "style", "nav", "footer", "header"},
		WaitFor:     c.waitFor,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode scrape request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/scrape", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build scrape request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("firecrawl returned %d: %s", resp.StatusCode, payload)
	}

	var parsed scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode scrape response: %w", err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("firecrawl scrape failed: %s", parsed.Error)
	}

	return &PageContent{
		Markdown: parsed.Data.Markdown,
		HTML:     parsed.Data.HTML,
	}, nil
}
