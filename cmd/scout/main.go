package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/brasildev/paraguay-price-scout/internal/analyzer"
	"github.com/brasildev/paraguay-price-scout/internal/browser"
	"github.com/brasildev/paraguay-price-scout/internal/config"
	"github.com/brasildev/paraguay-price-scout/internal/llm"
	"github.com/brasildev/paraguay-price-scout/internal/marketsearch"
	"github.com/brasildev/paraguay-price-scout/internal/ratelimit"
	"github.com/brasildev/paraguay-price-scout/internal/retry"
	"github.com/brasildev/paraguay-price-scout/internal/scraper"
	"github.com/brasildev/paraguay-price-scout/internal/search"
)

// scout is the terminal companion to the API server: one-shot analyses
// without a database or redis.
func main() {
	var (
		productURL    = flag.String("url", "", "analyze one product page")
		query         = flag.String("query", "", "search the storefront and analyze the results")
		category      = flag.String("category", "", "restrict a search to one category")
		opportunities = flag.Bool("opportunities", false, "scan for resale opportunities")
		suggestions   = flag.Bool("suggestions", false, "bucket search results into price tiers")
		rate          = flag.Bool("rate", false, "print the current USD exchange rate")
		maxPrice      = flag.Float64("max-price", 500, "price ceiling in USD for opportunity scans")
		minScore      = flag.Float64("min-score", 7, "minimum listing score for opportunity scans")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := buildApp(cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer cleanup()

	switch {
	case *productURL != "":
		err = app.analyzeURL(ctx, *productURL)
	case *opportunities:
		err = app.scanOpportunities(ctx, *query, *maxPrice, *minScore)
	case *suggestions && *query != "":
		err = app.suggestTiers(ctx, *query)
	case *query != "":
		err = app.analyzeQuery(ctx, *query, *category)
	case *rate:
		err = app.printRate(ctx)
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	mega     *scraper.MegaEletronicos
	analyzer *analyzer.Analyzer
	searcher *search.Searcher
}

func buildApp(cfg *config.Config, logger *slog.Logger) (*app, func(), error) {
	cleanup := func() {}

	var fetcher scraper.PageFetcher
	if cfg.Firecrawl.BaseURL != "" {
		fetcher = scraper.NewFirecrawlClient(scraper.FirecrawlOptions{
			BaseURL: cfg.Firecrawl.BaseURL,
			APIKey:  cfg.Firecrawl.APIKey,
			WaitFor: cfg.Firecrawl.WaitFor,
		}, logger)
	} else {
		b, err := browser.New(&browser.Options{
			Headless:       cfg.Browser.Headless,
			Timeout:        cfg.Browser.Timeout,
			UserAgent:      browser.DefaultOptions().UserAgent,
			ViewportWidth:  cfg.Browser.ViewportWidth,
			ViewportHeight: cfg.Browser.ViewportHeight,
			AcceptLanguage: cfg.Browser.AcceptLanguage,
			TimezoneID:     cfg.Browser.TimezoneID,
			Locale:         cfg.Browser.Locale,
			ProxyServer:    cfg.Browser.ProxyServer,
			ExtraHeaders:   browser.DefaultOptions().ExtraHeaders,
		}, logger)
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to initialize browser: %w", err)
		}
		cleanup = func() { b.Close() }
		fetcher = b
	}

	var llmClient *llm.Client
	if cfg.LLM.APIKey != "" {
		llmClient = llm.NewClient(llm.Options{
			BaseURL: cfg.LLM.BaseURL,
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLM.Timeout,
		}, logger)
	}

	retryPolicy := retry.NewPolicy(cfg.Scraper.MaxRetries, cfg.Scraper.RetryDelay, logger)
	mega := scraper.NewMegaEletronicos(fetcher, llmClient,
		ratelimit.NewBackoffLimiter(cfg.Scraper.RateLimitMin, cfg.Scraper.RateLimitMax),
		retryPolicy, logger)

	mercadoLivre := marketsearch.NewMercadoLivre(marketsearch.MercadoLivreOptions{},
		ratelimit.NewIntervalLimiter(cfg.Scraper.RateLimitMin, cfg.Scraper.RateLimitMax),
		retryPolicy, logger)
	priceSource := marketsearch.NewService(mercadoLivre, marketsearch.NewGrayMarketEstimator(), logger)

	costs := analyzer.CostParams{
		DefaultExchangeRate: cfg.Import.DefaultExchangeRate,
		ImportTaxRate:       cfg.Import.ImportTaxRate,
		ShippingFee:         cfg.Import.ShippingFee,
		HandlingFee:         cfg.Import.HandlingFee,
	}

	return &app{
		mega:     mega,
		analyzer: analyzer.New(priceSource, rateAdapter{mega}, costs, logger),
		searcher: search.NewSearcher(mega, logger),
	}, cleanup, nil
}

// rateAdapter bridges the storefront rate extraction to the analyzer's
// rate source without the redis cache the server uses.
type rateAdapter struct {
	mega *scraper.MegaEletronicos
}

func (r rateAdapter) CurrentRate(ctx context.Context) (float64, error) {
	return r.mega.CurrentExchangeRate(ctx)
}

func (a *app) analyzeURL(ctx context.Context, url string) error {
	product, err := a.mega.ExtractProduct(ctx, url)
	if err != nil {
		return err
	}

	analysis, err := a.analyzer.AnalyzeProduct(ctx, *product)
	if err != nil {
		return err
	}
	return printJSON(analysis)
}

func (a *app) analyzeQuery(ctx context.Context, query, category string) error {
	products, err := a.mega.SearchProducts(ctx, query, category)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		fmt.Println("no products found")
		return nil
	}
	return printJSON(products)
}

func (a *app) scanOpportunities(ctx context.Context, query string, maxPrice, minScore float64) error {
	found := a.searcher.FindBestOpportunities(ctx, query, maxPrice, minScore)
	if len(found) == 0 {
		fmt.Println("no opportunities found")
		return nil
	}
	return printJSON(found)
}

func (a *app) suggestTiers(ctx context.Context, query string) error {
	return printJSON(a.searcher.PriceSuggestionsByTier(ctx, query))
}

func (a *app) printRate(ctx context.Context) error {
	rate, err := a.mega.CurrentExchangeRate(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("1 USD = %.4f BRL\n", rate)
	return nil
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}
