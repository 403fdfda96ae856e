package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/brasildev/paraguay-price-scout/internal/analyzer"
	"github.com/brasildev/paraguay-price-scout/internal/api"
	"github.com/brasildev/paraguay-price-scout/internal/browser"
	"github.com/brasildev/paraguay-price-scout/internal/cache"
	"github.com/brasildev/paraguay-price-scout/internal/config"
	"github.com/brasildev/paraguay-price-scout/internal/database"
	"github.com/brasildev/paraguay-price-scout/internal/jobs"
	"github.com/brasildev/paraguay-price-scout/internal/llm"
	"github.com/brasildev/paraguay-price-scout/internal/marketsearch"
	"github.com/brasildev/paraguay-price-scout/internal/ratelimit"
	"github.com/brasildev/paraguay-price-scout/internal/retry"
	"github.com/brasildev/paraguay-price-scout/internal/scraper"
	"github.com/brasildev/paraguay-price-scout/internal/search"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := database.New(ctx, database.Config{
		Host:        cfg.Database.Host,
		Port:        cfg.Database.Port,
		User:        cfg.Database.User,
		Password:    cfg.Database.Password,
		Database:    cfg.Database.DBName,
		MaxConns:    10,
		MinConns:    2,
		MaxConnLife: time.Hour,
		MaxConnIdle: 30 * time.Minute,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	analysisCache := cache.New(redisClient, cfg.Redis.RateTTL, cfg.Redis.AnalysisTTL, logger)

	// Page fetcher: Firecrawl when configured, local playwright otherwise.
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
			logger.Error("failed to initialize browser", "error", err)
			os.Exit(1)
		}
		defer b.Close()
		fetcher = b
	}

	// LLM extraction client
	var llmClient *llm.Client
	if cfg.LLM.APIKey != "" {
		llmClient = llm.NewClient(llm.Options{
			BaseURL: cfg.LLM.BaseURL,
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLM.Timeout,
		}, logger)
	} else {
		logger.Warn("no LLM api key configured, extraction falls back to selectors")
	}

	retryPolicy := retry.NewPolicy(cfg.Scraper.MaxRetries, cfg.Scraper.RetryDelay, logger)

	// Storefront scraper
	storeLimiter := ratelimit.NewBackoffLimiter(cfg.Scraper.RateLimitMin, cfg.Scraper.RateLimitMax)
	mega := scraper.NewMegaEletronicos(fetcher, llmClient, storeLimiter, retryPolicy, logger)

	// Market comparables
	marketLimiter := ratelimit.NewIntervalLimiter(cfg.Scraper.RateLimitMin, cfg.Scraper.RateLimitMax)
	mercadoLivre := marketsearch.NewMercadoLivre(marketsearch.MercadoLivreOptions{}, marketLimiter, retryPolicy, logger)
	priceSource := marketsearch.NewService(mercadoLivre, marketsearch.NewGrayMarketEstimator(), logger)

	rates := cache.NewRateProvider(analysisCache, mega, logger)

	costs := analyzer.CostParams{
		DefaultExchangeRate: cfg.Import.DefaultExchangeRate,
		ImportTaxRate:       cfg.Import.ImportTaxRate,
		ShippingFee:         cfg.Import.ShippingFee,
		HandlingFee:         cfg.Import.HandlingFee,
	}
	marketAnalyzer := analyzer.New(priceSource, rates, costs, logger)

	searcher := search.NewSearcher(mega, logger)

	// Jobs
	queue := jobs.NewQueue()
	defer queue.Close()
	jobManager := jobs.NewManager(db, queue, logger)
	worker := jobs.NewWorker(db, queue, mega, marketAnalyzer, db, logger)
	go func() {
		if err := worker.Run(ctx); err != nil {
			logger.Error("worker stopped with error", "error", err)
		}
	}()

	handlers := api.NewHandlers(mega, marketAnalyzer, searcher, rates, analysisCache, jobManager, db, logger)

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(handlers),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
