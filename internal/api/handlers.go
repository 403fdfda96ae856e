package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/brasildev/paraguay-price-scout/internal/database"
	"github.com/brasildev/paraguay-price-scout/internal/jobs"
	"github.com/brasildev/paraguay-price-scout/internal/models"
	"github.com/brasildev/paraguay-price-scout/internal/scraper"
	"github.com/brasildev/paraguay-price-scout/internal/search"
)

// Analyzer runs the market analysis pipeline for one product.
type Analyzer interface {
	AnalyzeProduct(ctx context.Context, product models.Product) (*models.MarketAnalysis, error)
}

// RateSource supplies the current USD exchange rate.
type RateSource interface {
	CurrentRate(ctx context.Context) (float64, error)
}

// AnalysisCache short-circuits repeat analyses of the same product. May
// be nil.
type AnalysisCache interface {
	GetAnalysis(ctx context.Context, productName string) (*models.MarketAnalysis, error)
	SetAnalysis(ctx context.Context, analysis *models.MarketAnalysis) error
}

// StatsSource aggregates stored analyses. May be nil when the server
// runs without a database.
type StatsSource interface {
	Stats(ctx context.Context) (*database.AnalysisStats, error)
}

type Handlers struct {
	extractor scraper.Extractor
	analyzer  Analyzer
	searcher  *search.Searcher
	rates     RateSource
	cache     AnalysisCache
	jobs      *jobs.Manager
	stats     StatsSource
	logger    *slog.Logger
}

func NewHandlers(extractor scraper.Extractor, analyzer Analyzer, searcher *search.Searcher, rates RateSource, cache AnalysisCache, jobManager *jobs.Manager, stats StatsSource, logger *slog.Logger) *Handlers {
	return &Handlers{
		extractor: extractor,
		analyzer:  analyzer,
		searcher:  searcher,
		rates:     rates,
		cache:     cache,
		jobs:      jobManager,
		stats:     stats,
		logger:    logger.With("component", "api"),
	}
}

// AnalyzeRequest asks for a synchronous market analysis of one product,
// either by page URL or as an already-extracted record.
type AnalyzeRequest struct {
	URL     string         `json:"url,omitempty"`
	Product map[string]any `json:"product,omitempty"`
}

// AnalyzeResponse carries the analyzed product and its market verdict.
type AnalyzeResponse struct {
	Product  models.Product         `json:"product"`
	Analysis *models.MarketAnalysis `json:"analysis"`
	Cached   bool                   `json:"cached"`
}

// Analyze handles POST /api/v1/analyze.
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var product models.Product
	switch {
	case req.URL != "":
		extracted, err := h.extractor.ExtractProduct(r.Context(), req.URL)
		if err != nil {
			h.logger.Error("product extraction failed", "url", req.URL, "error", err)
			h.respondError(w, http.StatusBadGateway, "failed to extract product from page")
			return
		}
		product = *extracted
	case req.Product != nil:
		product = models.CoerceProduct(req.Product)
	default:
		h.respondError(w, http.StatusBadRequest, "either url or product is required")
		return
	}

	if h.cache != nil {
		if cached, err := h.cache.GetAnalysis(r.Context(), product.Name); err == nil && cached != nil {
			h.respondJSON(w, http.StatusOK, AnalyzeResponse{Product: product, Analysis: cached, Cached: true})
			return
		}
	}

	analysis, err := h.analyzer.AnalyzeProduct(r.Context(), product)
	if err != nil {
		h.logger.Error("analysis failed", "product", product.Name, "error", err)
		h.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if h.cache != nil {
		if err := h.cache.SetAnalysis(r.Context(), analysis); err != nil {
			h.logger.Warn("failed to cache analysis", "product", product.Name, "error", err)
		}
	}

	h.respondJSON(w, http.StatusOK, AnalyzeResponse{Product: product, Analysis: analysis})
}

// SearchResponse wraps filtered search results.
type SearchResponse struct {
	Query    string           `json:"query"`
	Count    int              `json:"count"`
	Products []models.Product `json:"products"`
}

// Search handles GET /api/v1/search.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		h.respondError(w, http.StatusBadRequest, "q is required")
		return
	}

	filters := filtersFromQuery(r)
	products := h.searcher.SearchWithFilters(r.Context(), query, filters)

	h.respondJSON(w, http.StatusOK, SearchResponse{
		Query:    query,
		Count:    len(products),
		Products: products,
	})
}

// OpportunitiesResponse wraps an opportunity scan.
type OpportunitiesResponse struct {
	Query         string                       `json:"query"`
	Count         int                          `json:"count"`
	Opportunities []models.OpportunityAnalysis `json:"opportunities"`
}

// Opportunities handles GET /api/v1/opportunities.
func (h *Handlers) Opportunities(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	maxPrice := floatParam(r, "max_price", 500)
	minScore := floatParam(r, "min_score", 7)

	opportunities := h.searcher.FindBestOpportunities(r.Context(), query, maxPrice, minScore)

	h.respondJSON(w, http.StatusOK, OpportunitiesResponse{
		Query:         query,
		Count:         len(opportunities),
		Opportunities: opportunities,
	})
}

// PriceRange handles GET /api/v1/price-range.
func (h *Handlers) PriceRange(w http.ResponseWriter, r *http.Request) {
	min, okMin := parseFloat(r.URL.Query().Get("min"))
	max, okMax := parseFloat(r.URL.Query().Get("max"))
	if !okMin || !okMax || min < 0 || max < min {
		h.respondError(w, http.StatusBadRequest, "min and max must form a valid price range")
		return
	}

	products := h.searcher.SearchByPriceRange(r.Context(), min, max, r.URL.Query().Get("category"))

	h.respondJSON(w, http.StatusOK, SearchResponse{
		Count:    len(products),
		Products: products,
	})
}

// Suggestions handles GET /api/v1/suggestions.
func (h *Handlers) Suggestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		h.respondError(w, http.StatusBadRequest, "q is required")
		return
	}

	h.respondJSON(w, http.StatusOK, h.searcher.PriceSuggestionsByTier(r.Context(), query))
}

// Categories handles GET /api/v1/categories.
func (h *Handlers) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.extractor.Categories(r.Context())
	if err != nil {
		h.logger.Error("failed to list categories", "error", err)
		h.respondError(w, http.StatusBadGateway, "failed to list categories")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"site":       h.extractor.SiteName(),
		"categories": categories,
	})
}

// Rate handles GET /api/v1/rate.
func (h *Handlers) Rate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.rates.CurrentRate(r.Context())
	if err != nil {
		h.logger.Error("failed to get exchange rate", "error", err)
		h.respondError(w, http.StatusBadGateway, "exchange rate unavailable")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]float64{"usd_to_brl": rate})
}

// CreateJobRequest starts an asynchronous analysis job.
type CreateJobRequest struct {
	URL      string `json:"url,omitempty"`
	Query    string `json:"query,omitempty"`
	Category string `json:"category,omitempty"`
}

// CreateJob handles POST /api/v1/jobs.
func (h *Handlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	job, err := h.jobs.Submit(r.Context(), jobs.Input{URL: req.URL, Query: req.Query, Category: req.Category})
	if err != nil {
		if errors.Is(err, jobs.ErrEmptyInput) {
			h.respondError(w, http.StatusBadRequest, "either url or query is required")
			return
		}
		h.logger.Error("failed to create job", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	h.respondJSON(w, http.StatusCreated, job)
}

// GetJob handles GET /api/v1/jobs/{jobID}.
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	job, err := h.jobs.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			h.respondError(w, http.StatusNotFound, "job not found")
			return
		}
		h.logger.Error("failed to get job", "job_id", jobID, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get job")
		return
	}

	h.respondJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/v1/jobs.
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	limit := int(floatParam(r, "limit", 50))

	list, err := h.jobs.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list jobs", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}

	h.respondJSON(w, http.StatusOK, list)
}

// Stats handles GET /api/v1/stats.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{}

	if h.stats != nil {
		stats, err := h.stats.Stats(r.Context())
		if err != nil {
			h.logger.Error("failed to get analysis stats", "error", err)
			h.respondError(w, http.StatusInternalServerError, "failed to get stats")
			return
		}
		response["analyses"] = stats
	}

	if h.jobs != nil {
		counts, err := h.jobs.StatusCounts(r.Context())
		if err != nil {
			h.logger.Error("failed to count jobs", "error", err)
			h.respondError(w, http.StatusInternalServerError, "failed to get stats")
			return
		}
		response["jobs"] = counts
	}

	h.respondJSON(w, http.StatusOK, response)
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"site":   h.extractor.SiteName(),
	})
}

func filtersFromQuery(r *http.Request) models.SearchFilters {
	q := r.URL.Query()

	filters := models.SearchFilters{
		InStockOnly: q.Get("in_stock") == "true",
		SortBy:      q.Get("sort"),
	}
	if v, ok := parseFloat(q.Get("min_price_usd")); ok {
		filters.MinPriceUSD = &v
	}
	if v, ok := parseFloat(q.Get("max_price_usd")); ok {
		filters.MaxPriceUSD = &v
	}
	if v, ok := parseFloat(q.Get("min_price_brl")); ok {
		filters.MinPriceBRL = &v
	}
	if v, ok := parseFloat(q.Get("max_price_brl")); ok {
		filters.MaxPriceBRL = &v
	}
	if categories := q["category"]; len(categories) > 0 {
		filters.Categories = categories
	}
	if brands := q["brand"]; len(brands) > 0 {
		filters.Brands = brands
	}
	return filters
}

func floatParam(r *http.Request, key string, defaultValue float64) float64 {
	if v, ok := parseFloat(r.URL.Query().Get(key)); ok {
		return v
	}
	return defaultValue
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
