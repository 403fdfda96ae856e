package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/brasildev/paraguay-price-scout/internal/models"
)

const (
	rateKey        = "scout:rate:usd_brl"
	analysisPrefix = "scout:analysis:"

	DefaultRateTTL     = time.Hour
	DefaultAnalysisTTL = 30 * time.Minute
)

// ErrMiss is returned when a key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// RedisClient is the subset of redis operations the cache needs (for
// testing).
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Cache stores the storefront exchange rate and finished analyses in
// redis. Scraping the rate costs a full page render, so even a short TTL
// pays for itself.
type Cache struct {
	client      RedisClient
	rateTTL     time.Duration
	analysisTTL time.Duration
	logger      *slog.Logger
}

func New(client RedisClient, rateTTL, analysisTTL time.Duration, logger *slog.Logger) *Cache {
	if rateTTL == 0 {
		rateTTL = DefaultRateTTL
	}
	if analysisTTL == 0 {
		analysisTTL = DefaultAnalysisTTL
	}
	return &Cache{
		client:      client,
		rateTTL:     rateTTL,
		analysisTTL: analysisTTL,
		logger:      logger.With("component", "cache"),
	}
}

// GetRate returns the cached USD exchange rate.
func (c *Cache) GetRate(ctx context.Context) (float64, error) {
	val, err := c.client.Get(ctx, rateKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrMiss
	}
	if err != nil {
		return 0, err
	}

	rate, err := strconv.ParseFloat(val, 64)
	if err != nil || rate <= 0 {
		return 0, ErrMiss
	}
	return rate, nil
}

// SetRate stores the USD exchange rate.
func (c *Cache) SetRate(ctx context.Context, rate float64) error {
	return c.client.Set(ctx, rateKey, strconv.FormatFloat(rate, 'f', -1, 64), c.rateTTL).Err()
}

// GetAnalysis returns a cached analysis for a product name.
func (c *Cache) GetAnalysis(ctx context.Context, productName string) (*models.MarketAnalysis, error) {
	val, err := c.client.Get(ctx, analysisKey(productName)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}

	analysis := &models.MarketAnalysis{}
	if err := json.Unmarshal([]byte(val), analysis); err != nil {
		return nil, ErrMiss
	}
	return analysis, nil
}

// SetAnalysis caches a finished analysis under its product name.
func (c *Cache) SetAnalysis(ctx context.Context, analysis *models.MarketAnalysis) error {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, analysisKey(analysis.ProductName), payload, c.analysisTTL).Err()
}

func analysisKey(productName string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(productName)), "-")
	return analysisPrefix + normalized
}
