package marketsearch

import (
	"context"
	"log/slog"

	"github.com/brasildev/paraguay-price-scout/internal/models"
)

// OfficialSearcher is the live-marketplace half of the price source.
// MercadoLivre implements it.
type OfficialSearcher interface {
	Search(ctx context.Context, productName string) ([]models.MarketPrice, error)
}

// Service combines the marketplace scraper with the gray-market
// estimator into the comparable-price source the analyzer consumes.
type Service struct {
	official OfficialSearcher
	gray     *GrayMarketEstimator
	logger   *slog.Logger
}

func NewService(official OfficialSearcher, gray *GrayMarketEstimator, logger *slog.Logger) *Service {
	return &Service{
		official: official,
		gray:     gray,
		logger:   logger.With("component", "marketsearch"),
	}
}

func (s *Service) OfficialPrices(ctx context.Context, productName string) ([]models.MarketPrice, error) {
	return s.official.Search(ctx, productName)
}

// GrayMarketPrices never fails; the pool is estimated, not fetched.
func (s *Service) GrayMarketPrices(_ context.Context, productName string) ([]models.MarketPrice, error) {
	return s.gray.Estimate(productName), nil
}
