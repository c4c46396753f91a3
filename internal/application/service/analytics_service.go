package service

import (
	"context"

	"github.com/sousbill/sousbill/internal/application/port"
	"github.com/sousbill/sousbill/internal/domain/entity"
	"go.uber.org/zap"
)

// openEndedTo sorts after any ISO-8601 date.
const openEndedTo = "9999-12-31"

// AnalyticsService serves the cost-analysis views. Empty range bounds
// mean "all time".
type AnalyticsService interface {
	SpendSummary(ctx context.Context, userID, from, to string) (*entity.SpendSummary, error)
	ProductStats(ctx context.Context, userID, from, to string) ([]*entity.ProductStat, error)
	PriceSeries(ctx context.Context, userID, description string) ([]*entity.PricePoint, error)
}

type analyticsServiceImpl struct {
	analyticsRepo port.AnalyticsRepository
	logger        *zap.Logger
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(analyticsRepo port.AnalyticsRepository, logger *zap.Logger) AnalyticsService {
	return &analyticsServiceImpl{
		analyticsRepo: analyticsRepo,
		logger:        logger,
	}
}

func (s *analyticsServiceImpl) SpendSummary(ctx context.Context, userID, from, to string) (*entity.SpendSummary, error) {
	from, to = normalizeRange(from, to)
	return s.analyticsRepo.SpendSummary(ctx, userID, from, to)
}

func (s *analyticsServiceImpl) ProductStats(ctx context.Context, userID, from, to string) ([]*entity.ProductStat, error) {
	from, to = normalizeRange(from, to)
	return s.analyticsRepo.ProductStats(ctx, userID, from, to)
}

func (s *analyticsServiceImpl) PriceSeries(ctx context.Context, userID, description string) ([]*entity.PricePoint, error) {
	return s.analyticsRepo.PriceSeries(ctx, userID, description)
}

// normalizeRange widens empty bounds to cover all stored dates. Dates are
// compared lexicographically, so the empty string is below every date.
func normalizeRange(from, to string) (string, string) {
	if to == "" {
		to = openEndedTo
	}
	return from, to
}
