package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/longnd/toystore-service/internal/cache"
	"github.com/longnd/toystore-service/internal/models"
)

type ShippingRuleRepo interface {
	ListActive(ctx context.Context) ([]models.ShippingRule, error)
}

type ShippingService struct {
	repo        ShippingRuleRepo
	cache       *cache.RuleCache
	fallbackFee decimal.Decimal
	logger      *zap.Logger
}

func NewShippingService(repo ShippingRuleRepo, ruleCache *cache.RuleCache, fallbackFee decimal.Decimal, logger *zap.Logger) *ShippingService {
	return &ShippingService{
		repo:        repo,
		cache:       ruleCache,
		fallbackFee: fallbackFee,
		logger:      logger,
	}
}

// ResolveFee picks the fee for a destination region and order subtotal.
// Exact-region rules beat wildcard rules; within each group the lowest
// priority rank wins, then the lowest id. No matching rule is not an error:
// the configured fallback fee applies.
func (s *ShippingService) ResolveFee(ctx context.Context, region string, subtotal decimal.Decimal) (decimal.Decimal, error) {
	rules, ok := s.cache.Get()
	if !ok {
		loaded, err := s.repo.ListActive(ctx)
		if err != nil {
			return decimal.Zero, err
		}
		s.cache.Set(loaded)
		rules = loaded
	}

	rule := matchRule(rules, region, subtotal)
	if rule == nil {
		s.logger.Debug("no shipping rule matched, using fallback fee",
			zap.String("region", region),
			zap.String("subtotal", subtotal.String()))
		return s.fallbackFee, nil
	}

	if rule.FreeFrom.Valid && subtotal.GreaterThanOrEqual(rule.FreeFrom.Decimal) {
		return decimal.Zero, nil
	}
	return rule.FlatFee, nil
}

// matchRule assumes rules are already ordered by (priority, id); it scans once
// and keeps the first wildcard hit as a fallback behind any exact-region hit.
func matchRule(rules []models.ShippingRule, region string, subtotal decimal.Decimal) *models.ShippingRule {
	var wildcard *models.ShippingRule

	for i := range rules {
		r := &rules[i]
		if subtotal.LessThan(r.MinOrder) {
			continue
		}
		if r.MaxOrder.Valid && subtotal.GreaterThanOrEqual(r.MaxOrder.Decimal) {
			continue
		}
		if r.Region == nil {
			if wildcard == nil {
				wildcard = r
			}
			continue
		}
		if *r.Region == region {
			return r
		}
	}
	return wildcard
}
