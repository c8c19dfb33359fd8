package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/longnd/toystore-service/internal/cache"
	"github.com/longnd/toystore-service/internal/models"
)

type stubRuleRepo struct {
	rules []models.ShippingRule
	calls int
}

func (s *stubRuleRepo) ListActive(ctx context.Context) ([]models.ShippingRule, error) {
	s.calls++
	return s.rules, nil
}

func strPtr(s string) *string { return &s }

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func nullDec(v int64) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.NewFromInt(v), Valid: true}
}

func newShippingService(rules []models.ShippingRule) (*ShippingService, *stubRuleRepo) {
	repo := &stubRuleRepo{rules: rules}
	svc := NewShippingService(repo, cache.NewRuleCache(time.Minute), dec(25000), zap.NewNop())
	return svc, repo
}

func TestResolveFeeExactRegionBeatsWildcard(t *testing.T) {
	svc, _ := newShippingService([]models.ShippingRule{
		{ID: 1, Region: nil, MinOrder: dec(0), FlatFee: dec(40000), Priority: 1},
		{ID: 2, Region: strPtr("HaNoi"), MinOrder: dec(0), FlatFee: dec(20000), Priority: 9},
	})

	fee, err := svc.ResolveFee(context.Background(), "HaNoi", dec(100000))
	require.NoError(t, err)
	assert.True(t, fee.Equal(dec(20000)), "exact-region rule must win even at worse priority, got %s", fee)
}

func TestResolveFeePriorityThenID(t *testing.T) {
	// rules arrive ordered by (priority, id), as the repository guarantees
	svc, _ := newShippingService([]models.ShippingRule{
		{ID: 3, Region: strPtr("HCM"), MinOrder: dec(0), FlatFee: dec(15000), Priority: 1},
		{ID: 7, Region: strPtr("HCM"), MinOrder: dec(0), FlatFee: dec(99000), Priority: 2},
	})

	fee, err := svc.ResolveFee(context.Background(), "HCM", dec(50000))
	require.NoError(t, err)
	assert.True(t, fee.Equal(dec(15000)))
}

func TestResolveFeeOrderValueTier(t *testing.T) {
	svc, _ := newShippingService([]models.ShippingRule{
		{ID: 1, Region: strPtr("DaNang"), MinOrder: dec(0), MaxOrder: nullDec(200000), FlatFee: dec(35000), Priority: 1},
		{ID: 2, Region: strPtr("DaNang"), MinOrder: dec(200000), FlatFee: dec(15000), Priority: 1},
	})

	fee, err := svc.ResolveFee(context.Background(), "DaNang", dec(199999))
	require.NoError(t, err)
	assert.True(t, fee.Equal(dec(35000)))

	// max bound is exclusive: exactly 200000 falls into the next tier
	fee, err = svc.ResolveFee(context.Background(), "DaNang", dec(200000))
	require.NoError(t, err)
	assert.True(t, fee.Equal(dec(15000)))
}

func TestResolveFeeFreeShippingThreshold(t *testing.T) {
	rule := models.ShippingRule{
		ID: 1, Region: strPtr("HaNoi"), MinOrder: dec(0),
		FlatFee: dec(30000), FreeFrom: nullDec(500000), Priority: 1,
	}
	svc, _ := newShippingService([]models.ShippingRule{rule})

	fee, err := svc.ResolveFee(context.Background(), "HaNoi", dec(600000))
	require.NoError(t, err)
	assert.True(t, fee.IsZero(), "subtotal above threshold ships free, got %s", fee)

	fee, err = svc.ResolveFee(context.Background(), "HaNoi", dec(500000))
	require.NoError(t, err)
	assert.True(t, fee.IsZero(), "threshold itself ships free")

	fee, err = svc.ResolveFee(context.Background(), "HaNoi", dec(499999))
	require.NoError(t, err)
	assert.True(t, fee.Equal(dec(30000)), "just below threshold pays the flat fee")
}

func TestResolveFeeFallbackWhenNoMatch(t *testing.T) {
	svc, _ := newShippingService([]models.ShippingRule{
		{ID: 1, Region: strPtr("HaNoi"), MinOrder: dec(500000), FlatFee: dec(10000), Priority: 1},
	})

	fee, err := svc.ResolveFee(context.Background(), "CanTho", dec(100000))
	require.NoError(t, err)
	assert.True(t, fee.Equal(dec(25000)), "no match resolves to the fallback fee")
}

func TestResolveFeeUsesCache(t *testing.T) {
	svc, repo := newShippingService([]models.ShippingRule{
		{ID: 1, Region: nil, MinOrder: dec(0), FlatFee: dec(30000), Priority: 1},
	})

	for i := 0; i < 5; i++ {
		_, err := svc.ResolveFee(context.Background(), "HaNoi", dec(100000))
		require.NoError(t, err)
	}
	assert.Equal(t, 1, repo.calls, "rule list should be served from cache after the first load")
}
