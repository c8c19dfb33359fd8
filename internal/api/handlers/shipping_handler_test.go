package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/longnd/toystore-service/internal/cache"
	"github.com/longnd/toystore-service/internal/models"
	"github.com/longnd/toystore-service/internal/service"
)

type stubRules struct {
	rules []models.ShippingRule
}

func (s *stubRules) ListActive(ctx context.Context) ([]models.ShippingRule, error) {
	return s.rules, nil
}

func newShippingRouter(rules []models.ShippingRule) http.Handler {
	svc := service.NewShippingService(&stubRules{rules: rules},
		cache.NewRuleCache(time.Minute), decimal.NewFromInt(25000), zap.NewNop())
	h := NewShippingHandler(svc, nil, cache.NewRuleCache(time.Minute))

	r := chi.NewRouter()
	r.Get("/shipping/fee", h.GetFee)
	return r
}

func TestGetFeeRequiresRegion(t *testing.T) {
	router := newShippingRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/shipping/fee?subtotal=100000", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "region_required", body["error"])
}

func TestGetFeeFreeShipping(t *testing.T) {
	hanoi := "HaNoi"
	router := newShippingRouter([]models.ShippingRule{
		{
			ID: 1, Region: &hanoi,
			MinOrder: decimal.Zero,
			FlatFee:  decimal.NewFromInt(30000),
			FreeFrom: decimal.NullDecimal{Decimal: decimal.NewFromInt(500000), Valid: true},
			Priority: 1,
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/shipping/fee?region=HaNoi&subtotal=600000", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]decimal.Decimal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp["fee"].IsZero(), "got %s", resp["fee"])
}

func TestGetFeeFallback(t *testing.T) {
	router := newShippingRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/shipping/fee?region=CanTho&subtotal=100000", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]decimal.Decimal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp["fee"].Equal(decimal.NewFromInt(25000)), "got %s", resp["fee"])
}
