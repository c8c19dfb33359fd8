package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/longnd/toystore-service/internal/cache"
	"github.com/longnd/toystore-service/internal/models"
	"github.com/longnd/toystore-service/internal/repository"
	"github.com/longnd/toystore-service/internal/service"
)

type CreateShippingRuleRequest struct {
	Region   *string             `json:"region,omitempty"` // null = any region
	MinOrder decimal.Decimal     `json:"min_order"`
	MaxOrder decimal.NullDecimal `json:"max_order,omitempty"`
	FlatFee  decimal.Decimal     `json:"flat_fee"`
	FreeFrom decimal.NullDecimal `json:"free_from,omitempty"`
	Priority int                 `json:"priority"`
}

type ShippingHandler struct {
	shipping  *service.ShippingService
	ruleRepo  *repository.ShippingRepo
	ruleCache *cache.RuleCache
}

func NewShippingHandler(shipping *service.ShippingService, ruleRepo *repository.ShippingRepo, ruleCache *cache.RuleCache) *ShippingHandler {
	return &ShippingHandler{shipping: shipping, ruleRepo: ruleRepo, ruleCache: ruleCache}
}

// GetFee handles GET /shipping/fee?region=...&subtotal=...
func (h *ShippingHandler) GetFee(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")
	if region == "" {
		writeError(w, http.StatusBadRequest, "region_required")
		return
	}
	subtotal, err := decimal.NewFromString(r.URL.Query().Get("subtotal"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_subtotal")
		return
	}

	fee, err := h.shipping.ResolveFee(r.Context(), region, subtotal)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"fee": fee})
}

// CreateRule handles POST /admin/shipping-rules
func (h *ShippingHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req CreateShippingRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if req.FlatFee.IsNegative() {
		writeError(w, http.StatusBadRequest, "invalid_flat_fee")
		return
	}

	id, err := h.ruleRepo.Create(r.Context(), &models.ShippingRule{
		Region:   req.Region,
		MinOrder: req.MinOrder,
		MaxOrder: req.MaxOrder,
		FlatFee:  req.FlatFee,
		FreeFrom: req.FreeFrom,
		Priority: req.Priority,
		Active:   true,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed_create_rule")
		return
	}

	// the resolver must see the new rule on the next request
	h.ruleCache.Invalidate()

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "rule_created",
		"rule_id": id,
	})
}
