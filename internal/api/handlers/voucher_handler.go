package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/longnd/toystore-service/internal/models"
	"github.com/longnd/toystore-service/internal/repository"
	"github.com/longnd/toystore-service/internal/service"
)

type CheckVoucherRequest struct {
	Code     string          `json:"code"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type CreateVoucherRequest struct {
	Code          string              `json:"code"`
	Kind          string              `json:"kind"`
	Value         decimal.Decimal     `json:"value"`
	MaxDiscount   decimal.NullDecimal `json:"max_discount,omitempty"`
	MinOrderValue decimal.Decimal     `json:"min_order_value"`
	StartsAt      string              `json:"starts_at"` // RFC3339
	EndsAt        string              `json:"ends_at"`   // RFC3339
	UseLimit      *int                `json:"use_limit,omitempty"`
	PerUserLimit  int                 `json:"per_user_limit"`
}

type VoucherHandler struct {
	vouchers    *service.VoucherService
	voucherRepo *repository.VoucherRepo
}

func NewVoucherHandler(vouchers *service.VoucherService, voucherRepo *repository.VoucherRepo) *VoucherHandler {
	return &VoucherHandler{vouchers: vouchers, voucherRepo: voucherRepo}
}

// CheckVoucher handles POST /vouchers/check. This is a validation preview; no
// use is consumed.
func (h *VoucherHandler) CheckVoucher(w http.ResponseWriter, r *http.Request) {
	var req CheckVoucherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code_required")
		return
	}

	check, err := h.vouchers.Check(r.Context(), req.Code, req.Subtotal, customerID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, check)
}

// CreateVoucher handles POST /admin/vouchers
func (h *VoucherHandler) CreateVoucher(w http.ResponseWriter, r *http.Request) {
	var req CreateVoucherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	if req.Code == "" || req.Value.LessThanOrEqual(decimal.Zero) {
		writeError(w, http.StatusBadRequest, "invalid_code_or_value")
		return
	}
	if req.Kind != models.VoucherKindPercentage && req.Kind != models.VoucherKindFlat {
		writeError(w, http.StatusBadRequest, "invalid_kind")
		return
	}

	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_starts_at")
		return
	}
	endsAt, err := time.Parse(time.RFC3339, req.EndsAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_ends_at")
		return
	}
	if !endsAt.After(startsAt) {
		writeError(w, http.StatusBadRequest, "invalid_validity_window")
		return
	}

	id, err := h.voucherRepo.Create(r.Context(), &models.Voucher{
		Code:          req.Code,
		Kind:          req.Kind,
		Value:         req.Value,
		MaxDiscount:   req.MaxDiscount,
		MinOrderValue: req.MinOrderValue,
		StartsAt:      startsAt,
		EndsAt:        endsAt,
		UseLimit:      req.UseLimit,
		PerUserLimit:  req.PerUserLimit,
		Status:        models.VoucherStatusActive,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed_create_voucher")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":    "voucher_created",
		"voucher_id": id,
	})
}
