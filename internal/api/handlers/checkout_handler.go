package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/longnd/toystore-service/internal/service"
)

type CheckoutRequest struct {
	Region      string `json:"region"`
	VoucherCode string `json:"voucher_code,omitempty"`
}

type CheckoutHandler struct {
	checkout *service.CheckoutService
}

func NewCheckoutHandler(checkout *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

// Checkout handles POST /checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	order, err := h.checkout.Checkout(r.Context(), service.CheckoutRequest{
		SessionToken: sessionToken(r),
		CustomerID:   customerID(r),
		Region:       req.Region,
		VoucherCode:  req.VoucherCode,
	})
	if err != nil {
		switch {
		case cartValidationError(w, err):
		case errors.Is(err, service.ErrEmptyCart):
			writeError(w, http.StatusBadRequest, "empty_cart")
		case errors.Is(err, service.ErrEmptyRegion):
			writeError(w, http.StatusBadRequest, "region_required")
		case errors.Is(err, service.ErrVoucherRejected):
			reason := strings.TrimPrefix(err.Error(), service.ErrVoucherRejected.Error()+": ")
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"error":  "voucher_rejected",
				"reason": reason,
			})
		default:
			writeError(w, http.StatusInternalServerError, "internal_error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, order)
}
