package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/longnd/toystore-service/internal/service"
)

type AddLineRequest struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type SelectLineRequest struct {
	Selected bool `json:"selected"`
}

type CartHandler struct {
	cart *service.CartService
}

func NewCartHandler(cart *service.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	lines, err := h.cart.Fetch(r.Context(), sessionToken(r))
	if err != nil {
		if cartValidationError(w, err) {
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	total, err := h.cart.Total(r.Context(), sessionToken(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"lines": lines,
		"total": total,
	})
}

// AddLine handles POST /cart/items
func (h *CartHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	var req AddLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	line, err := h.cart.AddLine(r.Context(), sessionToken(r), req.ProductID, req.Quantity)
	if err != nil {
		if cartValidationError(w, err) {
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, line)
}

// UpdateQuantity handles PUT /cart/items/{productID}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.Atoi(chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_product_id")
		return
	}

	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	updated, err := h.cart.UpdateQuantity(r.Context(), sessionToken(r), productID, req.Quantity)
	if err != nil {
		if cartValidationError(w, err) {
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": updated})
}

// SelectLine handles POST /cart/items/{productID}/select
func (h *CartHandler) SelectLine(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.Atoi(chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_product_id")
		return
	}

	var req SelectLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	updated, err := h.cart.SelectLine(r.Context(), sessionToken(r), productID, req.Selected)
	if err != nil {
		if cartValidationError(w, err) {
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": updated})
}

// RemoveLine handles DELETE /cart/items/{productID}
func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.Atoi(chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_product_id")
		return
	}

	deleted, err := h.cart.RemoveLine(r.Context(), sessionToken(r), productID)
	if err != nil {
		if cartValidationError(w, err) {
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.cart.Clear(r.Context(), sessionToken(r))
	if err != nil {
		if cartValidationError(w, err) {
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
