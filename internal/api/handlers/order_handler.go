package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/longnd/toystore-service/internal/api/middleware"
	"github.com/longnd/toystore-service/internal/models"
	"github.com/longnd/toystore-service/internal/service"
)

type TransitionRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func orderIDParam(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "orderID"))
}

// GetOrder handles GET /orders/{orderID}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := orderIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_order_id")
		return
	}

	order, lines, err := h.orders.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			writeError(w, http.StatusNotFound, "order_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"order": order,
		"lines": lines,
	})
}

// GetHistory handles GET /orders/{orderID}/history
func (h *OrderHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, err := orderIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_order_id")
		return
	}

	history, err := h.orders.History(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"history": history})
}

// ListMine handles GET /orders for the authenticated customer.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	cid := customerID(r)
	if cid == nil {
		writeError(w, http.StatusUnauthorized, "authentication_required")
		return
	}

	orders, err := h.orders.ListByCustomer(r.Context(), *cid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

// Transition handles POST /admin/orders/{orderID}/status
func (h *OrderHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id, err := orderIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_order_id")
		return
	}

	var req TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	actor := "admin"
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		actor = claims.Subject
	}

	err = h.orders.Transition(r.Context(), id, models.OrderStatus(req.Status), actor, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			writeError(w, http.StatusNotFound, "order_not_found")
		case errors.Is(err, service.ErrInvalidTransition):
			writeError(w, http.StatusUnprocessableEntity, "invalid_transition")
		default:
			writeError(w, http.StatusInternalServerError, "internal_error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "status_updated"})
}
