package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/longnd/toystore-service/internal/api/middleware"
	"github.com/longnd/toystore-service/internal/service"
)

// --- Helpers shared by all handlers ---

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// sessionToken reads the guest session token from the X-Session-Token header,
// falling back to the session_token query param.
func sessionToken(r *http.Request) string {
	if token := r.Header.Get("X-Session-Token"); token != "" {
		return token
	}
	return r.URL.Query().Get("session_token")
}

// customerID returns the authenticated customer's id, or nil for guests.
func customerID(r *http.Request) *int64 {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return nil
	}
	return &claims.UserID
}

// cartValidationError maps the cart service's validation sentinels to a 400
// with a stable error token.
func cartValidationError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, service.ErrEmptySessionToken):
		writeError(w, http.StatusBadRequest, "session_token_required")
	case errors.Is(err, service.ErrSessionTokenTooLong):
		writeError(w, http.StatusBadRequest, "session_token_too_long")
	case errors.Is(err, service.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, "invalid_quantity")
	case errors.Is(err, service.ErrUnknownProduct):
		writeError(w, http.StatusBadRequest, "unknown_product")
	default:
		return false
	}
	return true
}
