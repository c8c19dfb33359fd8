package handlers

import (
	"bytes"
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

	"github.com/longnd/toystore-service/internal/models"
	"github.com/longnd/toystore-service/internal/service"
)

// stubCartRepo embeds the interface and overrides only what a test touches.
type stubCartRepo struct {
	service.GuestCartRepo
	upserted *models.GuestCartLine
}

func (s *stubCartRepo) UpsertLine(ctx context.Context, session string, productID, quantity int, unitPrice decimal.Decimal, expiresAt *time.Time) (*models.GuestCartLine, error) {
	line := &models.GuestCartLine{
		ID:           1,
		SessionToken: session,
		ProductID:    productID,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		Selected:     true,
	}
	s.upserted = line
	return line, nil
}

func (s *stubCartRepo) UpdateQuantity(ctx context.Context, session string, productID, quantity int) (bool, error) {
	return false, nil
}

type stubProducts struct{}

func (stubProducts) GetByID(ctx context.Context, id int) (*models.Product, error) {
	if id == 1 {
		return &models.Product{ID: 1, Name: "wooden train", Price: decimal.NewFromInt(150000), Sellable: true}, nil
	}
	return nil, nil
}

func newCartRouter(repo *stubCartRepo) http.Handler {
	svc := service.NewCartService(repo, stubProducts{}, 0, zap.NewNop())
	h := NewCartHandler(svc)

	r := chi.NewRouter()
	r.Post("/cart/items", h.AddLine)
	r.Put("/cart/items/{productID}", h.UpdateQuantity)
	return r
}

func TestAddLineRequiresSessionToken(t *testing.T) {
	router := newCartRouter(&stubCartRepo{})

	body, _ := json.Marshal(AddLineRequest{ProductID: 1, Quantity: 1})
	req := httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body2 map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body2))
	assert.Equal(t, "session_token_required", body2["error"])
}

func TestAddLineOK(t *testing.T) {
	repo := &stubCartRepo{}
	router := newCartRouter(repo)

	body, _ := json.Marshal(AddLineRequest{ProductID: 1, Quantity: 2})
	req := httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewReader(body))
	req.Header.Set("X-Session-Token", "guest-abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var line models.GuestCartLine
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &line))
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, "guest-abc", line.SessionToken)
	require.NotNil(t, repo.upserted)
}

func TestAddLineUnknownProduct(t *testing.T) {
	router := newCartRouter(&stubCartRepo{})

	body, _ := json.Marshal(AddLineRequest{ProductID: 404, Quantity: 1})
	req := httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewReader(body))
	req.Header.Set("X-Session-Token", "guest-abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var errBody map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
	assert.Equal(t, "unknown_product", errBody["error"])
}

func TestUpdateQuantityNotFoundIsFalse(t *testing.T) {
	router := newCartRouter(&stubCartRepo{})

	body, _ := json.Marshal(UpdateQuantityRequest{Quantity: 3})
	req := httptest.NewRequest(http.MethodPut, "/cart/items/1", bytes.NewReader(body))
	req.Header.Set("X-Session-Token", "guest-abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp["updated"])
}
