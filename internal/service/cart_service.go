package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/longnd/toystore-service/internal/models"
)

const maxSessionTokenLen = 255

// Validation failures reported to the caller; never retried automatically.
var (
	ErrEmptySessionToken   = errors.New("session token must not be empty")
	ErrSessionTokenTooLong = errors.New("session token exceeds 255 characters")
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrUnknownProduct      = errors.New("product does not exist or is not sellable")
)

type GuestCartRepo interface {
	UpsertLine(ctx context.Context, sessionToken string, productID, quantity int, unitPrice decimal.Decimal, expiresAt *time.Time) (*models.GuestCartLine, error)
	UpdateQuantity(ctx context.Context, sessionToken string, productID, quantity int) (bool, error)
	SetSelected(ctx context.Context, sessionToken string, productID int, selected bool) (bool, error)
	DeleteLine(ctx context.Context, sessionToken string, productID int) (int64, error)
	ClearSession(ctx context.Context, sessionToken string) (int64, error)
	DeleteSelected(ctx context.Context, sessionToken string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	ListSession(ctx context.Context, sessionToken string, selectedOnly bool) ([]models.CartLineView, error)
	SessionTotal(ctx context.Context, sessionToken string) (decimal.Decimal, error)
}

type CartProductRepo interface {
	GetByID(ctx context.Context, id int) (*models.Product, error)
}

type CartService struct {
	carts    GuestCartRepo
	products CartProductRepo
	lineTTL  time.Duration // 0 = lines never expire
	logger   *zap.Logger
}

func NewCartService(carts GuestCartRepo, products CartProductRepo, lineTTL time.Duration, logger *zap.Logger) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		lineTTL:  lineTTL,
		logger:   logger,
	}
}

func validateSessionToken(token string) error {
	if token == "" {
		return ErrEmptySessionToken
	}
	if len(token) > maxSessionTokenLen {
		return ErrSessionTokenTooLong
	}
	return nil
}

// AddLine upserts a (session, product) line. Re-adding an existing pair
// increments its quantity and re-marks it selected; a new line snapshots the
// product's current price.
func (s *CartService) AddLine(ctx context.Context, sessionToken string, productID, quantity int) (*models.GuestCartLine, error) {
	if err := validateSessionToken(sessionToken); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.Sellable {
		return nil, ErrUnknownProduct
	}

	var expiresAt *time.Time
	if s.lineTTL > 0 {
		t := time.Now().Add(s.lineTTL)
		expiresAt = &t
	}

	line, err := s.carts.UpsertLine(ctx, sessionToken, productID, quantity, product.Price, expiresAt)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("cart line upserted",
		zap.String("session", sessionToken),
		zap.Int("product_id", productID),
		zap.Int("quantity", line.Quantity))
	return line, nil
}

// UpdateQuantity overwrites a line's quantity. A missing line is reported as
// false, not an error.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionToken string, productID, quantity int) (bool, error) {
	if err := validateSessionToken(sessionToken); err != nil {
		return false, err
	}
	if quantity < 1 {
		return false, ErrInvalidQuantity
	}
	return s.carts.UpdateQuantity(ctx, sessionToken, productID, quantity)
}

func (s *CartService) SelectLine(ctx context.Context, sessionToken string, productID int, selected bool) (bool, error) {
	if err := validateSessionToken(sessionToken); err != nil {
		return false, err
	}
	return s.carts.SetSelected(ctx, sessionToken, productID, selected)
}

func (s *CartService) RemoveLine(ctx context.Context, sessionToken string, productID int) (int64, error) {
	if err := validateSessionToken(sessionToken); err != nil {
		return 0, err
	}
	return s.carts.DeleteLine(ctx, sessionToken, productID)
}

func (s *CartService) Clear(ctx context.Context, sessionToken string) (int64, error) {
	if err := validateSessionToken(sessionToken); err != nil {
		return 0, err
	}
	return s.carts.ClearSession(ctx, sessionToken)
}

// Sweep deletes every line whose expiry has passed. Safe to call from any
// scheduler; the service itself imposes no trigger policy.
func (s *CartService) Sweep(ctx context.Context) (int64, error) {
	deleted, err := s.carts.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("expired cart lines removed", zap.Int64("count", deleted))
	}
	return deleted, nil
}

// Fetch returns the session's visible cart: lines joined to products, with
// unsellable products hidden.
func (s *CartService) Fetch(ctx context.Context, sessionToken string) ([]models.CartLineView, error) {
	if err := validateSessionToken(sessionToken); err != nil {
		return nil, err
	}
	return s.carts.ListSession(ctx, sessionToken, false)
}

// Total sums quantity * unit price over all lines of the session. Selection
// filtering is the caller's concern.
func (s *CartService) Total(ctx context.Context, sessionToken string) (decimal.Decimal, error) {
	if err := validateSessionToken(sessionToken); err != nil {
		return decimal.Zero, err
	}
	return s.carts.SessionTotal(ctx, sessionToken)
}
