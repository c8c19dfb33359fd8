package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/longnd/toystore-service/internal/models"
)

var (
	ErrEmptyCart       = errors.New("no selected cart lines to check out")
	ErrEmptyRegion     = errors.New("destination region must not be empty")
	ErrVoucherRejected = errors.New("voucher rejected")
)

type FeeResolver interface {
	ResolveFee(ctx context.Context, region string, subtotal decimal.Decimal) (decimal.Decimal, error)
}

type VoucherRedeemer interface {
	Redeem(ctx context.Context, code string, subtotal decimal.Decimal, customerID *int64) (models.VoucherCheck, error)
}

type CheckoutOrderStore interface {
	Create(ctx context.Context, order *models.Order, lines []models.OrderLine) (int, error)
}

type CheckoutRequest struct {
	SessionToken string
	CustomerID   *int64
	Region       string
	VoucherCode  string
}

type CheckoutService struct {
	carts    GuestCartRepo
	shipping FeeResolver
	vouchers VoucherRedeemer
	orders   CheckoutOrderStore
	logger   *zap.Logger
}

func NewCheckoutService(carts GuestCartRepo, shipping FeeResolver, vouchers VoucherRedeemer, orders CheckoutOrderStore, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		carts:    carts,
		shipping: shipping,
		vouchers: vouchers,
		orders:   orders,
		logger:   logger,
	}
}

// Checkout turns the session's selected cart lines into an order: subtotal,
// then shipping fee for the region, then the optional voucher discount (which
// consumes a use), then the persisted order. The checked-out lines are removed
// afterwards.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*models.Order, error) {
	if err := validateSessionToken(req.SessionToken); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Region) == "" {
		return nil, ErrEmptyRegion
	}

	lines, err := s.carts.ListSession(ctx, req.SessionToken, true)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	subtotal := decimal.Zero
	orderLines := make([]models.OrderLine, 0, len(lines))
	for _, line := range lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		orderLines = append(orderLines, models.OrderLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	fee, err := s.shipping.ResolveFee(ctx, req.Region, subtotal)
	if err != nil {
		return nil, err
	}

	discount := decimal.Zero
	var voucherCode *string
	if req.VoucherCode != "" {
		check, err := s.vouchers.Redeem(ctx, req.VoucherCode, subtotal, req.CustomerID)
		if err != nil {
			return nil, err
		}
		if !check.Valid {
			return nil, fmt.Errorf("%w: %s", ErrVoucherRejected, check.Reason)
		}
		discount = check.Discount
		code := req.VoucherCode
		voucherCode = &code
	}

	order := &models.Order{
		Code:         newOrderCode(),
		CustomerID:   req.CustomerID,
		SessionToken: req.SessionToken,
		Region:       req.Region,
		Subtotal:     subtotal,
		ShippingFee:  fee,
		Discount:     discount,
		VoucherCode:  voucherCode,
		Total:        subtotal.Sub(discount).Add(fee),
		Status:       models.OrderStatusPending,
	}

	orderID, err := s.orders.Create(ctx, order, orderLines)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	order.ID = orderID

	if _, err := s.carts.DeleteSelected(ctx, req.SessionToken); err != nil {
		// the order exists; leftover cart lines are an annoyance, not a failure
		s.logger.Warn("failed to clear checked-out cart lines",
			zap.String("session", req.SessionToken),
			zap.Error(err))
	}

	s.logger.Info("order created",
		zap.Int("order_id", order.ID),
		zap.String("code", order.Code),
		zap.String("region", order.Region),
		zap.String("total", order.Total.String()))

	return order, nil
}

func newOrderCode() string {
	return "TS-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:12])
}
