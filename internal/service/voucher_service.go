package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/longnd/toystore-service/internal/models"
)

// Reason tokens returned to the caller on a rejected voucher.
const (
	ReasonVoucherNotFound  = "voucher_not_found"
	ReasonVoucherNotActive = "voucher_not_active"
	ReasonNotInValidWindow = "not_in_valid_window"
	ReasonUseLimitReached  = "use_limit_reached"
	ReasonMinOrderNotMet   = "min_order_value_not_met"
	ReasonUserLimitReached = "user_limit_reached"
)

// Repos required by the service (interfaces to allow stubbing in tests).
type VoucherRepo interface {
	GetByCode(ctx context.Context, code string) (*models.Voucher, error)
	GetAndLock(ctx context.Context, tx *sql.Tx, code string) (*models.Voucher, error)
	IncrementUse(ctx context.Context, tx *sql.Tx, voucherID int) error
}

type VoucherUsageRepo interface {
	CountUsage(ctx context.Context, voucherID int, customerID int64) (int, error)
	GetAndLockUsage(ctx context.Context, tx *sql.Tx, voucherID int, customerID int64) (int, error)
	IncrementUsage(ctx context.Context, tx *sql.Tx, voucherID int, customerID int64) error
}

type VoucherService struct {
	db       *sql.DB // used for redeem transactions
	vouchers VoucherRepo
	usage    VoucherUsageRepo
	logger   *zap.Logger
}

func NewVoucherService(db *sql.DB, vouchers VoucherRepo, usage VoucherUsageRepo, logger *zap.Logger) *VoucherService {
	return &VoucherService{
		db:       db,
		vouchers: vouchers,
		usage:    usage,
		logger:   logger,
	}
}

// Check validates a code against an order subtotal without consuming a use.
// Business rejections come back in the VoucherCheck; the error is only for
// infrastructure failures.
func (s *VoucherService) Check(ctx context.Context, code string, subtotal decimal.Decimal, customerID *int64) (models.VoucherCheck, error) {
	v, err := s.vouchers.GetByCode(ctx, code)
	if err != nil {
		return models.VoucherCheck{}, err
	}
	if v == nil {
		return models.VoucherCheck{Reason: ReasonVoucherNotFound}, nil
	}

	if reason := checkVoucher(v, subtotal, time.Now().UTC()); reason != "" {
		return models.VoucherCheck{Reason: reason}, nil
	}

	if customerID != nil && v.PerUserLimit > 0 {
		used, err := s.usage.CountUsage(ctx, v.ID, *customerID)
		if err != nil {
			return models.VoucherCheck{}, err
		}
		if used >= v.PerUserLimit {
			return models.VoucherCheck{Reason: ReasonUserLimitReached}, nil
		}
	}

	return models.VoucherCheck{Valid: true, Discount: computeDiscount(v, subtotal)}, nil
}

// Redeem performs the same validation under a row lock and, when it passes,
// consumes one use: the voucher counter and, if a customer is known, the
// per-customer counter move together in one transaction.
func (s *VoucherService) Redeem(ctx context.Context, code string, subtotal decimal.Decimal, customerID *int64) (models.VoucherCheck, error) {
	ctx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return models.VoucherCheck{}, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	v, err := s.vouchers.GetAndLock(ctx, tx, code)
	if err != nil {
		return models.VoucherCheck{}, fmt.Errorf("lock voucher: %w", err)
	}
	if v == nil {
		return models.VoucherCheck{Reason: ReasonVoucherNotFound}, nil
	}

	if reason := checkVoucher(v, subtotal, time.Now().UTC()); reason != "" {
		return models.VoucherCheck{Reason: reason}, nil
	}

	if customerID != nil {
		usageCount, err := s.usage.GetAndLockUsage(ctx, tx, v.ID, *customerID)
		if err != nil {
			return models.VoucherCheck{}, fmt.Errorf("lock usage: %w", err)
		}
		if v.PerUserLimit > 0 && usageCount >= v.PerUserLimit {
			return models.VoucherCheck{Reason: ReasonUserLimitReached}, nil
		}
		if err := s.usage.IncrementUsage(ctx, tx, v.ID, *customerID); err != nil {
			return models.VoucherCheck{}, fmt.Errorf("increment usage: %w", err)
		}
	}

	if err := s.vouchers.IncrementUse(ctx, tx, v.ID); err != nil {
		return models.VoucherCheck{}, fmt.Errorf("increment use: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.VoucherCheck{}, fmt.Errorf("tx commit: %w", err)
	}
	committed = true

	discount := computeDiscount(v, subtotal)
	s.logger.Info("voucher redeemed",
		zap.String("code", v.Code),
		zap.String("discount", discount.String()))

	return models.VoucherCheck{Valid: true, Discount: discount}, nil
}

// checkVoucher runs the ordered eligibility checks and returns the first
// failing reason, or "" when the voucher is applicable.
func checkVoucher(v *models.Voucher, subtotal decimal.Decimal, now time.Time) string {
	if v.Status != models.VoucherStatusActive {
		return ReasonVoucherNotActive
	}
	if now.Before(v.StartsAt) || now.After(v.EndsAt) {
		return ReasonNotInValidWindow
	}
	if v.UseLimit != nil && v.UsedCount >= *v.UseLimit {
		return ReasonUseLimitReached
	}
	if subtotal.LessThan(v.MinOrderValue) {
		return ReasonMinOrderNotMet
	}
	return ""
}

// computeDiscount assumes the voucher already validated. Flat vouchers return
// their value; percentage vouchers return subtotal * value/100 clamped to the
// cap when one is configured. The result never exceeds the subtotal.
func computeDiscount(v *models.Voucher, subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch v.Kind {
	case models.VoucherKindPercentage:
		discount = subtotal.Mul(v.Value).Div(decimal.NewFromInt(100))
		if v.MaxDiscount.Valid && discount.GreaterThan(v.MaxDiscount.Decimal) {
			discount = v.MaxDiscount.Decimal
		}
	default: // flat
		discount = v.Value
	}

	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	return discount
}
