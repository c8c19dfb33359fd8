package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	VoucherKindPercentage = "percentage"
	VoucherKindFlat       = "flat"
)

const (
	VoucherStatusActive    = "active"
	VoucherStatusSuspended = "suspended"
	VoucherStatusExpired   = "expired"
)

type Voucher struct {
	ID            int
	Code          string
	Kind          string
	Value         decimal.Decimal
	MaxDiscount   decimal.NullDecimal // cap, percentage kind only
	MinOrderValue decimal.Decimal
	StartsAt      time.Time
	EndsAt        time.Time
	UseLimit      *int // nil = unlimited
	UsedCount     int
	PerUserLimit  int // 0 = unlimited
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// VoucherCheck is the outcome of validating a code against an order.
type VoucherCheck struct {
	Valid    bool            `json:"valid"`
	Reason   string          `json:"reason,omitempty"`
	Discount decimal.Decimal `json:"discount"`
}
