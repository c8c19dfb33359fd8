package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipping  OrderStatus = "shipping"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type Order struct {
	ID           int             `json:"id"`
	Code         string          `json:"code"`
	CustomerID   *int64          `json:"customer_id,omitempty"`
	SessionToken string          `json:"-"`
	Region       string          `json:"region"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingFee  decimal.Decimal `json:"shipping_fee"`
	Discount     decimal.Decimal `json:"discount"`
	VoucherCode  *string         `json:"voucher_code,omitempty"`
	Total        decimal.Decimal `json:"total"`
	Status       OrderStatus     `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type OrderLine struct {
	ID        int             `json:"id"`
	OrderID   int             `json:"order_id"`
	ProductID int             `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// OrderStatusEntry is one row of the append-only transition log.
type OrderStatusEntry struct {
	ID        int         `json:"id"`
	OrderID   int         `json:"order_id"`
	OldStatus OrderStatus `json:"old_status"`
	NewStatus OrderStatus `json:"new_status"`
	Actor     string      `json:"actor"`
	Reason    string      `json:"reason"`
	CreatedAt time.Time   `json:"created_at"`
}
