package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GuestCartLine is one (session, product) row. The unique pair constraint in
// the database is what makes re-adds an increment instead of a duplicate.
type GuestCartLine struct {
	ID           int             `json:"id"`
	SessionToken string          `json:"session_token"`
	ProductID    int             `json:"product_id"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Selected     bool            `json:"selected"`
	ExpiresAt    *time.Time      `json:"expires_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CartLineView is a cart line joined to its product for display.
type CartLineView struct {
	GuestCartLine
	ProductName  string          `json:"product_name"`
	ProductImage string          `json:"product_image"`
	CurrentPrice decimal.Decimal `json:"current_price"`
}
