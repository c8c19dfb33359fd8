package models

import "github.com/shopspring/decimal"

// ShippingRule is one row of the tiered fee table. A nil Region matches any
// destination; exact matches always beat wildcards.
type ShippingRule struct {
	ID          int
	Region      *string
	MinOrder    decimal.Decimal
	MaxOrder    decimal.NullDecimal // unset = unbounded
	MinDistance decimal.NullDecimal
	MaxDistance decimal.NullDecimal
	FlatFee     decimal.Decimal
	FreeFrom    decimal.NullDecimal // unset = no free-shipping threshold
	Priority    int
	Active      bool
}
