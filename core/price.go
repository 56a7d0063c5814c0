package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PriceOracle price per unit of a market's underlying asset
//
// A zero or negative price is treated as unavailable.
type PriceOracle interface {
	Price(ctx context.Context, marketID string) (decimal.Decimal, error)
}

// PriceTicker price ticker of an external price feed
type PriceTicker struct {
	Provider  string          `json:"provider,omitempty"`
	Symbol    string          `json:"symbol,omitempty"`
	Price     decimal.Decimal `json:"price,omitempty"`
	Timestamp time.Time       `json:"timestamp,omitempty"`
}

// PriceSetter price oracle whose prices are posted by an administrator
type PriceSetter interface {
	PriceOracle
	// SetUnderlyingPrice returns the previous price, zero when none was posted
	SetUnderlyingPrice(ctx context.Context, marketID string, price decimal.Decimal) (decimal.Decimal, error)
}
