package oracle

import (
	"context"
	"sync"

	"moneymarket/core"

	"github.com/shopspring/decimal"
)

// SimplePriceOracle prices posted by an administrator
type SimplePriceOracle struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
}

// NewSimple new simple price oracle
func NewSimple() *SimplePriceOracle {
	return &SimplePriceOracle{
		prices: make(map[string]decimal.Decimal),
	}
}

// Price posted price of the market, PriceUnavailable when none is positive
func (o *SimplePriceOracle) Price(ctx context.Context, marketID string) (decimal.Decimal, error) {
	o.mu.RLock()
	price, ok := o.prices[marketID]
	o.mu.RUnlock()

	if !ok || !price.IsPositive() {
		return decimal.Zero, core.NewError(core.ErrPriceUnavailable).WithMarket(marketID)
	}

	return price, nil
}

// SetUnderlyingPrice post the price, returning the previous one
func (o *SimplePriceOracle) SetUnderlyingPrice(ctx context.Context, marketID string, price decimal.Decimal) (decimal.Decimal, error) {
	if price.IsNegative() {
		return decimal.Zero, core.NewError(core.ErrInvalidParameter).WithMarket(marketID).WithReason("negative price %s", price)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	prev := o.prices[marketID]
	o.prices[marketID] = price
	return prev, nil
}
