package comptroller

import (
	"context"

	"moneymarket/core"
	"moneymarket/pkg/compound"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// SetCollateralFactor returns the previous collateral factor of the market
func (c *comptroller) SetCollateralFactor(ctx context.Context, marketID string, factor decimal.Decimal) (decimal.Decimal, error) {
	market, err := c.listedMarket(ctx, marketID)
	if err != nil {
		return decimal.Zero, err
	}

	if !compound.ValidCollateralFactor(factor) {
		return decimal.Zero, core.NewError(core.ErrInvalidParameter).
			WithMarket(marketID).
			WithReason("collateral factor %s out of [0, 1)", factor)
	}

	old := market.CollateralFactor
	market.CollateralFactor = factor
	if err := c.marketStore.Save(ctx, market); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("markets.Save")
		return decimal.Zero, err
	}

	return old, nil
}

// SetMarketBorrowCap returns the previous borrow cap, zero means unlimited
func (c *comptroller) SetMarketBorrowCap(ctx context.Context, marketID string, borrowCap decimal.Decimal) (decimal.Decimal, error) {
	market, err := c.listedMarket(ctx, marketID)
	if err != nil {
		return decimal.Zero, err
	}

	if borrowCap.IsNegative() {
		return decimal.Zero, core.NewError(core.ErrInvalidParameter).
			WithMarket(marketID).
			WithReason("negative borrow cap %s", borrowCap)
	}

	old := market.BorrowCap
	market.BorrowCap = borrowCap
	if err := c.marketStore.Save(ctx, market); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("markets.Save")
		return decimal.Zero, err
	}

	return old, nil
}

func (c *comptroller) SetCloseFactor(ctx context.Context, factor decimal.Decimal) (decimal.Decimal, error) {
	if !compound.ValidCloseFactor(factor) {
		return decimal.Zero, core.NewError(core.ErrInvalidParameter).WithReason("close factor %s out of (0, 1]", factor)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.params.CloseFactor
	c.params.CloseFactor = factor
	return old, nil
}

func (c *comptroller) SetLiquidationIncentive(ctx context.Context, incentive decimal.Decimal) (decimal.Decimal, error) {
	if !compound.ValidLiquidationIncentive(incentive) {
		return decimal.Zero, core.NewError(core.ErrInvalidParameter).WithReason("liquidation incentive %s less than 1", incentive)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.params.LiquidationIncentive
	c.params.LiquidationIncentive = incentive
	return old, nil
}

func (c *comptroller) SetProtocolSeizeShare(ctx context.Context, share decimal.Decimal) (decimal.Decimal, error) {
	if !compound.ValidProtocolSeizeShare(share) {
		return decimal.Zero, core.NewError(core.ErrInvalidParameter).WithReason("protocol seize share %s out of [0, 1)", share)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.params.ProtocolSeizeShare
	c.params.ProtocolSeizeShare = share
	return old, nil
}

// SetPriceOracle returns the previous oracle
func (c *comptroller) SetPriceOracle(ctx context.Context, oracle core.PriceOracle) core.PriceOracle {
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.oracle
	c.oracle = oracle
	return old
}
