package comptroller

import (
	"context"

	"moneymarket/core"
	"moneymarket/pkg/compound"

	"github.com/shopspring/decimal"
)

func (c *comptroller) MintAllowed(ctx context.Context, market *core.Market, userID string, amount decimal.Decimal) error {
	if !market.IsListed() {
		return core.NewError(core.ErrMarketNotListed).WithMarket(market.ID)
	}

	return nil
}

// RedeemAllowed shares of a market not entered are free to redeem, otherwise the
// account must stay out of shortfall after redeeming.
func (c *comptroller) RedeemAllowed(ctx context.Context, market *core.Market, userID string, ctokens decimal.Decimal) error {
	if !market.IsListed() {
		return core.NewError(core.ErrMarketNotListed).WithMarket(market.ID)
	}

	has, err := c.memberships.Has(ctx, userID, market.ID)
	if err != nil || !has {
		return err
	}

	liquidity, err := c.HypotheticalAccountLiquidity(ctx, userID, &core.Hypothetical{
		MarketID:     market.ID,
		RedeemTokens: ctokens,
	})
	if err != nil {
		return err
	}

	if liquidity.Shortfall.IsPositive() {
		return core.NewError(core.ErrInsufficientLiquidity).
			WithMarket(market.ID).
			WithAccount(userID).
			WithAmounts(liquidity.BorrowValue, liquidity.CollateralValue)
	}

	return nil
}

// BorrowAllowed the account must stay out of shortfall after borrowing. It
// reads state only, the caller enters the market for the borrower.
func (c *comptroller) BorrowAllowed(ctx context.Context, market *core.Market, userID string, amount decimal.Decimal) error {
	if !market.IsListed() {
		return core.NewError(core.ErrMarketNotListed).WithMarket(market.ID)
	}

	if _, err := c.price(ctx, c.Oracle(), market.ID); err != nil {
		return err
	}

	if borrowCap := market.BorrowCap; borrowCap.IsPositive() {
		if next := market.TotalBorrows.Add(amount); next.GreaterThan(borrowCap) {
			return core.NewError(core.ErrBorrowCapReached).
				WithMarket(market.ID).
				WithAccount(userID).
				WithAmounts(next, borrowCap)
		}
	}

	liquidity, err := c.HypotheticalAccountLiquidity(ctx, userID, &core.Hypothetical{
		MarketID:     market.ID,
		BorrowAmount: amount,
	})
	if err != nil {
		return err
	}

	if liquidity.Shortfall.IsPositive() {
		return core.NewError(core.ErrInsufficientCollateral).
			WithMarket(market.ID).
			WithAccount(userID).
			WithAmounts(liquidity.BorrowValue, liquidity.CollateralValue)
	}

	return nil
}

func (c *comptroller) RepayBorrowAllowed(ctx context.Context, market *core.Market, payerID, borrowerID string, amount decimal.Decimal) error {
	if !market.IsListed() {
		return core.NewError(core.ErrMarketNotListed).WithMarket(market.ID)
	}

	return nil
}

// LiquidateBorrowAllowed the borrower must be in shortfall and repay at most
// close_factor of its debt in the borrowed market.
func (c *comptroller) LiquidateBorrowAllowed(ctx context.Context, borrowMarket, collateralMarket *core.Market, liquidatorID, borrowerID string, repayAmount decimal.Decimal) error {
	if !borrowMarket.IsListed() {
		return core.NewError(core.ErrMarketNotListed).WithMarket(borrowMarket.ID)
	}

	if !collateralMarket.IsListed() {
		return core.NewError(core.ErrMarketNotListed).WithMarket(collateralMarket.ID)
	}

	if liquidatorID == borrowerID {
		return core.NewError(core.ErrLiquidateSelf).WithAccount(borrowerID)
	}

	if !repayAmount.IsPositive() {
		return core.NewError(core.ErrZeroAmount).WithMarket(borrowMarket.ID).WithAccount(liquidatorID)
	}

	liquidity, err := c.AccountLiquidity(ctx, borrowerID)
	if err != nil {
		return err
	}

	if !liquidity.Shortfall.IsPositive() {
		return core.NewError(core.ErrNotEligibleForLiquidation).
			WithAccount(borrowerID).
			WithAmounts(liquidity.BorrowValue, liquidity.CollateralValue)
	}

	borrow, err := c.borrowStore.Find(ctx, borrowerID, borrowMarket.ID)
	if err != nil {
		return err
	}

	maxRepay := compound.MaxRepay(compound.BorrowBalance(borrow, borrowMarket), c.Params().CloseFactor)
	if repayAmount.GreaterThan(maxRepay) {
		return core.NewError(core.ErrRepayExceedsCloseFactorLimit).
			WithMarket(borrowMarket.ID).
			WithAccount(borrowerID).
			WithAmounts(repayAmount, maxRepay)
	}

	return nil
}

// SeizeAllowed both markets must be listed by this controller
func (c *comptroller) SeizeAllowed(ctx context.Context, collateralMarket, borrowMarket *core.Market, liquidatorID, borrowerID string, seizeTokens decimal.Decimal) error {
	if !collateralMarket.IsListed() {
		return core.NewError(core.ErrMarketNotListed).WithMarket(collateralMarket.ID)
	}

	if !borrowMarket.IsListed() {
		return core.NewError(core.ErrMarketNotListed).WithMarket(borrowMarket.ID)
	}

	if collateralMarket.Comptroller != borrowMarket.Comptroller || collateralMarket.Comptroller != c.id {
		return core.NewError(core.ErrSeizeNotAllowed).
			WithMarket(collateralMarket.ID).
			WithReason("comptroller mismatch %q != %q", collateralMarket.Comptroller, borrowMarket.Comptroller)
	}

	if liquidatorID == borrowerID {
		return core.NewError(core.ErrLiquidateSelf).WithAccount(borrowerID)
	}

	return nil
}

// LiquidateCalculateSeizeTokens collateral shares to seize for repaying repayAmount of the borrowed asset
func (c *comptroller) LiquidateCalculateSeizeTokens(ctx context.Context, borrowMarket, collateralMarket *core.Market, repayAmount decimal.Decimal) (decimal.Decimal, error) {
	oracle := c.Oracle()

	priceBorrowed, err := c.price(ctx, oracle, borrowMarket.ID)
	if err != nil {
		return decimal.Zero, err
	}

	priceCollateral, err := c.price(ctx, oracle, collateralMarket.ID)
	if err != nil {
		return decimal.Zero, err
	}

	return compound.SeizeTokens(
		repayAmount,
		c.Params().LiquidationIncentive,
		priceBorrowed,
		priceCollateral,
		compound.CurExchangeRate(collateralMarket),
	), nil
}
