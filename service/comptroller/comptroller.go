package comptroller

import (
	"context"
	"sync"

	"moneymarket/core"
	"moneymarket/pkg/compound"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

type comptroller struct {
	id          string
	marketStore core.IMarketStore
	supplyStore core.ISupplyStore
	borrowStore core.IBorrowStore
	memberships core.IMembershipStore

	mu     sync.RWMutex
	params core.RiskParams
	oracle core.PriceOracle
}

// New new risk controller
//
// Markets listed by this controller carry its id, seizing is only allowed
// between markets sharing the same id.
func New(
	id string,
	params core.RiskParams,
	oracle core.PriceOracle,
	marketStr core.IMarketStore,
	supplyStr core.ISupplyStore,
	borrowStr core.IBorrowStore,
	membershipStr core.IMembershipStore,
) core.IComptroller {
	return &comptroller{
		id:          id,
		params:      params,
		oracle:      oracle,
		marketStore: marketStr,
		supplyStore: supplyStr,
		borrowStore: borrowStr,
		memberships: membershipStr,
	}
}

func (c *comptroller) ID() string {
	return c.id
}

func (c *comptroller) Params() core.RiskParams {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.params
}

func (c *comptroller) Oracle() core.PriceOracle {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.oracle
}

// ListMarket list the market, returns false when it is already listed
func (c *comptroller) ListMarket(ctx context.Context, market *core.Market) (bool, error) {
	exist, err := c.marketStore.Find(ctx, market.ID)
	if err != nil {
		return false, err
	}

	if exist.IsListed() {
		*market = *exist
		return false, nil
	}

	switch {
	case market.ID == "":
		return false, core.NewError(core.ErrInvalidParameter).WithReason("empty market id")
	case !compound.ValidCollateralFactor(market.CollateralFactor):
		return false, core.NewError(core.ErrInvalidParameter).WithMarket(market.ID).WithReason("collateral factor %s out of [0, 1)", market.CollateralFactor)
	case !compound.ValidReserveFactor(market.ReserveFactor):
		return false, core.NewError(core.ErrInvalidParameter).WithMarket(market.ID).WithReason("reserve factor %s out of [0, 1)", market.ReserveFactor)
	case !compound.ValidInterestRateModel(market.BaseRate, market.Multiplier, market.JumpMultiplier, market.Kink):
		return false, core.NewError(core.ErrInvalidParameter).WithMarket(market.ID).WithReason("invalid interest rate model")
	case !market.InitExchangeRate.IsPositive():
		return false, core.NewError(core.ErrInvalidParameter).WithMarket(market.ID).WithReason("initial exchange rate must be positive")
	case market.BorrowCap.IsNegative():
		return false, core.NewError(core.ErrInvalidParameter).WithMarket(market.ID).WithReason("negative borrow cap")
	}

	if !market.BorrowIndex.IsPositive() {
		market.BorrowIndex = decimal.New(1, 0)
	}

	market.Comptroller = c.id
	market.Listed = true
	compound.UpdateMarketRates(market)

	if err := c.marketStore.Save(ctx, market); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("markets.Save")
		return false, err
	}

	return true, nil
}

func (c *comptroller) listedMarket(ctx context.Context, marketID string) (*core.Market, error) {
	market, err := c.marketStore.Find(ctx, marketID)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("markets.Find")
		return nil, err
	}

	if !market.IsListed() {
		return nil, core.NewError(core.ErrMarketNotListed).WithMarket(marketID)
	}

	return market, nil
}

// EnterMarket add the market to the account's collateral set, returns false when already a member
func (c *comptroller) EnterMarket(ctx context.Context, userID, marketID string) (bool, error) {
	if _, err := c.listedMarket(ctx, marketID); err != nil {
		return false, err
	}

	has, err := c.memberships.Has(ctx, userID, marketID)
	if err != nil || has {
		return false, err
	}

	if err := c.memberships.Add(ctx, userID, marketID); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("memberships.Add")
		return false, err
	}

	return true, nil
}

// ExitMarket remove the market from the account's collateral set, returns false when not a member
//
// Exit is refused while the account borrows from the market, or when dropping the
// market's collateral would leave the account in shortfall.
func (c *comptroller) ExitMarket(ctx context.Context, userID, marketID string) (bool, error) {
	market, err := c.listedMarket(ctx, marketID)
	if err != nil {
		return false, err
	}

	has, err := c.memberships.Has(ctx, userID, marketID)
	if err != nil || !has {
		return false, err
	}

	borrow, err := c.borrowStore.Find(ctx, userID, marketID)
	if err != nil {
		return false, err
	}

	if balance := compound.BorrowBalance(borrow, market); balance.IsPositive() {
		return false, core.NewError(core.ErrMembershipRequiredForBorrow).
			WithMarket(marketID).
			WithAccount(userID).
			WithAmounts(decimal.Zero, balance).
			WithReason("outstanding borrow")
	}

	supply, err := c.supplyStore.Find(ctx, userID, marketID)
	if err != nil {
		return false, err
	}

	if supply.CTokens.IsPositive() {
		liquidity, err := c.HypotheticalAccountLiquidity(ctx, userID, &core.Hypothetical{
			MarketID:     marketID,
			RedeemTokens: supply.CTokens,
		})
		if err != nil {
			return false, err
		}

		if liquidity.Shortfall.IsPositive() {
			return false, core.NewError(core.ErrMembershipRequiredForBorrow).
				WithMarket(marketID).
				WithAccount(userID).
				WithAmounts(liquidity.BorrowValue, liquidity.CollateralValue).
				WithReason("collateral is required by outstanding borrows")
		}
	}

	if err := c.memberships.Remove(ctx, userID, marketID); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("memberships.Remove")
		return false, err
	}

	return true, nil
}
