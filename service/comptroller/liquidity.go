package comptroller

import (
	"context"

	"moneymarket/core"
	"moneymarket/pkg/compound"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

func (c *comptroller) AccountLiquidity(ctx context.Context, userID string) (*core.AccountLiquidity, error) {
	return c.HypotheticalAccountLiquidity(ctx, userID, nil)
}

// HypotheticalAccountLiquidity liquidity of the account as if change was applied
//
// collateral = sum(ctokens * exchange_rate * price * collateral_factor) over entered markets
// borrows = sum(borrow_balance * price) over markets with a borrow, entered or not
//
// A redeem in change only counts when its market is entered. Prices are only
// fetched for markets contributing to either side.
func (c *comptroller) HypotheticalAccountLiquidity(ctx context.Context, userID string, change *core.Hypothetical) (*core.AccountLiquidity, error) {
	log := logger.FromContext(ctx).WithField("account", userID)

	entered, err := c.memberships.Markets(ctx, userID)
	if err != nil {
		log.WithError(err).Errorln("memberships.Markets")
		return nil, err
	}

	borrows, err := c.borrowStore.FindByUser(ctx, userID)
	if err != nil {
		log.WithError(err).Errorln("borrows.FindByUser")
		return nil, err
	}

	isEntered := make(map[string]bool, len(entered))
	marketIDs := make([]string, 0, len(entered)+len(borrows)+1)
	seen := make(map[string]bool)
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			marketIDs = append(marketIDs, id)
		}
	}

	for _, id := range entered {
		isEntered[id] = true
		add(id)
	}

	borrowOf := make(map[string]*core.Borrow, len(borrows))
	for _, b := range borrows {
		borrowOf[b.MarketID] = b
		if b.Principal.IsPositive() {
			add(b.MarketID)
		}
	}

	if change != nil {
		add(change.MarketID)
	}

	oracle := c.Oracle()
	result := &core.AccountLiquidity{
		Liquidity:       decimal.Zero,
		Shortfall:       decimal.Zero,
		CollateralValue: decimal.Zero,
		BorrowValue:     decimal.Zero,
	}

	for _, id := range marketIDs {
		market, err := c.marketStore.Find(ctx, id)
		if err != nil {
			log.WithError(err).Errorln("markets.Find")
			return nil, err
		}

		if !market.IsListed() {
			continue
		}

		exchangeRate := compound.CurExchangeRate(market)

		// collateral tokens
		tokens := decimal.Zero
		if isEntered[id] && market.CollateralFactor.IsPositive() {
			supply, err := c.supplyStore.Find(ctx, userID, id)
			if err != nil {
				log.WithError(err).Errorln("supplies.Find")
				return nil, err
			}
			tokens = supply.CTokens
		}

		borrowBalance := decimal.Zero
		if b, ok := borrowOf[id]; ok {
			borrowBalance = compound.BorrowBalance(b, market)
		}

		redeemTokens, borrowAmount := decimal.Zero, decimal.Zero
		if change != nil && change.MarketID == id {
			if isEntered[id] {
				redeemTokens = change.RedeemTokens
			}
			borrowAmount = change.BorrowAmount
		}

		collateralized := market.CollateralFactor.IsPositive() && (tokens.IsPositive() || redeemTokens.IsPositive())
		if !collateralized && !borrowBalance.IsPositive() && !borrowAmount.IsPositive() {
			continue
		}

		price, err := c.price(ctx, oracle, id)
		if err != nil {
			return nil, err
		}

		// value of one share as collateral
		tokensToDenom := exchangeRate.Mul(price).Mul(market.CollateralFactor)

		if tokens.IsPositive() {
			result.CollateralValue = result.CollateralValue.Add(tokens.Mul(tokensToDenom).Truncate(compound.MaxPrecision))
		}

		result.BorrowValue = result.BorrowValue.
			Add(borrowBalance.Mul(price).Truncate(compound.MaxPrecision)).
			Add(redeemTokens.Mul(tokensToDenom).Truncate(compound.MaxPrecision)).
			Add(borrowAmount.Mul(price).Truncate(compound.MaxPrecision))
	}

	if result.CollateralValue.GreaterThan(result.BorrowValue) {
		result.Liquidity = result.CollateralValue.Sub(result.BorrowValue)
	} else {
		result.Shortfall = result.BorrowValue.Sub(result.CollateralValue)
	}

	return result, nil
}

func (c *comptroller) price(ctx context.Context, oracle core.PriceOracle, marketID string) (decimal.Decimal, error) {
	if oracle == nil {
		return decimal.Zero, core.NewError(core.ErrPriceUnavailable).WithMarket(marketID).WithReason("no price oracle")
	}

	price, err := oracle.Price(ctx, marketID)
	if err != nil {
		logger.FromContext(ctx).WithError(err).WithField("market", marketID).Infoln("oracle.Price")
		if core.CodeOf(err) == core.ErrPriceUnavailable {
			return decimal.Zero, err
		}

		return decimal.Zero, core.NewError(core.ErrPriceUnavailable).WithMarket(marketID).WithReason("%v", err)
	}

	if !price.IsPositive() {
		return decimal.Zero, core.NewError(core.ErrPriceUnavailable).WithMarket(marketID).WithReason("invalid price %s", price)
	}

	return price, nil
}
