package engine

import (
	"context"

	"moneymarket/core"
	"moneymarket/pkg/compound"

	"github.com/shopspring/decimal"
)

// Markets all listed markets
func (e *Engine) Markets(ctx context.Context) (markets []*core.Market, err error) {
	err = e.view(ctx, func(ctx context.Context) error {
		all, err := e.marketStore.All(ctx)
		if err != nil {
			return err
		}

		for _, m := range all {
			if m.IsListed() {
				markets = append(markets, m)
			}
		}

		return nil
	})

	return
}

// Market a listed market as stored, interest is not accrued
func (e *Engine) Market(ctx context.Context, marketID string) (market *core.Market, err error) {
	err = e.view(ctx, func(ctx context.Context) error {
		market, err = e.listedMarket(ctx, marketID)
		return err
	})

	return
}

// ExchangeRateStored exchange rate as of the last accrual
func (e *Engine) ExchangeRateStored(ctx context.Context, marketID string) (decimal.Decimal, error) {
	market, err := e.Market(ctx, marketID)
	if err != nil {
		return decimal.Zero, err
	}

	return compound.CurExchangeRate(market), nil
}

// ExchangeRateCurrent accrue interest then return the exchange rate
func (e *Engine) ExchangeRateCurrent(ctx context.Context, marketID string) (decimal.Decimal, error) {
	if err := e.AccrueInterest(ctx, marketID); err != nil {
		return decimal.Zero, err
	}

	return e.ExchangeRateStored(ctx, marketID)
}

// BorrowBalanceStored borrow balance of the user as of the last accrual
func (e *Engine) BorrowBalanceStored(ctx context.Context, userID, marketID string) (balance decimal.Decimal, err error) {
	err = e.view(ctx, func(ctx context.Context) error {
		market, err := e.listedMarket(ctx, marketID)
		if err != nil {
			return err
		}

		balance, err = e.marketSrv.BorrowBalance(ctx, market, userID)
		return err
	})

	return
}

// BorrowBalanceCurrent accrue interest then return the borrow balance
func (e *Engine) BorrowBalanceCurrent(ctx context.Context, userID, marketID string) (decimal.Decimal, error) {
	if err := e.AccrueInterest(ctx, marketID); err != nil {
		return decimal.Zero, err
	}

	return e.BorrowBalanceStored(ctx, userID, marketID)
}

// BalanceOfUnderlying accrue interest then return the underlying value of the user's shares
func (e *Engine) BalanceOfUnderlying(ctx context.Context, userID, marketID string) (decimal.Decimal, error) {
	if err := e.AccrueInterest(ctx, marketID); err != nil {
		return decimal.Zero, err
	}

	account, err := e.Account(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	for _, p := range account.Positions {
		if p.MarketID == marketID {
			return p.UnderlyingBalance, nil
		}
	}

	return decimal.Zero, nil
}

// Account positions and liquidity of the user
func (e *Engine) Account(ctx context.Context, userID string) (account *core.Account, err error) {
	err = e.view(ctx, func(ctx context.Context) error {
		account, err = e.accountSrv.Find(ctx, userID)
		return err
	})

	return
}

// AccountsInShortfall accounts eligible for liquidation
func (e *Engine) AccountsInShortfall(ctx context.Context) (accounts []*core.Account, err error) {
	err = e.view(ctx, func(ctx context.Context) error {
		accounts, err = e.accountSrv.ShortfallAccounts(ctx)
		return err
	})

	return
}

// AccountLiquidity liquidity of the user at stored prices and balances
func (e *Engine) AccountLiquidity(ctx context.Context, userID string) (*core.AccountLiquidity, error) {
	return e.HypotheticalAccountLiquidity(ctx, userID, nil)
}

// HypotheticalAccountLiquidity liquidity of the user as if change was applied
func (e *Engine) HypotheticalAccountLiquidity(ctx context.Context, userID string, change *core.Hypothetical) (liquidity *core.AccountLiquidity, err error) {
	err = e.view(ctx, func(ctx context.Context) error {
		if change != nil && change.MarketID != "" {
			if _, err := e.listedMarket(ctx, change.MarketID); err != nil {
				return err
			}
		}

		liquidity, err = e.comptroller.HypotheticalAccountLiquidity(ctx, userID, change)
		return err
	})

	return
}

// LiquidateCalculateSeizeTokens collateral shares seized for repaying repayAmount, at stored exchange rates
func (e *Engine) LiquidateCalculateSeizeTokens(ctx context.Context, borrowMarketID, collateralMarketID string, repayAmount decimal.Decimal) (tokens decimal.Decimal, err error) {
	err = e.view(ctx, func(ctx context.Context) error {
		borrowMarket, err := e.listedMarket(ctx, borrowMarketID)
		if err != nil {
			return err
		}

		collateralMarket, err := e.listedMarket(ctx, collateralMarketID)
		if err != nil {
			return err
		}

		tokens, err = e.comptroller.LiquidateCalculateSeizeTokens(ctx, borrowMarket, collateralMarket, repayAmount)
		return err
	})

	return
}

// Params current risk parameters
func (e *Engine) Params() core.RiskParams {
	return e.comptroller.Params()
}

// Oracle current price oracle
func (e *Engine) Oracle() core.PriceOracle {
	return e.comptroller.Oracle()
}

// Rates current utilization, borrow and supply rates of the market
type Rates struct {
	UtilizationRate    decimal.Decimal `json:"utilization_rate"`
	BorrowRatePerBlock decimal.Decimal `json:"borrow_rate_per_block"`
	SupplyRatePerBlock decimal.Decimal `json:"supply_rate_per_block"`
	BorrowRate         decimal.Decimal `json:"borrow_rate"`
	SupplyRate         decimal.Decimal `json:"supply_rate"`
	ExchangeRate       decimal.Decimal `json:"exchange_rate"`
}

// MarketRates rates of the market as of the last accrual
func (e *Engine) MarketRates(ctx context.Context, marketID string) (*Rates, error) {
	market, err := e.Market(ctx, marketID)
	if err != nil {
		return nil, err
	}

	return &Rates{
		UtilizationRate:    e.marketSrv.CurUtilizationRate(ctx, market),
		BorrowRatePerBlock: e.marketSrv.CurBorrowRatePerBlock(ctx, market),
		SupplyRatePerBlock: e.marketSrv.CurSupplyRatePerBlock(ctx, market),
		BorrowRate:         e.marketSrv.CurBorrowRate(ctx, market),
		SupplyRate:         e.marketSrv.CurSupplyRate(ctx, market),
		ExchangeRate:       e.marketSrv.CurExchangeRate(ctx, market),
	}, nil
}
