package compound

import (
	"moneymarket/core"

	"github.com/shopspring/decimal"
)

// CurBorrowRatePerBlock current borrow rate per block
func CurBorrowRatePerBlock(market *core.Market) decimal.Decimal {
	return ModelOf(market).BorrowRate(market.TotalCash, market.TotalBorrows, market.Reserves)
}

// CurSupplyRatePerBlock current supply rate per block
func CurSupplyRatePerBlock(market *core.Market) decimal.Decimal {
	return ModelOf(market).SupplyRate(market.TotalCash, market.TotalBorrows, market.Reserves, market.ReserveFactor)
}

// CurBorrowRate current borrow APY
func CurBorrowRate(market *core.Market) decimal.Decimal {
	return CurBorrowRatePerBlock(market).Mul(BlocksPerYear).Truncate(MaxPrecision)
}

// CurSupplyRate current supply APY
func CurSupplyRate(market *core.Market) decimal.Decimal {
	return CurSupplyRatePerBlock(market).Mul(BlocksPerYear).Truncate(MaxPrecision)
}

// CurExchangeRate exchange rate computed from the stored totals
func CurExchangeRate(market *core.Market) decimal.Decimal {
	return GetExchangeRate(market.TotalCash, market.TotalBorrows, market.Reserves, market.CTokens, market.InitExchangeRate)
}

// AccrueInterest accrue interest of the market up to block
//
// Accruing interest only occurs when a market operation runs. It is a no-op when
// the market is already at (or past) the given block, so calling it twice for the
// same checkpoint never accrues twice.
func AccrueInterest(market *core.Market, blockNum int64) *core.Accrual {
	if !market.BorrowIndex.IsPositive() {
		market.BorrowIndex = one
	}

	accrual := &core.Accrual{
		CashPrior:    market.TotalCash,
		BorrowIndex:  market.BorrowIndex,
		TotalBorrows: market.TotalBorrows,
	}

	if blockDelta := blockNum - market.BlockNumber; blockDelta > 0 {
		borrowRate := CurBorrowRatePerBlock(market)
		timesBorrowRate := borrowRate.Mul(decimal.NewFromInt(blockDelta))
		interestAccumulated := market.TotalBorrows.Mul(timesBorrowRate).Truncate(MaxPrecision)

		market.BlockNumber = blockNum
		market.TotalBorrows = market.TotalBorrows.Add(interestAccumulated)
		market.Reserves = market.Reserves.Add(interestAccumulated.Mul(market.ReserveFactor).Truncate(MaxPrecision))
		market.BorrowIndex = market.BorrowIndex.Add(
			timesBorrowRate.Mul(market.BorrowIndex).
				Shift(MaxPrecision).Ceil().Shift(-MaxPrecision))

		accrual.InterestAccumulated = interestAccumulated
		accrual.BorrowIndex = market.BorrowIndex
		accrual.TotalBorrows = market.TotalBorrows
		accrual.Blocks = blockDelta
	}

	UpdateMarketRates(market)
	return accrual
}

// UpdateMarketRates refresh the cached utilization, exchange and interest rates
func UpdateMarketRates(market *core.Market) {
	model := ModelOf(market)
	borrowRate, supplyRate := model.Rates(market.TotalCash, market.TotalBorrows, market.Reserves, market.ReserveFactor)

	market.UtilizationRate = model.UtilizationRate(market.TotalCash, market.TotalBorrows, market.Reserves).Truncate(RatePrecision)
	market.ExchangeRate = CurExchangeRate(market)
	market.SupplyRatePerBlock = supplyRate
	market.BorrowRatePerBlock = borrowRate
}
