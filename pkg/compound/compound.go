package compound

import (
	"moneymarket/pkg/number"

	"github.com/shopspring/decimal"
)

var (
	// SecondsPerBlock seconds per block
	SecondsPerBlock int64 = 15
	// BlocksPerYear blocks per year
	BlocksPerYear = decimal.NewFromInt(2102400)
	// MaxPrecision max precision, 18-digit mantissa
	MaxPrecision int32 = 18
	// RatePrecision precision of the cached rates on a market
	RatePrecision int32 = 16

	one = decimal.New(1, 0)
)

// Mul a * b truncated at max precision
func Mul(a, b decimal.Decimal) decimal.Decimal {
	return a.Mul(b).Truncate(MaxPrecision)
}

// Div a / b truncated at max precision
func Div(a, b decimal.Decimal) decimal.Decimal {
	return number.Div(a, b, MaxPrecision)
}

// UtilizationRate utilization rate
// utilization_rate = market.total_borrows / (market.total_cash + market.total_borrows), bounded to [0, 1]
//
// reserves are part of the rate model signature but do not reduce the denominator
func UtilizationRate(cash, borrows, reserves decimal.Decimal) decimal.Decimal {
	if !borrows.IsPositive() {
		return decimal.Zero
	}

	total := cash.Add(borrows)
	if !total.IsPositive() {
		return decimal.Zero
	}

	return number.Clamp(Div(borrows, total), decimal.Zero, one)
}

// GetExchangeRate exchange rate
// exchange_rate = (market.total_cash + market.total_borrows - market.reserves) / market.ctokens
func GetExchangeRate(totalCash, totalBorrows, totalReserves, tokenSupply, initialExchangeRate decimal.Decimal) decimal.Decimal {
	if !tokenSupply.IsPositive() {
		return initialExchangeRate
	}

	return Div(totalCash.Add(totalBorrows).Sub(totalReserves), tokenSupply)
}

// PerBlock convert a per year rate into a per block rate
func PerBlock(ratePerYear decimal.Decimal) decimal.Decimal {
	return Div(ratePerYear, BlocksPerYear)
}
