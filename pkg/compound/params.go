package compound

import (
	"github.com/shopspring/decimal"
)

var (
	// DefaultCloseFactor default close factor
	DefaultCloseFactor = decimal.NewFromFloat(0.5)
	// DefaultLiquidationIncentive default liquidation incentive
	DefaultLiquidationIncentive = decimal.NewFromFloat(1.08)
	// DefaultProtocolSeizeShare default protocol seize share, 2.8%
	DefaultProtocolSeizeShare = decimal.NewFromFloat(0.028)
	// DefaultInitExchangeRate default initial exchange rate
	DefaultInitExchangeRate = decimal.New(1, 0)

	// CollateralFactorMax collateral factor must be strictly less than this value
	CollateralFactorMax = one
	// ReserveFactorMax reserve factor must be strictly less than this value
	ReserveFactorMax = one
	// ProtocolSeizeShareMax protocol seize share must be strictly less than this value
	ProtocolSeizeShareMax = one
	// CloseFactorMax close factor must not exceed this value, and must be positive
	CloseFactorMax = one
	// LiquidationIncentiveMin liquidation incentive must be no less than this value
	LiquidationIncentiveMin = one
)

// ValidCollateralFactor [0, 1)
func ValidCollateralFactor(v decimal.Decimal) bool {
	return !v.IsNegative() && v.LessThan(CollateralFactorMax)
}

// ValidReserveFactor [0, 1)
func ValidReserveFactor(v decimal.Decimal) bool {
	return !v.IsNegative() && v.LessThan(ReserveFactorMax)
}

// ValidProtocolSeizeShare [0, 1)
func ValidProtocolSeizeShare(v decimal.Decimal) bool {
	return !v.IsNegative() && v.LessThan(ProtocolSeizeShareMax)
}

// ValidCloseFactor (0, 1]
func ValidCloseFactor(v decimal.Decimal) bool {
	return v.IsPositive() && v.LessThanOrEqual(CloseFactorMax)
}

// ValidLiquidationIncentive >= 1
func ValidLiquidationIncentive(v decimal.Decimal) bool {
	return v.GreaterThanOrEqual(LiquidationIncentiveMin)
}
