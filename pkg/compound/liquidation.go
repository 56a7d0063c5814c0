package compound

import (
	"github.com/shopspring/decimal"
)

// MaxRepay max amount repayable in one liquidation
// max_repay = borrow_balance * close_factor
func MaxRepay(borrowBalance, closeFactor decimal.Decimal) decimal.Decimal {
	return Mul(borrowBalance, closeFactor)
}

// SeizeTokens collateral shares seized for repaying repayAmount of debt, rounded down
//
// seize_tokens = repay_amount * liquidation_incentive * price_borrowed / (price_collateral * exchange_rate_collateral)
func SeizeTokens(repayAmount, liquidationIncentive, priceBorrowed, priceCollateral, exchangeRate decimal.Decimal) decimal.Decimal {
	numerator := repayAmount.Mul(liquidationIncentive).Mul(priceBorrowed)
	denominator := priceCollateral.Mul(exchangeRate)
	if !denominator.IsPositive() {
		return decimal.Zero
	}

	return Div(numerator, denominator)
}

// SplitSeizeTokens split seized shares between liquidator and protocol
//
// protocol_tokens = seize_tokens * protocol_seize_share, rounded down
// liquidator_tokens = seize_tokens - protocol_tokens
func SplitSeizeTokens(seizeTokens, protocolSeizeShare decimal.Decimal) (liquidatorTokens, protocolTokens decimal.Decimal) {
	protocolTokens = Mul(seizeTokens, protocolSeizeShare)
	liquidatorTokens = seizeTokens.Sub(protocolTokens)
	return
}
