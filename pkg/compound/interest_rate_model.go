package compound

import (
	"moneymarket/core"

	"github.com/shopspring/decimal"
)

// InterestRateModel jump rate model, all rates are per block
//
// borrow_rate = base + multiplier * min(u, kink) + jump_multiplier * max(u - kink, 0)
//
// A zero kink gives the linear model: base + multiplier * u.
type InterestRateModel struct {
	BaseRatePerBlock       decimal.Decimal `json:"base_rate_per_block"`
	MultiplierPerBlock     decimal.Decimal `json:"multiplier_per_block"`
	JumpMultiplierPerBlock decimal.Decimal `json:"jump_multiplier_per_block"`
	Kink                   decimal.Decimal `json:"kink"`
}

// NewInterestRateModel build a model from per year parameters
func NewInterestRateModel(baseRatePerYear, multiplierPerYear, jumpMultiplierPerYear, kink decimal.Decimal) *InterestRateModel {
	return &InterestRateModel{
		BaseRatePerBlock:       PerBlock(baseRatePerYear),
		MultiplierPerBlock:     PerBlock(multiplierPerYear),
		JumpMultiplierPerBlock: PerBlock(jumpMultiplierPerYear),
		Kink:                   kink,
	}
}

// ModelOf interest rate model configured on the market
func ModelOf(market *core.Market) *InterestRateModel {
	return NewInterestRateModel(market.BaseRate, market.Multiplier, market.JumpMultiplier, market.Kink)
}

// ValidInterestRateModel per year parameters must not be negative and kink must be in [0, 1]
func ValidInterestRateModel(baseRate, multiplier, jumpMultiplier, kink decimal.Decimal) bool {
	if baseRate.IsNegative() || multiplier.IsNegative() || jumpMultiplier.IsNegative() {
		return false
	}

	return !kink.IsNegative() && kink.LessThanOrEqual(one)
}

// UtilizationRate see UtilizationRate
func (m *InterestRateModel) UtilizationRate(cash, borrows, reserves decimal.Decimal) decimal.Decimal {
	return UtilizationRate(cash, borrows, reserves)
}

// BorrowRate borrow rate per block
func (m *InterestRateModel) BorrowRate(cash, borrows, reserves decimal.Decimal) decimal.Decimal {
	return m.borrowRate(m.UtilizationRate(cash, borrows, reserves))
}

// SupplyRate supply rate per block
// supply_rate = borrow_rate * u * (1 - reserve_factor)
func (m *InterestRateModel) SupplyRate(cash, borrows, reserves, reserveFactor decimal.Decimal) decimal.Decimal {
	u := m.UtilizationRate(cash, borrows, reserves)
	return m.supplyRate(u, m.borrowRate(u), reserveFactor)
}

// Rates borrow and supply rate per block
func (m *InterestRateModel) Rates(cash, borrows, reserves, reserveFactor decimal.Decimal) (borrowRate, supplyRate decimal.Decimal) {
	u := m.UtilizationRate(cash, borrows, reserves)
	borrowRate = m.borrowRate(u)
	supplyRate = m.supplyRate(u, borrowRate, reserveFactor)
	return
}

func (m *InterestRateModel) borrowRate(u decimal.Decimal) decimal.Decimal {
	var rate decimal.Decimal
	if !m.Kink.IsPositive() || u.LessThanOrEqual(m.Kink) {
		rate = u.Mul(m.MultiplierPerBlock).Add(m.BaseRatePerBlock)
	} else {
		normalRate := m.Kink.Mul(m.MultiplierPerBlock).Add(m.BaseRatePerBlock)
		excessUtil := u.Sub(m.Kink)
		rate = excessUtil.Mul(m.JumpMultiplierPerBlock).Add(normalRate)
	}

	if rate.IsNegative() {
		return decimal.Zero
	}

	return rate.Truncate(MaxPrecision)
}

func (m *InterestRateModel) supplyRate(u, borrowRate, reserveFactor decimal.Decimal) decimal.Decimal {
	rateToPool := borrowRate.Mul(one.Sub(reserveFactor))
	rate := u.Mul(rateToPool).Truncate(MaxPrecision)
	if rate.IsNegative() {
		return decimal.Zero
	}

	return rate
}
