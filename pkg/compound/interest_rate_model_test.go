package compound

import (
	"testing"

	"moneymarket/pkg/number"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func perBlockModel(base, multiplier, jump, kink string) *InterestRateModel {
	return &InterestRateModel{
		BaseRatePerBlock:       number.Decimal(base),
		MultiplierPerBlock:     number.Decimal(multiplier),
		JumpMultiplierPerBlock: number.Decimal(jump),
		Kink:                   number.Decimal(kink),
	}
}

func TestInterestRateModel_BorrowRate(t *testing.T) {
	linear := perBlockModel("0.01", "0.1", "0", "0")
	jump := perBlockModel("0.01", "0.1", "1", "0.8")

	for _, c := range []struct {
		name          string
		model         *InterestRateModel
		cash, borrows string
		want          string
	}{
		{"linear idle", linear, "100", "0", "0.01"},
		{"linear half", linear, "50", "50", "0.06"},
		{"linear full", linear, "0", "10", "0.11"},
		{"jump below kink", jump, "50", "50", "0.06"},
		{"jump at kink", jump, "20", "80", "0.09"},
		{"jump above kink", jump, "10", "90", "0.19"},
	} {
		t.Run(c.name, func(t *testing.T) {
			rate := c.model.BorrowRate(number.Decimal(c.cash), number.Decimal(c.borrows), decimal.Zero)
			assert.Equal(t, c.want, rate.String())
		})
	}
}

func TestInterestRateModel_SupplyRate(t *testing.T) {
	model := perBlockModel("0.01", "0.1", "0", "0")

	// borrow 0.06 * u 0.5 * (1 - 0.1)
	supply := model.SupplyRate(number.Decimal("50"), number.Decimal("50"), decimal.Zero, number.Decimal("0.1"))
	assert.Equal(t, "0.027", supply.String())

	borrow, supply2 := model.Rates(number.Decimal("50"), number.Decimal("50"), decimal.Zero, number.Decimal("0.1"))
	assert.Equal(t, "0.06", borrow.String())
	assert.True(t, supply.Equal(supply2))

	idle := model.SupplyRate(number.Decimal("50"), decimal.Zero, decimal.Zero, decimal.Zero)
	assert.True(t, idle.IsZero(), "no borrows, no supply interest")
}

func TestInterestRateModel_NeverNegative(t *testing.T) {
	model := perBlockModel("0", "0", "0", "0")
	borrow, supply := model.Rates(number.Decimal("1"), number.Decimal("1"), decimal.Zero, number.Decimal("0.5"))
	assert.False(t, borrow.IsNegative())
	assert.False(t, supply.IsNegative())
}

func TestNewInterestRateModel(t *testing.T) {
	model := NewInterestRateModel(number.Decimal("0.02"), number.Decimal("0.2"), number.Decimal("1.1"), number.Decimal("0.9"))
	assert.True(t, model.BaseRatePerBlock.Equal(PerBlock(number.Decimal("0.02"))))
	assert.True(t, model.MultiplierPerBlock.Equal(PerBlock(number.Decimal("0.2"))))
	assert.True(t, model.JumpMultiplierPerBlock.Equal(PerBlock(number.Decimal("1.1"))))
	assert.Equal(t, "0.9", model.Kink.String())
}

func TestValidInterestRateModel(t *testing.T) {
	assert.True(t, ValidInterestRateModel(number.Decimal("0.02"), number.Decimal("0.2"), decimal.Zero, decimal.Zero))
	assert.False(t, ValidInterestRateModel(number.Decimal("-0.02"), number.Decimal("0.2"), decimal.Zero, decimal.Zero))
	assert.False(t, ValidInterestRateModel(decimal.Zero, decimal.Zero, decimal.Zero, number.Decimal("1.1")))
}
