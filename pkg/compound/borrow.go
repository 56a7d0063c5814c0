package compound

import (
	"moneymarket/core"
	"moneymarket/pkg/number"

	"github.com/shopspring/decimal"
)

// BorrowBalance calculate borrow balance, rounded up
// balance = borrow.principal * market.borrow_index / borrow.interest_index
func BorrowBalance(b *core.Borrow, market *core.Market) decimal.Decimal {
	if !b.Principal.IsPositive() {
		return decimal.Zero
	}

	borrowIndex := market.BorrowIndex
	if !borrowIndex.IsPositive() {
		borrowIndex = one
	}

	interestIndex := b.InterestIndex
	if !interestIndex.IsPositive() {
		interestIndex = borrowIndex
	}

	return number.DivCeil(b.Principal.Mul(borrowIndex), interestIndex, MaxPrecision)
}
