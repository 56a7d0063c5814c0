package number

import (
	"github.com/shopspring/decimal"
)

var one = decimal.New(1, 0)

func Decimal(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

func Ceil(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.Shift(precision).Ceil().Shift(-precision)
}

func Floor(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.Shift(precision).Floor().Shift(-precision)
}

// Div a / b truncated toward zero at precision
//
// decimal.Div rounds half up, which may hand out one unit more than owned
func Div(a, b decimal.Decimal, precision int32) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}

	q, _ := a.QuoRem(b, precision)
	return q
}

// DivCeil a / b rounded up at precision, for non-negative operands
func DivCeil(a, b decimal.Decimal, precision int32) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}

	q, r := a.QuoRem(b, precision)
	if r.IsPositive() {
		q = q.Add(one.Shift(-precision))
	}

	return q
}

// Clamp d into [min, max]
func Clamp(d, min, max decimal.Decimal) decimal.Decimal {
	if d.LessThan(min) {
		return min
	}

	if d.GreaterThan(max) {
		return max
	}

	return d
}
