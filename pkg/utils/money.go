package utils

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// RoundCents rounds to two decimal places, half away from zero
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// PercentOf returns amount * percent / 100, unrounded
func PercentOf(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(hundred)
}

// MinDecimal returns the smaller of a and b
func MinDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
