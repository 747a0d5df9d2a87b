package models

import "github.com/shopspring/decimal"

// MoneyPlaces matches the decimal(18,2) money columns.
const MoneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds to cents, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// PercentOf returns pct percent of amount, rounded to cents.
func PercentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return RoundMoney(amount.Mul(pct).Div(hundred))
}
