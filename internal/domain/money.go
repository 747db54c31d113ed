package domain

import "github.com/shopspring/decimal"

// RoundMoney normalizes an amount to 2 decimal places. Intermediate pricing
// arithmetic stays unrounded; only terminal totals go through here.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func MoneyFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
