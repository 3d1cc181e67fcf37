package utils

import "github.com/shopspring/decimal"

// ToMinorUnits converts a two-decimal currency amount to the integer amount
// payment providers expect (cents, paisa).
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}
