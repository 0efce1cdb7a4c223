// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors when summing.
type Money = decimal.Decimal

// NewMoney creates a Money value from a float.
// Form inputs arrive as JSON numbers, so this is the usual entry point.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// Cents rounds m to two fractional digits, half away from zero.
func Cents(m Money) Money {
	return m.Round(2)
}
