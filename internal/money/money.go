// Package money holds the fixed-point helpers every monetary value flows through.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits stored and returned for money.
const Places = 2

// ErrInvalidAmount is returned when a string cannot be read as a decimal amount.
var ErrInvalidAmount = errors.New("money: invalid amount")

// Zero is 0.00.
var Zero = decimal.Zero

// MaxAmount is the largest magnitude a NUMERIC(12,2) column holds.
var MaxAmount = decimal.RequireFromString("9999999999.99")

// Round2 rounds half away from zero to two decimal places. Applying it twice
// yields the same value.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Parse reads a decimal amount such as "10.00" or "5.3012".
func Parse(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

// MustParse is Parse for constants; it panics on malformed input.
func MustParse(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Format renders d with exactly two fractional digits after rounding.
func Format(d decimal.Decimal) string {
	return Round2(d).StringFixed(Places)
}

// Sum adds all values without intermediate rounding.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// InRange reports whether d, once rounded, fits a NUMERIC(12,2) column.
func InRange(d decimal.Decimal) bool {
	return Round2(d).Abs().LessThanOrEqual(MaxAmount)
}

// IsNegative reports whether d is strictly below zero.
func IsNegative(d decimal.Decimal) bool {
	return d.Sign() < 0
}
