// Package pricing converts foreign product costs into frozen local costs and
// derives line and order totals from them.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-importa/internal/money"
)

// RegionalSurcharge is the 6.5% regional tax charged after currency conversion.
var RegionalSurcharge = decimal.RequireFromString("0.065")

var surchargeMultiplier = decimal.NewFromInt(1).Add(RegionalSurcharge)

// ConvertedCost is the local cost before regional tax: round2(foreign × rate).
func ConvertedCost(foreign, adjustedRate decimal.Decimal) decimal.Decimal {
	return money.Round2(foreign.Mul(adjustedRate))
}

// LocalCost converts a foreign unit cost into the local unit cost frozen on an
// order line. Conversion and regional tax are rounded separately.
func LocalCost(foreign, adjustedRate decimal.Decimal) decimal.Decimal {
	return money.Round2(ConvertedCost(foreign, adjustedRate).Mul(surchargeMultiplier))
}

// Line is the priced part of an order line.
type Line struct {
	Quantity   int
	UnitCost   decimal.Decimal
	UnitMargin decimal.Decimal
}

// UnitPrice is what the customer pays per unit.
func (l Line) UnitPrice() decimal.Decimal {
	return l.UnitCost.Add(l.UnitMargin)
}

// Subtotal is (cost + margin) × quantity.
func (l Line) Subtotal() decimal.Decimal {
	return money.Round2(l.UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity))))
}

// Profit is margin × quantity.
func (l Line) Profit() decimal.Decimal {
	return money.Round2(l.UnitMargin.Mul(decimal.NewFromInt(int64(l.Quantity))))
}

// Summary aggregates computed order totals.
type Summary struct {
	Subtotal   decimal.Decimal
	ServiceFee decimal.Decimal
	Revenue    decimal.Decimal
	Profit     decimal.Decimal
}

// Compute derives order totals from frozen lines. The service fee counts
// toward both revenue and profit.
func Compute(lines []Line, serviceFee decimal.Decimal) Summary {
	subtotal := decimal.Zero
	profit := decimal.Zero
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(l.Subtotal())
		profit = profit.Add(l.Profit())
	}
	fee := money.Round2(serviceFee)
	return Summary{
		Subtotal:   money.Round2(subtotal),
		ServiceFee: fee,
		Revenue:    money.Round2(subtotal.Add(fee)),
		Profit:     money.Round2(profit.Add(fee)),
	}
}
