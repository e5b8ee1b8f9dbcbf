package money

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds a float amount to two decimal places using half-up rounding.
// All persisted monetary values in the system go through this helper so that
// totals recomputed from the same lines always agree byte for byte.
func Round2(amount float64) float64 {
	rounded, _ := decimal.NewFromFloat(amount).Round(2).Float64()
	return rounded
}

// LineTotal multiplies price by quantity in decimal space before rounding, so
// accumulated float error in either operand cannot leak into the total.
func LineTotal(price float64, quantity float64) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromFloat(quantity))
}

// OrderTotal sums per-line totals and rounds once at the end.
func OrderTotal(lines []Line) float64 {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(LineTotal(line.Price, line.Quantity))
	}
	total, _ := sum.Round(2).Float64()
	return total
}

// Line is the minimal shape OrderTotal needs from a line item.
type Line struct {
	Price    float64
	Quantity float64
}

// IsFinite reports whether v is a usable numeric amount. NaN and infinities
// come in through JSON-adjacent float handling and must never reach storage.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
