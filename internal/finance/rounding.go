// Package finance holds the money arithmetic of a self-help group: rounding,
// period interest, due dates, late fines, payment settlement and the cash
// split applied when a period is closed. Everything here is pure.
package finance

import (
	"math"

	"github.com/shopspring/decimal"
)

// epsilon is the gap between 1 and the next representable float64.
var epsilon = math.Nextafter(1, 2) - 1

// centTolerance is the largest remainder still treated as settled.
const centTolerance = 0.01

// Round2 rounds a monetary amount to two decimal places. The epsilon nudge
// keeps values such as 1.005 from rounding down because of their binary form.
func Round2(amount float64) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return amount
	}
	return math.Round((amount+epsilon)*100) / 100
}

// Sum2 adds amounts exactly and rounds the result to cents.
func Sum2(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total.Round(2).InexactFloat64()
}

// NonNegative clamps negative amounts (and negative zero) to zero.
func NonNegative(amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	return amount
}
