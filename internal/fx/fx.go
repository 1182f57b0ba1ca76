// Package fx converts between INR and USD at a quoted USD/INR spot rate
// (INR per USD). Conversions are unrounded; rounding happens at
// presentation or when sizing lots.
package fx

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidRate is returned when the spot rate is zero or negative.
var ErrInvalidRate = errors.New("fx: spot rate must be positive")

// ToUSD converts an INR amount to USD: amountINR / spotRate.
func ToUSD(amountINR, spotRate decimal.Decimal) (decimal.Decimal, error) {
	if !spotRate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: got %s", ErrInvalidRate, spotRate)
	}
	return amountINR.Div(spotRate), nil
}

// ToINR converts a USD amount to INR: amountUSD × spotRate.
func ToINR(amountUSD, spotRate decimal.Decimal) (decimal.Decimal, error) {
	if !spotRate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: got %s", ErrInvalidRate, spotRate)
	}
	return amountUSD.Mul(spotRate), nil
}

// Shift applies a percentage move to a spot rate: rate × (1 + pct/100).
// A positive pct means INR depreciates (more INR per USD).
func Shift(spotRate, pct decimal.Decimal) decimal.Decimal {
	return spotRate.Mul(decimal.NewFromInt(1).Add(pct.Div(decimal.NewFromInt(100))))
}
