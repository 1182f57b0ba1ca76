// Package hedge sizes a USD/INR futures hedge in whole lots and computes
// the margin and carrying cost of holding it.
//
// Monetary values use shopspring/decimal, never float64.
package hedge

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bondhedge/hedge-engine/internal/policy"
)

// ErrInvalidInput is the sentinel wrapped by every InvalidInputError.
var ErrInvalidInput = errors.New("hedge: invalid input")

// InvalidInputError reports a structurally impossible sizing or costing
// request, such as a zero lot size.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("hedge: invalid %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

func invalid(field, format string, args ...any) error {
	return &InvalidInputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

var hundred = decimal.NewFromInt(100)

// Sizing is the lot coverage chosen for a USD notional.
type Sizing struct {
	Lots            int64           `json:"lots"`
	CoveredNotional decimal.Decimal `json:"covered_notional"` // notional × coverage, before rounding
	CoveredUSD      decimal.Decimal `json:"covered_usd"`      // lots × lot size
	UncoveredUSD    decimal.Decimal `json:"uncovered_usd"`    // max(0, notional − covered)
}

// Size determines whole-lot futures coverage for usdNotional.
//
//	coveredNotional = usdNotional × coverage/100
//	lots            = round(coveredNotional / lotSize)
//
// The rounding policy is always explicit: ceiling over-hedges so the
// notional is never under-protected, floor and truncate never exceed
// the exact coverage.
func Size(usdNotional, lotSizeUSD, coveragePercent decimal.Decimal, rounding policy.Rounding) (Sizing, error) {
	if usdNotional.IsNegative() {
		return Sizing{}, invalid("usd_notional", "must not be negative, got %s", usdNotional)
	}
	if !lotSizeUSD.IsPositive() {
		return Sizing{}, invalid("lot_size_usd", "must be positive, got %s", lotSizeUSD)
	}
	if coveragePercent.IsNegative() || coveragePercent.GreaterThan(hundred) {
		return Sizing{}, invalid("hedge_coverage_percent", "must be within [0, 100], got %s", coveragePercent)
	}

	covered := usdNotional.Mul(coveragePercent).Div(hundred)
	raw := covered.Div(lotSizeUSD)

	var lots decimal.Decimal
	switch rounding {
	case policy.RoundCeiling:
		lots = raw.Ceil()
	case policy.RoundFloor:
		lots = raw.Floor()
	case policy.RoundTruncate:
		lots = raw.Truncate(0)
	default:
		return Sizing{}, invalid("rounding", "unsupported policy %q", rounding)
	}

	coveredUSD := lots.Mul(lotSizeUSD)
	uncovered := usdNotional.Sub(coveredUSD)
	if uncovered.IsNegative() {
		uncovered = decimal.Zero
	}

	return Sizing{
		Lots:            lots.IntPart(),
		CoveredNotional: covered,
		CoveredUSD:      coveredUSD,
		UncoveredUSD:    uncovered,
	}, nil
}
