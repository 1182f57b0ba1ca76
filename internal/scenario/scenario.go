// Package scenario evaluates a locked-in calculation under hypothetical
// USD/INR spot moves.
//
// Sign convention: a positive shift means the rupee depreciates, i.e. the
// implied spot is spot × (1 + shift/100) INR per USD. The hedged outcome
// is fixed at calculation time and never moves with the shift.
package scenario

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/bondhedge/hedge-engine/internal/fx"
	"github.com/bondhedge/hedge-engine/internal/model"
)

var (
	// ErrInvalidShift is returned when a shift drives the implied spot
	// rate to zero or below (shift <= -100%).
	ErrInvalidShift = errors.New("scenario: shift must keep the implied spot rate positive")

	// ErrInvalidRange is returned by Range for an unusable from/to/step.
	ErrInvalidRange = errors.New("scenario: invalid shift range")

	// MaxRangePoints caps the number of shifts Range will generate.
	MaxRangePoints = 1001

	// Scale is the number of decimal places kept on USD legs.
	Scale int32 = 10
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Evaluate recomputes the unhedged and hedged outcomes for one shift.
//
//	implied     = spot × (1 + shift/100)
//	unhedgedINR = usdNotional × implied + interest
//	hedgedINR   = baseline net return with hedge
//
// The unhedged leg is computed as principal × (1 + shift/100) + interest,
// which is the same quantity without the INR→USD→INR round trip, so a
// zero shift returns the maturity value exactly. Interest is treated as
// INR-denominated and does not re-translate.
func Evaluate(baseline model.CalculationResult, shiftPercent decimal.Decimal) (model.ScenarioResult, error) {
	if !baseline.SpotRate.IsPositive() {
		return model.ScenarioResult{}, fmt.Errorf("%w: baseline spot %s", fx.ErrInvalidRate, baseline.SpotRate)
	}

	factor := one.Add(shiftPercent.Div(hundred))
	if !factor.IsPositive() {
		return model.ScenarioResult{}, fmt.Errorf("%w: got %s%%", ErrInvalidShift, shiftPercent)
	}

	implied := fx.Shift(baseline.SpotRate, shiftPercent)
	unhedged := baseline.Principal.Mul(factor).Add(baseline.InterestEarnedINR)
	hedged := baseline.NetReturnWithHedgeINR

	unhedgedUSD, err := fx.ToUSD(unhedged, implied)
	if err != nil {
		return model.ScenarioResult{}, err
	}
	hedgedUSD, err := fx.ToUSD(hedged, implied)
	if err != nil {
		return model.ScenarioResult{}, err
	}

	return model.ScenarioResult{
		ShiftPercent:      shiftPercent,
		ImpliedSpotRate:   implied,
		UnhedgedReturnINR: unhedged,
		HedgedReturnINR:   hedged,
		UnhedgedReturnUSD: unhedgedUSD.Round(Scale),
		HedgedReturnUSD:   hedgedUSD.Round(Scale),
	}, nil
}

// Sweep evaluates every shift and returns one row per shift in input
// order. A shift that fails is tagged with its error; its siblings are
// still evaluated. Rows are computed on up to workers goroutines.
// If ctx is cancelled, rows not yet evaluated carry the context error.
func Sweep(ctx context.Context, baseline model.CalculationResult, shifts []decimal.Decimal, workers int) []model.ScenarioRow {
	rows := make([]model.ScenarioRow, len(shifts))
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, shift := range shifts {
		g.Go(func() error {
			rows[i].ShiftPercent = shift
			if err := gctx.Err(); err != nil {
				rows[i].Error = err.Error()
				return nil
			}
			res, err := Evaluate(baseline, shift)
			if err != nil {
				rows[i].Error = err.Error()
				return nil
			}
			rows[i].ScenarioResult = res
			return nil
		})
	}

	// Row failures are recorded in place, so Wait never returns an error.
	_ = g.Wait()
	return rows
}

// Range builds the inclusive, ascending list of shifts from..to in
// increments of step, e.g. Range(-20, 20, 5) → [-20 -15 ... 20].
func Range(from, to, step decimal.Decimal) ([]decimal.Decimal, error) {
	if !step.IsPositive() {
		return nil, fmt.Errorf("%w: step %s must be positive", ErrInvalidRange, step)
	}
	if from.GreaterThan(to) {
		return nil, fmt.Errorf("%w: from %s is greater than to %s", ErrInvalidRange, from, to)
	}

	n := to.Sub(from).Div(step).Floor().IntPart() + 1
	if n > int64(MaxRangePoints) {
		return nil, fmt.Errorf("%w: %d points exceeds limit of %d", ErrInvalidRange, n, MaxRangePoints)
	}

	shifts := make([]decimal.Decimal, 0, n)
	for i := int64(0); i < n; i++ {
		shifts = append(shifts, from.Add(step.Mul(decimal.NewFromInt(i))))
	}
	return shifts, nil
}
