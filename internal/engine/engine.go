// Package engine composes the bond, fx, hedge and scenario stages into the
// two operations callers use: Calculate and SweepScenarios.
//
// Every stage is a pure function over immutable inputs; nothing here holds
// state between calls.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bondhedge/hedge-engine/internal/bond"
	"github.com/bondhedge/hedge-engine/internal/fx"
	"github.com/bondhedge/hedge-engine/internal/hedge"
	"github.com/bondhedge/hedge-engine/internal/model"
	"github.com/bondhedge/hedge-engine/internal/policy"
	"github.com/bondhedge/hedge-engine/internal/scenario"
)

// PercentScale is the number of decimal places kept on return percentages.
var PercentScale int32 = 4

var hundred = decimal.NewFromInt(100)

// Calculate runs the full pipeline:
// bond projection → USD notional → lot sizing → hedge cost → net returns.
//
// Net return with hedge depends on the cost model. Under margin-only the
// margin is deducted as a sunk opportunity cost. Under the two cost
// models the margin is collateral and only the hedging cost is deducted.
//
// Every violated precondition is reported at once, joined with
// errors.Join; use FieldErrors to list them.
func Calculate(
	inv model.InvestmentParameters,
	hp model.HedgeParameters,
	costModel policy.CostModel,
	rounding policy.Rounding,
) (*model.CalculationResult, error) {
	if err := Validate(inv, hp, costModel, rounding); err != nil {
		return nil, err
	}

	proj, err := bond.Project(inv.Principal, inv.TenureYears, inv.AnnualYieldPercent, inv.Frequency, inv.Convention)
	if err != nil {
		return nil, fmt.Errorf("project maturity: %w", err)
	}

	notional, err := fx.ToUSD(inv.Principal, hp.SpotRate)
	if err != nil {
		return nil, fmt.Errorf("convert principal: %w", err)
	}

	sizing, err := hedge.Size(notional, hp.LotSizeUSD, hp.Coverage(), rounding)
	if err != nil {
		return nil, err
	}

	costing, err := hedge.Cost(hedge.CostInput{
		Lots:                      sizing.Lots,
		MarginPerLot:              hp.MarginPerLot,
		TenureYears:               inv.TenureYears,
		USDNotional:               notional,
		SpotRate:                  hp.SpotRate,
		AnnualHedgingCostPercent:  hp.AnnualHedgingCostPercent,
		MarginInterestRatePercent: hp.MarginInterestRatePercent,
	}, costModel)
	if err != nil {
		return nil, err
	}

	netWithHedge := proj.MaturityValue.Sub(costing.TotalHedgingCostINR)
	if costModel == policy.CostMarginOnly {
		netWithHedge = proj.MaturityValue.Sub(costing.MarginRequiredINR)
	}

	return &model.CalculationResult{
		Principal:                 inv.Principal,
		TenureYears:               inv.TenureYears,
		SpotRate:                  hp.SpotRate,
		MaturityValueINR:          proj.MaturityValue,
		InterestEarnedINR:         proj.InterestEarned,
		USDNotional:               notional,
		LotsRequired:              sizing.Lots,
		CoveredUSD:                sizing.CoveredUSD,
		UncoveredUSD:              sizing.UncoveredUSD,
		MarginRequiredINR:         costing.MarginRequiredINR,
		TotalHedgingCostINR:       costing.TotalHedgingCostINR,
		NetReturnWithHedgeINR:     netWithHedge,
		NetReturnWithoutHedgeINR:  proj.MaturityValue,
		ReturnPercentWithHedge:    percentOf(netWithHedge.Sub(inv.Principal), inv.Principal),
		ReturnPercentWithoutHedge: percentOf(proj.InterestEarned, inv.Principal),
		CostModel:                 costModel,
		Rounding:                  rounding,
	}, nil
}

// SweepScenarios evaluates the result under each spot shift, preserving
// input order. Failed shifts are tagged per row; see scenario.Sweep.
func SweepScenarios(ctx context.Context, result model.CalculationResult, shifts []decimal.Decimal, workers int) []model.ScenarioRow {
	return scenario.Sweep(ctx, result, shifts, workers)
}

// Validate checks every precondition of Calculate. A non-positive lot
// size is reported as a hedge.InvalidInputError; everything else as a
// ValidationError.
func Validate(
	inv model.InvestmentParameters,
	hp model.HedgeParameters,
	costModel policy.CostModel,
	rounding policy.Rounding,
) error {
	var errs []error
	fail := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)})
	}

	// Investment.
	if !inv.Principal.IsPositive() {
		fail("principal", "must be positive, got %s", inv.Principal)
	}
	if inv.TenureYears.IsNegative() {
		fail("tenure_years", "must not be negative, got %s", inv.TenureYears)
	}
	if inv.TenureYears.GreaterThan(bond.MaxTenureYears) {
		fail("tenure_years", "must not exceed %s years, got %s", bond.MaxTenureYears, inv.TenureYears)
	}
	if inv.AnnualYieldPercent.IsNegative() {
		fail("annual_yield_percent", "must not be negative, got %s", inv.AnnualYieldPercent)
	}
	if !inv.Convention.Valid() {
		fail("convention", "unsupported convention %q", inv.Convention)
	}
	if inv.Convention == policy.ConventionCompound && !inv.Frequency.Valid() {
		fail("compounding_frequency", "unsupported frequency %d", int(inv.Frequency))
	}

	// Hedge.
	if !hp.SpotRate.IsPositive() {
		fail("spot_rate", "must be positive, got %s", hp.SpotRate)
	}
	if !hp.LotSizeUSD.IsPositive() {
		errs = append(errs, &hedge.InvalidInputError{
			Field:  "lot_size_usd",
			Reason: fmt.Sprintf("must be positive, got %s", hp.LotSizeUSD),
		})
	}
	if !hp.MarginPerLot.IsPositive() {
		fail("margin_per_lot", "must be positive, got %s", hp.MarginPerLot)
	}
	if hp.HedgeCoveragePercent.Valid {
		c := hp.HedgeCoveragePercent.Decimal
		if c.IsNegative() || c.GreaterThan(hundred) {
			fail("hedge_coverage_percent", "must be within [0, 100], got %s", c)
		}
	}

	// Policies.
	if !rounding.Valid() {
		fail("rounding", "unsupported rounding policy %q", rounding)
	}
	switch costModel {
	case policy.CostMarginOnly:
	case policy.CostAnnualNotional:
		checkRate(fail, "annual_hedging_cost_percent", hp.AnnualHedgingCostPercent)
	case policy.CostMarginInterest:
		checkRate(fail, "margin_interest_rate_percent", hp.MarginInterestRatePercent)
	default:
		fail("cost_model", "unsupported cost model %q", costModel)
	}

	return errors.Join(errs...)
}

func checkRate(fail func(string, string, ...any), field string, rate decimal.NullDecimal) {
	if !rate.Valid {
		fail(field, "required by the selected cost model")
		return
	}
	if rate.Decimal.IsNegative() {
		fail(field, "must not be negative, got %s", rate.Decimal)
	}
}

func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(PercentScale)
}
