// Package model defines the core domain types shared across the hedge engine.
// Monetary values use shopspring/decimal, never float64.
package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bondhedge/hedge-engine/internal/policy"
)

// InvestmentParameters describes the bond leg of a calculation request.
// Immutable once built; a new value is created per request.
type InvestmentParameters struct {
	Principal          decimal.Decimal   `json:"principal"`            // INR
	TenureYears        decimal.Decimal   `json:"tenure_years"`         // may be fractional
	AnnualYieldPercent decimal.Decimal   `json:"annual_yield_percent"` // e.g. 6.5
	Frequency          policy.Frequency  `json:"compounding_frequency"`
	Convention         policy.Convention `json:"convention"`
}

// HedgeParameters describes the USD/INR futures hedge.
type HedgeParameters struct {
	SpotRate     decimal.Decimal `json:"spot_rate"`      // INR per USD
	LotSizeUSD   decimal.Decimal `json:"lot_size_usd"`   // contract size, 1000 on NSE
	MarginPerLot decimal.Decimal `json:"margin_per_lot"` // INR

	// HedgeCoveragePercent is the share of USD notional to hedge, 0 to 100.
	// Treated as 100 when not set.
	HedgeCoveragePercent decimal.NullDecimal `json:"hedge_coverage_percent"`

	// Only one of these is read, depending on the selected cost model.
	AnnualHedgingCostPercent  decimal.NullDecimal `json:"annual_hedging_cost_percent"`
	MarginInterestRatePercent decimal.NullDecimal `json:"margin_interest_rate_percent"`
}

// Coverage returns the hedge coverage percent, defaulting to 100.
func (h HedgeParameters) Coverage() decimal.Decimal {
	if h.HedgeCoveragePercent.Valid {
		return h.HedgeCoveragePercent.Decimal
	}
	return decimal.NewFromInt(100)
}

// CalculationResult is a read-only snapshot of one full calculation.
// It is recomputed from scratch on every parameter change.
type CalculationResult struct {
	// Echoed inputs needed by scenario evaluation.
	Principal   decimal.Decimal `json:"principal"`
	TenureYears decimal.Decimal `json:"tenure_years"`
	SpotRate    decimal.Decimal `json:"spot_rate"`

	MaturityValueINR    decimal.Decimal `json:"maturity_value_inr"`
	InterestEarnedINR   decimal.Decimal `json:"interest_earned_inr"`
	USDNotional         decimal.Decimal `json:"usd_notional"`
	LotsRequired        int64           `json:"lots_required"`
	CoveredUSD          decimal.Decimal `json:"covered_usd"`
	UncoveredUSD        decimal.Decimal `json:"uncovered_usd"`
	MarginRequiredINR   decimal.Decimal `json:"margin_required_inr"`
	TotalHedgingCostINR decimal.Decimal `json:"total_hedging_cost_inr"`

	NetReturnWithHedgeINR     decimal.Decimal `json:"net_return_with_hedge_inr"`
	NetReturnWithoutHedgeINR  decimal.Decimal `json:"net_return_without_hedge_inr"`
	ReturnPercentWithHedge    decimal.Decimal `json:"return_percent_with_hedge"`
	ReturnPercentWithoutHedge decimal.Decimal `json:"return_percent_without_hedge"`

	CostModel policy.CostModel `json:"cost_model"`
	Rounding  policy.Rounding  `json:"rounding"`
}

// ScenarioResult is the outcome for one hypothetical spot-rate shift.
// HedgedReturnINR does not depend on the shift.
type ScenarioResult struct {
	ShiftPercent      decimal.Decimal `json:"shift_percent"`
	ImpliedSpotRate   decimal.Decimal `json:"implied_spot_rate"`
	UnhedgedReturnINR decimal.Decimal `json:"unhedged_return_inr"`
	HedgedReturnINR   decimal.Decimal `json:"hedged_return_inr"`
	UnhedgedReturnUSD decimal.Decimal `json:"unhedged_return_usd"`
	HedgedReturnUSD   decimal.Decimal `json:"hedged_return_usd"`
}

// ScenarioRow is one entry of a sweep. Error is set instead of the
// result fields when that shift could not be evaluated.
type ScenarioRow struct {
	ScenarioResult
	Error string `json:"error,omitempty"`
}

// OK reports whether the row was evaluated successfully.
func (r ScenarioRow) OK() bool { return r.Error == "" }

// Calculation is a persisted calculation: the request and its result.
// Once created, calculations are never modified.
type Calculation struct {
	ID         string               `json:"id" db:"id"`
	Investment InvestmentParameters `json:"investment"`
	Hedge      HedgeParameters      `json:"hedge"`
	Result     CalculationResult    `json:"result"`
	CreatedAt  time.Time            `json:"created_at" db:"created_at"`
}

// Sweep is a persisted scenario sweep against one calculation.
type Sweep struct {
	ID            string        `json:"id" db:"id"`
	CalculationID string        `json:"calculation_id" db:"calculation_id"`
	Rows          []ScenarioRow `json:"rows"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
}

// Defaults fills request fields the caller left out. They come from
// configuration, never from the formulas themselves.
type Defaults struct {
	SpotRate        decimal.Decimal
	LotSizeUSD      decimal.Decimal
	MarginPerLot    decimal.Decimal
	CoveragePercent decimal.Decimal
	Convention      policy.Convention
	Frequency       policy.Frequency
	Rounding        policy.Rounding
	CostModel       policy.CostModel
}
