package engine

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bondhedge/hedge-engine/internal/model"
	"github.com/bondhedge/hedge-engine/internal/policy"
	"github.com/bondhedge/hedge-engine/internal/scenario"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func nd(f float64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromFloat(f))
}

// dashboardInputs uses the desk defaults: spot 85, 1000 USD lots, 2150 margin.
func dashboardInputs() (model.InvestmentParameters, model.HedgeParameters) {
	inv := model.InvestmentParameters{
		Principal:          d(1000000),
		TenureYears:        d(3),
		AnnualYieldPercent: d(6.5),
		Frequency:          policy.FrequencyAnnual,
		Convention:         policy.ConventionSimple,
	}
	hp := model.HedgeParameters{
		SpotRate:             d(85),
		LotSizeUSD:           d(1000),
		MarginPerLot:         d(2150),
		HedgeCoveragePercent: nd(100),
	}
	return inv, hp
}

func TestCalculate_EndToEnd(t *testing.T) {
	inv, hp := dashboardInputs()
	res, err := Calculate(inv, hp, policy.CostMarginOnly, policy.RoundCeiling)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checks := []struct {
		name string
		got  decimal.Decimal
		want decimal.Decimal
	}{
		{"interest", res.InterestEarnedINR, d(195000)},
		{"maturity", res.MaturityValueINR, d(1195000)},
		{"usd notional", res.USDNotional.Round(2), d(11764.71)},
		{"margin", res.MarginRequiredINR, d(25800)},
		{"hedging cost", res.TotalHedgingCostINR, decimal.Zero},
		{"net with hedge", res.NetReturnWithHedgeINR, d(1169200)},
		{"net without hedge", res.NetReturnWithoutHedgeINR, d(1195000)},
		{"return pct with hedge", res.ReturnPercentWithHedge, d(16.92)},
		{"return pct without hedge", res.ReturnPercentWithoutHedge, d(19.5)},
		{"covered usd", res.CoveredUSD, d(12000)},
		{"uncovered usd", res.UncoveredUSD, decimal.Zero},
	}
	for _, c := range checks {
		if !c.got.Equal(c.want) {
			t.Errorf("%s: expected %s, got %s", c.name, c.want, c.got)
		}
	}
	if res.LotsRequired != 12 {
		t.Errorf("expected 12 lots, got %d", res.LotsRequired)
	}
	if res.CostModel != policy.CostMarginOnly || res.Rounding != policy.RoundCeiling {
		t.Errorf("policies not echoed: %s %s", res.CostModel, res.Rounding)
	}
}

func TestCalculate_MarginIsLotsTimesMarginPerLot(t *testing.T) {
	inv, hp := dashboardInputs()
	for _, r := range []policy.Rounding{policy.RoundCeiling, policy.RoundFloor, policy.RoundTruncate} {
		res, err := Calculate(inv, hp, policy.CostMarginOnly, r)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", r, err)
		}
		want := decimal.NewFromInt(res.LotsRequired).Mul(hp.MarginPerLot)
		if !res.MarginRequiredINR.Equal(want) {
			t.Errorf("%s: margin %s != %s", r, res.MarginRequiredINR, want)
		}
	}
}

func TestCalculate_FloorRounding(t *testing.T) {
	inv, hp := dashboardInputs()
	res, err := Calculate(inv, hp, policy.CostMarginOnly, policy.RoundFloor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.LotsRequired != 11 {
		t.Errorf("expected 11 lots, got %d", res.LotsRequired)
	}
	if !res.UncoveredUSD.Round(2).Equal(d(764.71)) {
		t.Errorf("expected uncovered ≈ 764.71, got %s", res.UncoveredUSD)
	}
	if !res.NetReturnWithHedgeINR.Equal(d(1195000 - 11*2150)) {
		t.Errorf("unexpected net with hedge %s", res.NetReturnWithHedgeINR)
	}
}

func TestCalculate_CoverageDefaultsToFull(t *testing.T) {
	inv, hp := dashboardInputs()
	hp.HedgeCoveragePercent = decimal.NullDecimal{}
	res, err := Calculate(inv, hp, policy.CostMarginOnly, policy.RoundCeiling)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.LotsRequired != 12 {
		t.Errorf("expected 12 lots at default coverage, got %d", res.LotsRequired)
	}
}

func TestCalculate_AnnualizedNotionalCost(t *testing.T) {
	inv, hp := dashboardInputs()
	inv.Principal = d(850000) // exactly 10000 USD at 85
	hp.AnnualHedgingCostPercent = nd(2)

	res, err := Calculate(inv, hp, policy.CostAnnualNotional, policy.RoundCeiling)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 10000 × 2% × 3 × 85
	if !res.TotalHedgingCostINR.Equal(d(51000)) {
		t.Errorf("expected cost 51000, got %s", res.TotalHedgingCostINR)
	}
	// maturity 850000 × 1.195 = 1015750; margin is collateral here.
	if !res.NetReturnWithHedgeINR.Equal(d(1015750 - 51000)) {
		t.Errorf("expected net 964750, got %s", res.NetReturnWithHedgeINR)
	}
	if !res.MarginRequiredINR.Equal(d(10 * 2150)) {
		t.Errorf("expected margin 21500, got %s", res.MarginRequiredINR)
	}
}

func TestCalculate_MarginInterestCost(t *testing.T) {
	inv, hp := dashboardInputs()
	hp.MarginInterestRatePercent = nd(9)

	res, err := Calculate(inv, hp, policy.CostMarginInterest, policy.RoundCeiling)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 25800 × 9% × 3
	if !res.TotalHedgingCostINR.Equal(d(6966)) {
		t.Errorf("expected cost 6966, got %s", res.TotalHedgingCostINR)
	}
	if !res.NetReturnWithHedgeINR.Equal(d(1195000 - 6966)) {
		t.Errorf("unexpected net %s", res.NetReturnWithHedgeINR)
	}
}

func TestCalculate_Compound(t *testing.T) {
	inv, hp := dashboardInputs()
	inv.Principal = d(85000)
	inv.TenureYears = d(1)
	inv.AnnualYieldPercent = d(10)
	inv.Convention = policy.ConventionCompound

	res, err := Calculate(inv, hp, policy.CostMarginOnly, policy.RoundCeiling)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.MaturityValueINR.Equal(d(93500)) {
		t.Errorf("expected 93500, got %s", res.MaturityValueINR)
	}
	if res.LotsRequired != 1 {
		t.Errorf("expected 1 lot, got %d", res.LotsRequired)
	}
}

func TestCalculate_ZeroTenure(t *testing.T) {
	inv, hp := dashboardInputs()
	inv.TenureYears = decimal.Zero
	res, err := Calculate(inv, hp, policy.CostMarginOnly, policy.RoundCeiling)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.MaturityValueINR.Equal(inv.Principal) {
		t.Errorf("expected maturity == principal, got %s", res.MaturityValueINR)
	}
}

// --- Validation ---

func TestCalculate_TenureAboveMaximum(t *testing.T) {
	inv, hp := dashboardInputs()
	inv.Convention = policy.ConventionCompound
	inv.Frequency = policy.FrequencyMonthly

	for _, tenure := range []float64{100.5, 50000, 200000} {
		inv.TenureYears = d(tenure)
		start := time.Now()
		_, err := Calculate(inv, hp, policy.CostMarginOnly, policy.RoundCeiling)
		if !IsValidation(err) {
			t.Fatalf("tenure %v: expected validation error, got %v", tenure, err)
		}
		fields := FieldErrors(err)
		if len(fields) != 1 || fields[0].Field != "tenure_years" {
			t.Errorf("tenure %v: unexpected field errors: %+v", tenure, fields)
		}
		if elapsed := time.Since(start); elapsed > time.Second {
			t.Errorf("tenure %v: rejection took %s", tenure, elapsed)
		}
	}

	inv.TenureYears = d(100)
	if _, err := Calculate(inv, hp, policy.CostMarginOnly, policy.RoundCeiling); err != nil {
		t.Errorf("tenure 100: unexpected error: %v", err)
	}
}

func TestCalculate_ReportsEveryInvalidField(t *testing.T) {
	inv := model.InvestmentParameters{
		Principal:          d(-5),
		TenureYears:        d(-1),
		AnnualYieldPercent: d(-2),
		Convention:         policy.ConventionCompound,
	}
	hp := model.HedgeParameters{
		SpotRate:             decimal.Zero,
		LotSizeUSD:           d(1000),
		MarginPerLot:         d(2150),
		HedgeCoveragePercent: nd(120),
	}

	_, err := Calculate(inv, hp, policy.CostAnnualNotional, "nearest")
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	got := map[string]bool{}
	for _, fe := range FieldErrors(err) {
		got[fe.Field] = true
	}
	for _, field := range []string{
		"principal", "tenure_years", "annual_yield_percent", "compounding_frequency",
		"spot_rate", "hedge_coverage_percent", "rounding", "annual_hedging_cost_percent",
	} {
		if !got[field] {
			t.Errorf("expected field %s to be reported; got %v", field, got)
		}
	}
}

func TestCalculate_ZeroLotSizeIsInvalidInput(t *testing.T) {
	inv, hp := dashboardInputs()
	hp.LotSizeUSD = decimal.Zero

	_, err := Calculate(inv, hp, policy.CostMarginOnly, policy.RoundCeiling)
	if !IsInvalidInput(err) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
	if IsValidation(err) {
		t.Errorf("zero lot size alone should not be a validation error: %v", err)
	}
	fields := FieldErrors(err)
	if len(fields) != 1 || fields[0].Field != "lot_size_usd" {
		t.Errorf("unexpected field errors: %+v", fields)
	}
}

func TestCalculate_UnknownCostModel(t *testing.T) {
	inv, hp := dashboardInputs()
	_, err := Calculate(inv, hp, "both", policy.RoundCeiling)
	fields := FieldErrors(err)
	if len(fields) != 1 || fields[0].Field != "cost_model" {
		t.Errorf("unexpected field errors: %+v", fields)
	}
}

func TestCalculate_IrrelevantRateIgnored(t *testing.T) {
	inv, hp := dashboardInputs()
	hp.MarginInterestRatePercent = nd(-4)
	if _, err := Calculate(inv, hp, policy.CostMarginOnly, policy.RoundCeiling); err != nil {
		t.Errorf("margin-only should ignore margin interest rate, got %v", err)
	}
}

// --- Sweep ---

func TestSweepScenarios_EndToEnd(t *testing.T) {
	inv, hp := dashboardInputs()
	res, err := Calculate(inv, hp, policy.CostMarginOnly, policy.RoundCeiling)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	shifts, _ := scenario.Range(d(-20), d(20), d(10))
	rows := SweepScenarios(context.Background(), *res, shifts, 3)

	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	for _, row := range rows {
		if !row.HedgedReturnINR.Equal(d(1169200)) {
			t.Errorf("shift %s: hedged %s", row.ShiftPercent, row.HedgedReturnINR)
		}
	}
	mid := rows[2]
	if !mid.ShiftPercent.IsZero() || !mid.ImpliedSpotRate.Equal(d(85)) {
		t.Errorf("expected zero shift at 85, got %s at %s", mid.ShiftPercent, mid.ImpliedSpotRate)
	}
	if !mid.UnhedgedReturnINR.Equal(res.MaturityValueINR) {
		t.Errorf("zero shift unhedged %s != maturity %s", mid.UnhedgedReturnINR, res.MaturityValueINR)
	}
	// Unhedged investor loses when the rupee appreciates 20%.
	if !rows[0].UnhedgedReturnINR.Equal(d(995000)) {
		t.Errorf("expected unhedged 995000 at -20%%, got %s", rows[0].UnhedgedReturnINR)
	}
}
