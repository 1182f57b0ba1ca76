package bond

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/bondhedge/hedge-engine/internal/policy"
)

// d is a test helper for creating decimals from float64.
func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func mustProject(t *testing.T, p, tenure, y float64, freq policy.Frequency, conv policy.Convention) Projection {
	t.Helper()
	proj, err := Project(d(p), d(tenure), d(y), freq, conv)
	if err != nil {
		t.Fatalf("Project(%v, %v, %v, %d, %s): unexpected error: %v", p, tenure, y, freq, conv, err)
	}
	return proj
}

// --- Hand-computed values ---

func TestProject_SimpleAndCompoundAgreeForOneAnnualPeriod(t *testing.T) {
	simple := mustProject(t, 85000, 1, 10, policy.FrequencyAnnual, policy.ConventionSimple)
	compound := mustProject(t, 85000, 1, 10, policy.FrequencyAnnual, policy.ConventionCompound)

	if !simple.MaturityValue.Equal(d(93500)) {
		t.Errorf("simple: expected 93500, got %s", simple.MaturityValue)
	}
	if !compound.MaturityValue.Equal(d(93500)) {
		t.Errorf("compound: expected 93500, got %s", compound.MaturityValue)
	}
	if !simple.InterestEarned.Equal(d(8500)) {
		t.Errorf("expected interest 8500, got %s", simple.InterestEarned)
	}
}

func TestProject_ConventionsDivergeAfterOnePeriod(t *testing.T) {
	simple := mustProject(t, 85000, 2, 10, policy.FrequencyAnnual, policy.ConventionSimple)
	compound := mustProject(t, 85000, 2, 10, policy.FrequencyAnnual, policy.ConventionCompound)

	if !simple.MaturityValue.Equal(d(102000)) {
		t.Errorf("simple: expected 102000, got %s", simple.MaturityValue)
	}
	if !compound.MaturityValue.Equal(d(102850)) {
		t.Errorf("compound: expected 102850, got %s", compound.MaturityValue)
	}
}

func TestProject_SimpleEndToEndFigures(t *testing.T) {
	proj := mustProject(t, 1000000, 3, 6.5, policy.FrequencyAnnual, policy.ConventionSimple)
	if !proj.MaturityValue.Equal(d(1195000)) {
		t.Errorf("expected maturity 1195000, got %s", proj.MaturityValue)
	}
	if !proj.InterestEarned.Equal(d(195000)) {
		t.Errorf("expected interest 195000, got %s", proj.InterestEarned)
	}
}

func TestProject_CompoundFrequencies(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		yield     float64
		freq      policy.Frequency
		want      string
	}{
		{"semi-annual", 100000, 10, policy.FrequencySemiAnnual, "110250"},
		{"quarterly", 100000, 8, policy.FrequencyQuarterly, "108243.216"},
		{"monthly", 120000, 12, policy.FrequencyMonthly, "135219.0036158364"},
	}
	tolerance := d(0.000001)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proj := mustProject(t, tt.principal, 1, tt.yield, tt.freq, policy.ConventionCompound)
			want := decimal.RequireFromString(tt.want)
			if proj.MaturityValue.Sub(want).Abs().GreaterThan(tolerance) {
				t.Errorf("expected %s, got %s", want, proj.MaturityValue)
			}
		})
	}
}

func TestProject_FractionalPeriods(t *testing.T) {
	// 1.1^1.5 = 1.15368973...
	proj := mustProject(t, 100000, 1.5, 10, policy.FrequencyAnnual, policy.ConventionCompound)
	want := d(115368.97)
	if proj.MaturityValue.Sub(want).Abs().GreaterThan(d(0.01)) {
		t.Errorf("expected ≈ %s, got %s", want, proj.MaturityValue)
	}
}

// --- Edge cases ---

func TestProject_ZeroTenureReturnsPrincipal(t *testing.T) {
	for _, conv := range []policy.Convention{policy.ConventionSimple, policy.ConventionCompound} {
		proj := mustProject(t, 250000, 0, 7.25, policy.FrequencyMonthly, conv)
		if !proj.MaturityValue.Equal(d(250000)) {
			t.Errorf("%s: expected principal, got %s", conv, proj.MaturityValue)
		}
		if !proj.InterestEarned.IsZero() {
			t.Errorf("%s: expected zero interest, got %s", conv, proj.InterestEarned)
		}
	}
}

func TestProject_ZeroYieldReturnsPrincipal(t *testing.T) {
	for _, conv := range []policy.Convention{policy.ConventionSimple, policy.ConventionCompound} {
		proj := mustProject(t, 250000, 5, 0, policy.FrequencyQuarterly, conv)
		if !proj.MaturityValue.Equal(d(250000)) {
			t.Errorf("%s: expected principal, got %s", conv, proj.MaturityValue)
		}
	}
}

func TestProject_UnitFactorKeepsPrincipalExact(t *testing.T) {
	principal := decimal.RequireFromString("1000.123456789012345")

	tests := []struct {
		name   string
		tenure string
		yield  string
		conv   policy.Convention
	}{
		{"zero tenure simple", "0", "7", policy.ConventionSimple},
		{"zero tenure compound", "0", "7", policy.ConventionCompound},
		{"zero yield simple", "4", "0", policy.ConventionSimple},
		{"zero yield compound", "4", "0", policy.ConventionCompound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proj, err := Project(principal, decimal.RequireFromString(tt.tenure),
				decimal.RequireFromString(tt.yield), policy.FrequencyMonthly, tt.conv)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !proj.MaturityValue.Equal(principal) {
				t.Errorf("expected maturity %s, got %s", principal, proj.MaturityValue)
			}
			if !proj.InterestEarned.IsZero() {
				t.Errorf("expected zero interest, got %s", proj.InterestEarned)
			}
		})
	}
}

func TestProject_FinePrincipalNeverShrinks(t *testing.T) {
	principal := decimal.RequireFromString("1000.123456789012345")
	for _, conv := range []policy.Convention{policy.ConventionSimple, policy.ConventionCompound} {
		proj, err := Project(principal, d(0.001), d(0.0001), policy.FrequencyAnnual, conv)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", conv, err)
		}
		if proj.MaturityValue.LessThan(principal) {
			t.Errorf("%s: maturity %s < principal %s", conv, proj.MaturityValue, principal)
		}
		if proj.InterestEarned.IsNegative() {
			t.Errorf("%s: negative interest %s", conv, proj.InterestEarned)
		}
	}
}

func TestProject_SimpleIgnoresFrequency(t *testing.T) {
	proj := mustProject(t, 1000, 2, 5, 0, policy.ConventionSimple)
	if !proj.MaturityValue.Equal(d(1100)) {
		t.Errorf("expected 1100, got %s", proj.MaturityValue)
	}
}

func TestProject_NegativeYieldProducesLoss(t *testing.T) {
	proj := mustProject(t, 1000, 1, -5, policy.FrequencyAnnual, policy.ConventionSimple)
	if !proj.MaturityValue.Equal(d(950)) {
		t.Errorf("expected 950, got %s", proj.MaturityValue)
	}
	if !proj.InterestEarned.Equal(d(-50)) {
		t.Errorf("expected -50, got %s", proj.InterestEarned)
	}
}

func TestProject_MaturityNeverBelowPrincipal(t *testing.T) {
	principals := []float64{1, 1000, 85000, 1000000}
	tenures := []float64{0, 0.5, 1, 3, 10}
	yields := []float64{0, 0.1, 6.5, 12}
	freqs := []policy.Frequency{
		policy.FrequencyAnnual, policy.FrequencySemiAnnual,
		policy.FrequencyQuarterly, policy.FrequencyMonthly,
	}

	for _, p := range principals {
		for _, tenure := range tenures {
			for _, y := range yields {
				for _, f := range freqs {
					for _, conv := range []policy.Convention{policy.ConventionSimple, policy.ConventionCompound} {
						proj := mustProject(t, p, tenure, y, f, conv)
						if proj.MaturityValue.LessThan(d(p)) {
							t.Errorf("maturity %s < principal %v (t=%v y=%v n=%d %s)",
								proj.MaturityValue, p, tenure, y, f, conv)
						}
					}
				}
			}
		}
	}
}

// --- Errors ---

func TestProject_Errors(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		tenure    float64
		yield     float64
		freq      policy.Frequency
		conv      policy.Convention
	}{
		{"negative principal", -1, 1, 5, policy.FrequencyAnnual, policy.ConventionSimple},
		{"negative tenure", 1000, -1, 5, policy.FrequencyAnnual, policy.ConventionSimple},
		{"unknown convention", 1000, 1, 5, policy.FrequencyAnnual, "continuous"},
		{"unknown frequency", 1000, 1, 5, 3, policy.ConventionCompound},
		{"periodic growth not positive", 1000, 1, -200, policy.FrequencyAnnual, policy.ConventionCompound},
		{"simple factor negative", 1000, 2, -80, policy.FrequencyAnnual, policy.ConventionSimple},
		{"tenure above maximum", 1000, 101, 5, policy.FrequencyMonthly, policy.ConventionCompound},
		{"very long compound tenure", 1000000, 200000, 6.5, policy.FrequencyMonthly, policy.ConventionCompound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Project(d(tt.principal), d(tt.tenure), d(tt.yield), tt.freq, tt.conv)
			if !errors.Is(err, ErrInvalidProjection) {
				t.Errorf("expected ErrInvalidProjection, got %v", err)
			}
		})
	}
}

func TestProject_MaximumTenureAccepted(t *testing.T) {
	proj := mustProject(t, 1000, 100, 5, policy.FrequencyMonthly, policy.ConventionCompound)
	if !proj.MaturityValue.GreaterThan(d(1000)) {
		t.Errorf("expected growth over 100 years, got %s", proj.MaturityValue)
	}
}

func TestProject_UnknownFrequencyWrapsPolicyError(t *testing.T) {
	_, err := Project(d(1000), d(1), d(5), 7, policy.ConventionCompound)
	if !errors.Is(err, policy.ErrUnknownFrequency) {
		t.Errorf("expected policy.ErrUnknownFrequency in chain, got %v", err)
	}
}
