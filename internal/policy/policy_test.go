package policy

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseConvention(t *testing.T) {
	tests := []struct {
		in   string
		want Convention
	}{
		{"simple", ConventionSimple},
		{"Compound", ConventionCompound},
		{"  SIMPLE ", ConventionSimple},
	}
	for _, tt := range tests {
		got, err := ParseConvention(tt.in)
		if err != nil {
			t.Fatalf("ParseConvention(%q): unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseConvention(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if _, err := ParseConvention("continuous"); !errors.Is(err, ErrUnknownConvention) {
		t.Errorf("expected ErrUnknownConvention, got %v", err)
	}
}

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		in   string
		want Frequency
	}{
		{"annual", FrequencyAnnual},
		{"semi-annual", FrequencySemiAnnual},
		{"semi_annual", FrequencySemiAnnual},
		{"semiannual", FrequencySemiAnnual},
		{"quarterly", FrequencyQuarterly},
		{"monthly", FrequencyMonthly},
		{"12", FrequencyMonthly},
		{"4", FrequencyQuarterly},
	}
	for _, tt := range tests {
		got, err := ParseFrequency(tt.in)
		if err != nil {
			t.Fatalf("ParseFrequency(%q): unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseFrequency(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "weekly", "3", "daily"} {
		if _, err := ParseFrequency(bad); !errors.Is(err, ErrUnknownFrequency) {
			t.Errorf("ParseFrequency(%q): expected ErrUnknownFrequency, got %v", bad, err)
		}
	}
}

func TestParseRounding(t *testing.T) {
	for in, want := range map[string]Rounding{
		"ceiling":             RoundCeiling,
		"floor":               RoundFloor,
		"truncate":            RoundTruncate,
		"truncate-to-integer": RoundTruncate,
		"TRUNCATE_TO_INTEGER": RoundTruncate,
	} {
		got, err := ParseRounding(in)
		if err != nil {
			t.Fatalf("ParseRounding(%q): unexpected error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseRounding(%q) = %s, want %s", in, got, want)
		}
	}
	if _, err := ParseRounding("nearest"); !errors.Is(err, ErrUnknownRounding) {
		t.Errorf("expected ErrUnknownRounding, got %v", err)
	}
}

func TestParseCostModel(t *testing.T) {
	for _, m := range []CostModel{CostMarginOnly, CostAnnualNotional, CostMarginInterest} {
		got, err := ParseCostModel(string(m))
		if err != nil {
			t.Fatalf("ParseCostModel(%q): unexpected error: %v", m, err)
		}
		if got != m {
			t.Errorf("ParseCostModel(%q) = %s", m, got)
		}
	}
	if _, err := ParseCostModel("both"); !errors.Is(err, ErrUnknownCostModel) {
		t.Errorf("expected ErrUnknownCostModel, got %v", err)
	}
}

func TestFrequency_JSON(t *testing.T) {
	var v struct {
		F Frequency `json:"f"`
	}
	if err := json.Unmarshal([]byte(`{"f":"quarterly"}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.F != FrequencyQuarterly {
		t.Fatalf("expected quarterly, got %d", v.F)
	}

	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"f":"quarterly"}` {
		t.Errorf("unexpected encoding: %s", out)
	}

	if err := json.Unmarshal([]byte(`{"f":"hourly"}`), &v); err == nil {
		t.Error("expected error for unknown frequency")
	}
}
