// Package policy holds the named calculation policies (compounding,
// lot rounding, hedge cost model) and parses them from their wire names.
// Every divergence between dashboard variants is selected here explicitly
// instead of being baked into a formula.
package policy

import (
	"errors"
	"fmt"
	"strings"
)

// Convention selects how yield accrues over the tenure.
type Convention string

// Supported interest conventions.
const (
	ConventionSimple   Convention = "simple"
	ConventionCompound Convention = "compound"
)

// Frequency is the number of compounding periods per year.
type Frequency int

// Supported compounding frequencies.
const (
	FrequencyAnnual     Frequency = 1
	FrequencySemiAnnual Frequency = 2
	FrequencyQuarterly  Frequency = 4
	FrequencyMonthly    Frequency = 12
)

// Rounding selects how fractional lot counts become whole lots.
type Rounding string

// Supported lot rounding policies. RoundCeiling never under-protects;
// RoundFloor never over-commits margin. RoundTruncate matches floor for
// the non-negative lot counts the sizer produces.
const (
	RoundCeiling  Rounding = "ceiling"
	RoundFloor    Rounding = "floor"
	RoundTruncate Rounding = "truncate"
)

// CostModel selects how the cost of carrying the hedge is computed.
type CostModel string

// Supported hedge cost models. They are mutually exclusive.
const (
	CostMarginOnly     CostModel = "margin-only"
	CostAnnualNotional CostModel = "annualized-notional-cost"
	CostMarginInterest CostModel = "margin-interest"
)

var (
	ErrUnknownConvention = errors.New("policy: unsupported compounding convention")
	ErrUnknownFrequency  = errors.New("policy: unsupported compounding frequency")
	ErrUnknownRounding   = errors.New("policy: unsupported rounding policy")
	ErrUnknownCostModel  = errors.New("policy: unsupported cost model")
)

var validConventions = map[Convention]bool{
	ConventionSimple:   true,
	ConventionCompound: true,
}

var frequencyNames = map[string]Frequency{
	"annual":      FrequencyAnnual,
	"semi-annual": FrequencySemiAnnual,
	"quarterly":   FrequencyQuarterly,
	"monthly":     FrequencyMonthly,
}

var validRoundings = map[Rounding]bool{
	RoundCeiling:  true,
	RoundFloor:    true,
	RoundTruncate: true,
}

var validCostModels = map[CostModel]bool{
	CostMarginOnly:     true,
	CostAnnualNotional: true,
	CostMarginInterest: true,
}

// Valid reports whether c is a supported convention.
func (c Convention) Valid() bool { return validConventions[c] }

// Valid reports whether f is a supported compounding frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyAnnual, FrequencySemiAnnual, FrequencyQuarterly, FrequencyMonthly:
		return true
	}
	return false
}

// String returns the wire name of the frequency.
func (f Frequency) String() string {
	for name, v := range frequencyNames {
		if v == f {
			return name
		}
	}
	return fmt.Sprintf("frequency(%d)", int(f))
}

// Valid reports whether r is a supported rounding policy.
func (r Rounding) Valid() bool { return validRoundings[r] }

// Valid reports whether m is a supported cost model.
func (m CostModel) Valid() bool { return validCostModels[m] }

// ParseConvention parses "simple" or "compound" (case-insensitive).
func ParseConvention(s string) (Convention, error) {
	c := Convention(normalize(s))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownConvention, s)
	}
	return c, nil
}

// ParseFrequency accepts the wire names (annual, semi-annual, quarterly,
// monthly) as well as the period counts 1, 2, 4 and 12.
func ParseFrequency(s string) (Frequency, error) {
	n := normalize(s)
	if f, ok := frequencyNames[n]; ok {
		return f, nil
	}
	switch n {
	case "semiannual":
		return FrequencySemiAnnual, nil
	case "1":
		return FrequencyAnnual, nil
	case "2":
		return FrequencySemiAnnual, nil
	case "4":
		return FrequencyQuarterly, nil
	case "12":
		return FrequencyMonthly, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFrequency, s)
}

// ParseRounding parses a lot rounding policy. "truncate-to-integer" is
// accepted as an alias of truncate.
func ParseRounding(s string) (Rounding, error) {
	n := normalize(s)
	if n == "truncate-to-integer" {
		n = string(RoundTruncate)
	}
	r := Rounding(n)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRounding, s)
	}
	return r, nil
}

// ParseCostModel parses a hedge cost model name.
func ParseCostModel(s string) (CostModel, error) {
	m := CostModel(normalize(s))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCostModel, s)
	}
	return m, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "_", "-")))
}

// MarshalText encodes the frequency by its wire name. The zero value
// (unset) encodes as an empty string.
func (f Frequency) MarshalText() ([]byte, error) {
	if f == 0 {
		return []byte{}, nil
	}
	return []byte(f.String()), nil
}

// UnmarshalText decodes a frequency from its wire name or period count.
// An empty string leaves the frequency unset.
func (f *Frequency) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*f = 0
		return nil
	}
	parsed, err := ParseFrequency(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
