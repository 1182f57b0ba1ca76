// Package bond projects a bond principal to its maturity value under a
// chosen interest convention.
//
// Two conventions are supported and the caller always picks one:
//   - simple:   M = P × (1 + y/100 × t)
//   - compound: M = P × (1 + (y/100)/n)^(n × t)
//
// They agree for a single annual period and diverge after it. Simple
// interest is a policy choice, not the n = 1 case of compounding.
//
// All monetary values use shopspring/decimal. Whole-period compounding is
// exact; fractional period counts fall back to float64 math.Pow with the
// result converted straight back to decimal.
package bond

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/bondhedge/hedge-engine/internal/policy"
)

var (
	// ErrInvalidProjection is returned for inputs that cannot be projected.
	ErrInvalidProjection = errors.New("bond: invalid projection input")

	// Scale is the number of decimal places kept on projected values.
	Scale int32 = 10

	// MaxTenureYears bounds the projection horizon.
	MaxTenureYears = decimal.NewFromInt(100)
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Projection is the outcome of projecting a principal to maturity.
type Projection struct {
	MaturityValue  decimal.Decimal `json:"maturity_value"`
	InterestEarned decimal.Decimal `json:"interest_earned"`
}

// Project computes maturity value and interest earned.
//
// Negative yield is accepted here and produces a loss; callers that want
// to forbid it validate before calling. The projection fails when
// principal or tenure is negative, tenure exceeds MaxTenureYears, the
// policy is unknown, or the growth factor is not positive.
//
// Only the interest is rounded to Scale; the principal is carried through
// unchanged, so a unit factor returns it exactly.
func Project(
	principal, tenureYears, annualYieldPercent decimal.Decimal,
	freq policy.Frequency, conv policy.Convention,
) (Projection, error) {
	if principal.IsNegative() {
		return Projection{}, fmt.Errorf("%w: principal %s is negative", ErrInvalidProjection, principal)
	}
	if tenureYears.IsNegative() {
		return Projection{}, fmt.Errorf("%w: tenure %s is negative", ErrInvalidProjection, tenureYears)
	}
	if tenureYears.GreaterThan(MaxTenureYears) {
		return Projection{}, fmt.Errorf("%w: tenure %s exceeds %s years", ErrInvalidProjection, tenureYears, MaxTenureYears)
	}

	var (
		factor decimal.Decimal
		err    error
	)
	switch conv {
	case policy.ConventionSimple:
		factor = SimpleFactor(tenureYears, annualYieldPercent)
	case policy.ConventionCompound:
		factor, err = CompoundFactor(tenureYears, annualYieldPercent, freq)
		if err != nil {
			return Projection{}, err
		}
	default:
		return Projection{}, fmt.Errorf("%w: %w %q", ErrInvalidProjection, policy.ErrUnknownConvention, conv)
	}

	if factor.IsNegative() {
		return Projection{}, fmt.Errorf("%w: growth factor %s is negative", ErrInvalidProjection, factor)
	}

	interest := principal.Mul(factor.Sub(one)).Round(Scale)
	return Projection{
		MaturityValue:  principal.Add(interest),
		InterestEarned: interest,
	}, nil
}

// SimpleFactor returns 1 + y/100 × t.
func SimpleFactor(tenureYears, annualYieldPercent decimal.Decimal) decimal.Decimal {
	return one.Add(annualYieldPercent.Div(hundred).Mul(tenureYears))
}

// CompoundFactor returns (1 + (y/100)/n)^(n × t).
func CompoundFactor(tenureYears, annualYieldPercent decimal.Decimal, freq policy.Frequency) (decimal.Decimal, error) {
	if !freq.Valid() {
		return decimal.Zero, fmt.Errorf("%w: %w %d", ErrInvalidProjection, policy.ErrUnknownFrequency, int(freq))
	}

	n := decimal.NewFromInt(int64(freq))
	base := one.Add(annualYieldPercent.Div(hundred).Div(n))
	if !base.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: periodic growth %s is not positive", ErrInvalidProjection, base)
	}

	periods := n.Mul(tenureYears)
	if periods.IsZero() {
		return one, nil
	}

	if periods.IsInteger() && periods.LessThanOrEqual(decimal.NewFromInt(math.MaxInt32)) {
		factor, err := base.PowInt32(int32(periods.IntPart()))
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %w", ErrInvalidProjection, err)
		}
		return factor.Round(Scale + 6), nil
	}

	// Fractional number of periods.
	f := math.Pow(base.InexactFloat64(), periods.InexactFloat64())
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return decimal.Zero, fmt.Errorf("%w: growth factor overflow", ErrInvalidProjection)
	}
	return decimal.NewFromFloat(f), nil
}
