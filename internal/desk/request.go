package desk

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bondhedge/hedge-engine/internal/engine"
	"github.com/bondhedge/hedge-engine/internal/hedge"
	"github.com/bondhedge/hedge-engine/internal/model"
	"github.com/bondhedge/hedge-engine/internal/policy"
	"github.com/bondhedge/hedge-engine/internal/scenario"
)

// CalculateRequest is the JSON body for POST /quote and POST /calculations.
// Principal, tenure and yield are required; everything else falls back
// to the configured defaults when omitted.
type CalculateRequest struct {
	Principal          decimal.NullDecimal `json:"principal"`
	TenureYears        decimal.NullDecimal `json:"tenure_years"`
	AnnualYieldPercent decimal.NullDecimal `json:"annual_yield_percent"`
	Convention         string              `json:"convention,omitempty"`            // simple | compound
	Frequency          FrequencyName       `json:"compounding_frequency,omitempty"` // annual, semi-annual, quarterly, monthly or 1, 2, 4, 12

	SpotRate                  decimal.NullDecimal `json:"spot_rate"`
	LotSizeUSD                decimal.NullDecimal `json:"lot_size_usd"`
	MarginPerLot              decimal.NullDecimal `json:"margin_per_lot"`
	HedgeCoveragePercent      decimal.NullDecimal `json:"hedge_coverage_percent"`
	AnnualHedgingCostPercent  decimal.NullDecimal `json:"annual_hedging_cost_percent"`
	MarginInterestRatePercent decimal.NullDecimal `json:"margin_interest_rate_percent"`

	CostModel string `json:"cost_model,omitempty"`
	Rounding  string `json:"rounding,omitempty"`
}

// Params is a fully resolved calculation request.
type Params struct {
	Investment model.InvestmentParameters
	Hedge      model.HedgeParameters
	CostModel  policy.CostModel
	Rounding   policy.Rounding
}

// Resolve applies defaults and parses policy names. Missing required
// fields and unknown names are reported together as engine.ValidationError
// values; ranges are left to engine.Calculate.
func (r CalculateRequest) Resolve(d model.Defaults) (Params, error) {
	var errs []error
	required := func(field string, v decimal.NullDecimal) decimal.Decimal {
		if !v.Valid {
			errs = append(errs, &engine.ValidationError{Field: field, Reason: "is required"})
		}
		return v.Decimal
	}
	parse := func(field, raw string, fn func(string) error) {
		if raw == "" {
			return
		}
		if err := fn(raw); err != nil {
			errs = append(errs, &engine.ValidationError{Field: field, Reason: err.Error()})
		}
	}

	p := Params{
		Investment: model.InvestmentParameters{
			Principal:          required("principal", r.Principal),
			TenureYears:        required("tenure_years", r.TenureYears),
			AnnualYieldPercent: required("annual_yield_percent", r.AnnualYieldPercent),
			Frequency:          d.Frequency,
			Convention:         d.Convention,
		},
		Hedge: model.HedgeParameters{
			SpotRate:                  orDefault(r.SpotRate, d.SpotRate),
			LotSizeUSD:                orDefault(r.LotSizeUSD, d.LotSizeUSD),
			MarginPerLot:              orDefault(r.MarginPerLot, d.MarginPerLot),
			HedgeCoveragePercent:      decimal.NewNullDecimal(orDefault(r.HedgeCoveragePercent, d.CoveragePercent)),
			AnnualHedgingCostPercent:  r.AnnualHedgingCostPercent,
			MarginInterestRatePercent: r.MarginInterestRatePercent,
		},
		CostModel: d.CostModel,
		Rounding:  d.Rounding,
	}

	parse("convention", r.Convention, func(s string) (err error) {
		p.Investment.Convention, err = policy.ParseConvention(s)
		return err
	})
	parse("compounding_frequency", string(r.Frequency), func(s string) (err error) {
		p.Investment.Frequency, err = policy.ParseFrequency(s)
		return err
	})
	parse("cost_model", r.CostModel, func(s string) (err error) {
		p.CostModel, err = policy.ParseCostModel(s)
		return err
	})
	parse("rounding", r.Rounding, func(s string) (err error) {
		p.Rounding, err = policy.ParseRounding(s)
		return err
	})

	if err := errors.Join(errs...); err != nil {
		return Params{}, err
	}
	return p, nil
}

// FrequencyName is a compounding frequency as sent by clients: a name
// ("quarterly") or a period count, either as a JSON string or a number.
type FrequencyName string

func (f *FrequencyName) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*f = FrequencyName(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("compounding_frequency must be a string or a number: %w", err)
	}
	*f = FrequencyName(s)
	return nil
}

func orDefault(v decimal.NullDecimal, def decimal.Decimal) decimal.Decimal {
	if v.Valid {
		return v.Decimal
	}
	return def
}

// SweepRequest is the JSON body for POST /calculations/{id}/scenarios.
// Either an explicit list of shifts or an inclusive from/to/step range.
type SweepRequest struct {
	Shifts []decimal.Decimal   `json:"shifts,omitempty"`
	From   decimal.NullDecimal `json:"from"`
	To     decimal.NullDecimal `json:"to"`
	Step   decimal.NullDecimal `json:"step"`
}

// Resolve returns the shifts to evaluate, at most maxPoints of them.
// Problems are reported as hedge.InvalidInputError.
func (r SweepRequest) Resolve(maxPoints int) ([]decimal.Decimal, error) {
	ranged := r.From.Valid || r.To.Valid || r.Step.Valid

	var shifts []decimal.Decimal
	switch {
	case len(r.Shifts) > 0 && ranged:
		return nil, &hedge.InvalidInputError{Field: "shifts", Reason: "give either shifts or from/to/step, not both"}
	case len(r.Shifts) > 0:
		shifts = r.Shifts
	case ranged:
		if !r.From.Valid || !r.To.Valid || !r.Step.Valid {
			return nil, &hedge.InvalidInputError{Field: "step", Reason: "from, to and step are all required for a range"}
		}
		var err error
		shifts, err = scenario.Range(r.From.Decimal, r.To.Decimal, r.Step.Decimal)
		if err != nil {
			return nil, &hedge.InvalidInputError{Field: "step", Reason: err.Error()}
		}
	default:
		return nil, &hedge.InvalidInputError{Field: "shifts", Reason: "must not be empty"}
	}

	if len(shifts) > maxPoints {
		return nil, &hedge.InvalidInputError{
			Field:  "shifts",
			Reason: fmt.Sprintf("%d shifts exceeds limit of %d", len(shifts), maxPoints),
		}
	}
	return shifts, nil
}
