package hedge

import (
	"github.com/shopspring/decimal"

	"github.com/bondhedge/hedge-engine/internal/policy"
)

// CostInput carries everything any cost model may need. Each model reads
// only its own rate; the other is ignored.
type CostInput struct {
	Lots         int64
	MarginPerLot decimal.Decimal // INR
	TenureYears  decimal.Decimal
	USDNotional  decimal.Decimal
	SpotRate     decimal.Decimal // inception rate, INR per USD

	AnnualHedgingCostPercent  decimal.NullDecimal
	MarginInterestRatePercent decimal.NullDecimal
}

// Costing is the margin locked and the cost spent carrying the hedge.
type Costing struct {
	MarginRequiredINR   decimal.Decimal `json:"margin_required_inr"`
	TotalHedgingCostINR decimal.Decimal `json:"total_hedging_cost_inr"`
}

// Cost computes margin and hedging cost under the selected model.
//
//	margin-only:              cost = 0
//	annualized-notional-cost: cost = notional × pct/100 × tenure × spot
//	margin-interest:          cost = margin × pct/100 × tenure
//
// Margin is always lots × marginPerLot.
func Cost(in CostInput, model policy.CostModel) (Costing, error) {
	if in.Lots < 0 {
		return Costing{}, invalid("lots_required", "must not be negative, got %d", in.Lots)
	}
	if in.MarginPerLot.IsNegative() {
		return Costing{}, invalid("margin_per_lot", "must not be negative, got %s", in.MarginPerLot)
	}
	if in.TenureYears.IsNegative() {
		return Costing{}, invalid("tenure_years", "must not be negative, got %s", in.TenureYears)
	}

	margin := decimal.NewFromInt(in.Lots).Mul(in.MarginPerLot)
	out := Costing{MarginRequiredINR: margin, TotalHedgingCostINR: decimal.Zero}

	switch model {
	case policy.CostMarginOnly:
		return out, nil

	case policy.CostAnnualNotional:
		rate, err := requireRate("annual_hedging_cost_percent", in.AnnualHedgingCostPercent)
		if err != nil {
			return Costing{}, err
		}
		if in.USDNotional.IsNegative() {
			return Costing{}, invalid("usd_notional", "must not be negative, got %s", in.USDNotional)
		}
		if !in.SpotRate.IsPositive() {
			return Costing{}, invalid("spot_rate", "must be positive, got %s", in.SpotRate)
		}
		out.TotalHedgingCostINR = in.USDNotional.Mul(rate).Div(hundred).Mul(in.TenureYears).Mul(in.SpotRate)
		return out, nil

	case policy.CostMarginInterest:
		rate, err := requireRate("margin_interest_rate_percent", in.MarginInterestRatePercent)
		if err != nil {
			return Costing{}, err
		}
		out.TotalHedgingCostINR = margin.Mul(rate).Div(hundred).Mul(in.TenureYears)
		return out, nil
	}

	return Costing{}, invalid("cost_model", "unsupported model %q", model)
}

func requireRate(field string, rate decimal.NullDecimal) (decimal.Decimal, error) {
	if !rate.Valid {
		return decimal.Zero, invalid(field, "required by the selected cost model")
	}
	if rate.Decimal.IsNegative() {
		return decimal.Zero, invalid(field, "must not be negative, got %s", rate.Decimal)
	}
	return rate.Decimal, nil
}
