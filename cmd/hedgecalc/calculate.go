package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/bondhedge/hedge-engine/internal/desk"
	"github.com/bondhedge/hedge-engine/internal/engine"
	"github.com/bondhedge/hedge-engine/internal/model"
)

// calcFlags mirrors desk.CalculateRequest. Decimal flags are strings so
// an unset flag can fall back to the configured default.
type calcFlags struct {
	principal, tenure, yield          string
	convention, frequency             string
	spot, lotSize, marginPerLot       string
	coverage, hedgingCost, marginRate string
	costModel, rounding               string
}

func (f *calcFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.principal, "principal", "", "principal in INR (required)")
	fs.StringVar(&f.tenure, "tenure", "", "tenure in years, may be fractional (required)")
	fs.StringVar(&f.yield, "yield", "", "annual yield percent, e.g. 7.25 (required)")
	fs.StringVar(&f.convention, "convention", "", "interest convention: simple or compound")
	fs.StringVar(&f.frequency, "frequency", "", "compounding frequency: annual, semi-annual, quarterly, monthly")
	fs.StringVar(&f.spot, "spot", "", "USD/INR spot rate (INR per USD)")
	fs.StringVar(&f.lotSize, "lot-size", "", "futures lot size in USD")
	fs.StringVar(&f.marginPerLot, "margin-per-lot", "", "margin per lot in INR")
	fs.StringVar(&f.coverage, "coverage", "", "hedge coverage percent, 0 to 100")
	fs.StringVar(&f.hedgingCost, "hedging-cost", "", "annual hedging cost percent of notional")
	fs.StringVar(&f.marginRate, "margin-interest", "", "annual interest percent forgone on margin")
	fs.StringVar(&f.costModel, "cost-model", "", "margin-only, annualized-notional-cost or margin-interest")
	fs.StringVar(&f.rounding, "rounding", "", "lot rounding: ceiling, floor or truncate")
}

func (f *calcFlags) request() (desk.CalculateRequest, error) {
	req := desk.CalculateRequest{
		Convention: f.convention,
		Frequency:  desk.FrequencyName(f.frequency),
		CostModel:  f.costModel,
		Rounding:   f.rounding,
	}
	for _, v := range []struct {
		flag string
		raw  string
		dst  *decimal.NullDecimal
	}{
		{"principal", f.principal, &req.Principal},
		{"tenure", f.tenure, &req.TenureYears},
		{"yield", f.yield, &req.AnnualYieldPercent},
		{"spot", f.spot, &req.SpotRate},
		{"lot-size", f.lotSize, &req.LotSizeUSD},
		{"margin-per-lot", f.marginPerLot, &req.MarginPerLot},
		{"coverage", f.coverage, &req.HedgeCoveragePercent},
		{"hedging-cost", f.hedgingCost, &req.AnnualHedgingCostPercent},
		{"margin-interest", f.marginRate, &req.MarginInterestRatePercent},
	} {
		if v.raw == "" {
			continue
		}
		d, err := decimal.NewFromString(v.raw)
		if err != nil {
			return desk.CalculateRequest{}, fmt.Errorf("--%s: %q is not a number", v.flag, v.raw)
		}
		*v.dst = decimal.NewNullDecimal(d)
	}
	return req, nil
}

// calculate resolves the flags against the configured defaults and runs
// the engine.
func (f *calcFlags) calculate(a *app) (desk.Params, *model.CalculationResult, error) {
	req, err := f.request()
	if err != nil {
		return desk.Params{}, nil, err
	}
	p, err := req.Resolve(a.defaults)
	if err != nil {
		return desk.Params{}, nil, describe(err)
	}
	res, err := engine.Calculate(p.Investment, p.Hedge, p.CostModel, p.Rounding)
	if err != nil {
		return desk.Params{}, nil, describe(err)
	}
	return p, res, nil
}

func newCalculateCmd(a *app) *cobra.Command {
	var f calcFlags
	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Project maturity, size the hedge and compare net returns",
		Example: `  hedgecalc calculate --principal 1000000 --tenure 3 --yield 6.5
  hedgecalc calculate --principal 500000 --tenure 2.5 --yield 7 \
      --convention compound --frequency quarterly -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, res, err := f.calculate(a)
			if err != nil {
				return err
			}
			return renderCalculation(cmd.OutOrStdout(), a.output, p, res)
		},
	}
	f.register(cmd)
	return cmd
}
