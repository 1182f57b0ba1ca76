package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/bondhedge/hedge-engine/internal/desk"
	"github.com/bondhedge/hedge-engine/internal/model"
	"github.com/bondhedge/hedge-engine/internal/policy"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// calculationOutput is the json/yaml shape of the calculate command.
type calculationOutput struct {
	Investment model.InvestmentParameters `json:"investment"`
	Hedge      model.HedgeParameters      `json:"hedge"`
	Result     model.CalculationResult    `json:"result"`
}

func renderCalculation(w io.Writer, format string, p desk.Params, res *model.CalculationResult) error {
	out := calculationOutput{Investment: p.Investment, Hedge: p.Hedge, Result: *res}
	return render(w, format, out, func(tw *tabwriter.Writer) {
		inv := p.Investment
		basis := string(inv.Convention)
		if inv.Convention == policy.ConventionCompound {
			basis += ", " + inv.Frequency.String()
		}
		rows := [][2]string{
			{"Principal (INR)", money(inv.Principal)},
			{"Tenure (years)", inv.TenureYears.String()},
			{"Annual yield", inv.AnnualYieldPercent.String() + "% " + basis},
			{"Spot rate (INR/USD)", res.SpotRate.String()},
			{"", ""},
			{"Maturity value (INR)", money(res.MaturityValueINR)},
			{"Interest earned (INR)", money(res.InterestEarnedINR)},
			{"USD notional", money(res.USDNotional)},
			{"Lots required", strconv.FormatInt(res.LotsRequired, 10) + " (" + string(res.Rounding) + ")"},
			{"Covered USD", money(res.CoveredUSD)},
			{"Uncovered USD", money(res.UncoveredUSD)},
			{"Margin required (INR)", money(res.MarginRequiredINR)},
			{"Hedging cost (INR)", money(res.TotalHedgingCostINR) + " (" + string(res.CostModel) + ")"},
			{"", ""},
			{"Net return with hedge (INR)", money(res.NetReturnWithHedgeINR) + "  " + percent(res.ReturnPercentWithHedge)},
			{"Net return without hedge (INR)", money(res.NetReturnWithoutHedgeINR) + "  " + percent(res.ReturnPercentWithoutHedge)},
		}
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\n", r[0], r[1])
		}
	})
}

func renderSweep(w io.Writer, format string, rows []model.ScenarioRow) error {
	return render(w, format, rows, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "SHIFT %\tIMPLIED SPOT\tUNHEDGED INR\tHEDGED INR\tUNHEDGED USD\tHEDGED USD\t")
		for _, r := range rows {
			if !r.OK() {
				fmt.Fprintf(tw, "%s\terror: %s\t\t\t\t\t\n", r.ShiftPercent, r.Error)
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
				r.ShiftPercent,
				r.ImpliedSpotRate.StringFixed(4),
				money(r.UnhedgedReturnINR),
				money(r.HedgedReturnINR),
				money(r.UnhedgedReturnUSD),
				money(r.HedgedReturnUSD),
			)
		}
	})
}

// render writes v as JSON or YAML, or calls table for the tabular form.
// YAML goes through JSON first so decimals and enums keep their JSON
// encodings.
func render(w io.Writer, format string, v any, table func(*tabwriter.Writer)) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)

	case outputYAML:
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return err
		}
		return enc.Close()

	case outputTable:
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		table(tw)
		return tw.Flush()
	}
	return fmt.Errorf("unknown output format %q", format)
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func percent(d decimal.Decimal) string { return d.StringFixed(2) + "%" }
