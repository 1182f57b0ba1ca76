package main

import (
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/bondhedge/hedge-engine/internal/desk"
	"github.com/bondhedge/hedge-engine/internal/engine"
)

func newSweepCmd(a *app) *cobra.Command {
	var (
		f              calcFlags
		shifts         []string
		from, to, step string
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Compare hedged and unhedged returns across USD/INR shifts",
		Long: `sweep runs a calculation and evaluates it under each spot shift.
A positive shift means the rupee depreciates. Shifts are given either as
a list (--shifts -10,0,10) or as an inclusive range (--from, --to, --step).`,
		Example: `  hedgecalc sweep --principal 1000000 --tenure 3 --yield 6.5 --from -20 --to 20 --step 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, res, err := f.calculate(a)
			if err != nil {
				return err
			}

			var sr desk.SweepRequest
			for _, s := range shifts {
				d, err := decimal.NewFromString(s)
				if err != nil {
					return err
				}
				sr.Shifts = append(sr.Shifts, d)
			}
			for _, v := range []struct {
				raw string
				dst *decimal.NullDecimal
			}{{from, &sr.From}, {to, &sr.To}, {step, &sr.Step}} {
				if v.raw == "" {
					continue
				}
				d, err := decimal.NewFromString(v.raw)
				if err != nil {
					return err
				}
				*v.dst = decimal.NewNullDecimal(d)
			}

			points, err := sr.Resolve(a.cfg.Sweep.MaxPoints)
			if err != nil {
				return describe(err)
			}
			rows := engine.SweepScenarios(cmd.Context(), *res, points, a.cfg.Sweep.Workers)
			return renderSweep(cmd.OutOrStdout(), a.output, rows)
		},
	}
	f.register(cmd)
	cmd.Flags().StringSliceVar(&shifts, "shifts", nil, "comma-separated spot shifts in percent")
	cmd.Flags().StringVar(&from, "from", "", "first shift of a range, in percent")
	cmd.Flags().StringVar(&to, "to", "", "last shift of a range, in percent")
	cmd.Flags().StringVar(&step, "step", "", "range increment, in percent")
	return cmd
}
