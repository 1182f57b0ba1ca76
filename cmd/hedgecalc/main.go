// hedgecalc quotes hedged INR bond investments and stress-tests them
// against USD/INR moves from the command line.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bondhedge/hedge-engine/internal/config"
	"github.com/bondhedge/hedge-engine/internal/engine"
	"github.com/bondhedge/hedge-engine/internal/model"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
)

// app carries state resolved by the root command for its subcommands.
type app struct {
	cfg      *config.Config
	defaults model.Defaults
	output   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "hedgecalc",
		Short: "Hedged INR bond return calculator",
		Long: `hedgecalc projects an INR bond investment, sizes the USD/INR futures
hedge that locks in its USD value, and compares hedged and unhedged
outcomes under hypothetical exchange-rate moves.

Omitted hedge parameters come from configuration (see --config and the
HEDGE_* environment variables).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch a.output {
			case outputTable, outputJSON, outputYAML:
			default:
				return fmt.Errorf("unknown output format %q (want table, json or yaml)", a.output)
			}

			configFile, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			a.cfg = cfg
			a.defaults, err = cfg.HedgeDefaults()
			return err
		},
	}

	root.PersistentFlags().String("config", "", "config file path (default: ./hedge.yaml)")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", outputTable, "output format: table, json or yaml")

	root.AddCommand(
		newVersionCmd(),
		newCalculateCmd(a),
		newSweepCmd(a),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// Skip config loading.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hedgecalc %s (%s)\n", version, commit)
		},
	}
}

// describe turns a calculation error into a one-line message that lists
// every offending field.
func describe(err error) error {
	fields := engine.FieldErrors(err)
	if len(fields) == 0 {
		return err
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return fmt.Errorf("invalid parameters: %s", strings.Join(parts, "; "))
}
