package cmd

import (
	"github.com/pulsegrid/afterglow/core"
	"github.com/pulsegrid/afterglow/internal/contract"
	"github.com/spf13/cobra"
)

// evaluateCmd evaluates a model over a time grid.
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a model light curve over a time grid.",
	Long: `Evaluate a named model on a time grid at given parameter values.

Parameters default to the model's declared defaults; override any of them
with --params. Flux-density and magnitude output need exactly one --bands
entry so the effective frequency is defined, and a --redshift for the
distance conversion.

Examples:
  # Bolometric Arnett curve at default parameters
  afterglow evaluate --model arnett

  # Custom parameters on a denser grid
  afterglow evaluate --model arnett --params mej=2.5,f_nickel=0.08 \
    --tstart 0.5 --tend 80 --points 400

  # Kilonova magnitudes in the r band
  afterglow evaluate --model one_component_kilonova --unit magnitude \
    --bands r --redshift 0.0099

  # Export the curve for plotting elsewhere
  afterglow evaluate --model magnetar --output csv --output-file curve.csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteEvaluate(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot evaluate model", err)
		}
	},
}
