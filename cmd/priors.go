package cmd

import (
	"github.com/pulsegrid/afterglow/core"
	"github.com/pulsegrid/afterglow/internal/contract"
	"github.com/spf13/cobra"
)

// priorsCmd dumps default prior sets as YAML.
var priorsCmd = &cobra.Command{
	Use:   "priors",
	Short: "Write a model's default priors as a YAML prior file.",
	Long: `Print the default prior set for a model in the YAML format accepted by
--prior-file. Without --model, list the models that carry default priors.

Edit the generated file to narrow or widen ranges, then pass it back to
'afterglow fit' with --prior-file.

Examples:
  # Which models have default priors?
  afterglow priors

  # Dump and customize the Arnett priors
  afterglow priors --model arnett --output-file arnett_priors.yaml`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePriors(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot write priors", err)
		}
	},
}
