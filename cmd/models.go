package cmd

import (
	"github.com/pulsegrid/afterglow/core"
	"github.com/pulsegrid/afterglow/internal/contract"
	"github.com/spf13/cobra"
)

// modelsCmd lists the registered light-curve models.
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List registered light-curve models and their parameters.",
	Long: `Show every registered model with its transient class, supported output
units and parameter names.

No data is read; this is purely informational. Use --output json for the
full parameter declarations including units, descriptions and defaults.

Examples:
  # Human-readable table
  afterglow models

  # Full parameter metadata
  afterglow models --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteModels(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot list models", err)
		}
	},
}
