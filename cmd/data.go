package cmd

import (
	"github.com/pulsegrid/afterglow/core"
	"github.com/pulsegrid/afterglow/internal/contract"
	"github.com/spf13/cobra"
)

// dataCmd groups operations on transient data files.
var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Inspect transient light-curve data files",
	Long: `Work with processed transient data files without running a fit.

Subcommands:
  inspect - Load a data file and print a summary

Examples:
  # Summarize a data file
  afterglow data inspect SN2011kl.csv`,
}

// dataInspectCmd summarizes a data file.
var dataInspectCmd = &cobra.Command{
	Use:   "inspect <data-file>",
	Short: "Load a data file and print a summary of its contents.",
	Long: `Parse a processed CSV file through the same loader the fit uses and print
what was found: point count, upper limits, time range, bands and redshift.

Useful for checking column layout and band labels before fitting, and for
verifying that --bands filters select the points you expect.

Examples:
  # Summarize bolometric luminosity data
  afterglow data inspect SN2011kl.csv

  # Magnitude data restricted to two bands
  afterglow data inspect at2017gfo.csv --data-mode magnitude --bands g,r`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteInspect(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot inspect data", err)
		}
	},
}
