package cmd

import (
	"github.com/pulsegrid/afterglow/core"
	"github.com/pulsegrid/afterglow/internal/contract"
	"github.com/spf13/cobra"
)

// fitCmd runs a Bayesian light-curve fit.
var fitCmd = &cobra.Command{
	Use:   "fit <data-file>",
	Short: "Fit a transient model to light-curve data with ensemble MCMC.",
	Long: `Fit a light-curve model to transient photometry with an affine-invariant
ensemble sampler.

Data is read from a processed CSV file whose columns match the selected
--data-mode. The posterior summary reports per-parameter medians, 16/84th
percentile credible intervals and the maximum-likelihood point.

Each completed fit is recorded in the run store (see 'afterglow runs')
unless run tracking is disabled with --runs-backend none.

Examples:
  # Fit the Arnett model to bolometric luminosity data
  afterglow fit SN2011kl.csv --model arnett --name SN2011kl

  # Magnitude data in selected bands, with non-detections as upper limits
  afterglow fit at2017gfo.csv --data-mode magnitude --bands g,r,i \
    --model one_component_kilonova --likelihood gaussian_upper_limits

  # Longer chains with a fixed seed and posterior export
  afterglow fit grb.csv --model smooth_broken_powerlaw --walkers 128 --steps 2000 \
    --seed 42 --samples-file posterior.parquet

  # Custom priors and JSON output
  afterglow fit SN2011kl.csv --model arnett --prior-file priors.yaml \
    --output json --output-file fit.json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteFit(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot run fit", err)
		}
	},
}
