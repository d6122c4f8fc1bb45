// Package cmd defines the command-line interface for afterglow.
package cmd

import (
	"github.com/pulsegrid/afterglow/internal/contract"
	"github.com/pulsegrid/afterglow/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(fitCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(priorsCmd)
	rootCmd.AddCommand(dataCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(runsCmd)

	// Add the data subcommands to the parent data command
	dataCmd.AddCommand(dataInspectCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("name", "n", "", "Transient name used in output and run tracking")
	rootCmd.PersistentFlags().String("type", "", "Transient class: supernova, kilonova, afterglow, tde, magnetar or generic")
	rootCmd.PersistentFlags().String("data-mode", string(schema.LuminosityMode), "Data mode: luminosity, flux, flux_density, magnitude, counts or ttes")
	rootCmd.PersistentFlags().String("bands", "", "Comma-separated list of bands to fit or evaluate (empty means all)")
	rootCmd.PersistentFlags().String("redshift", "", "Source redshift override (empty means take it from the data or fail)")
	rootCmd.PersistentFlags().StringP("model", "m", "", "Model name, see 'afterglow models'")
	rootCmd.PersistentFlags().String("prior-file", "", "YAML prior file overriding the model's default priors")
	rootCmd.PersistentFlags().String("likelihood", string(schema.GaussianLikelihood), "Likelihood: gaussian, gaussian_quadrature, gaussian_upper_limits or student_t")
	rootCmd.PersistentFlags().String("unit", string(schema.LuminosityUnit), "Output unit for evaluate/simulate: luminosity, flux, flux_density, magnitude")
	rootCmd.PersistentFlags().String("params", "", "Model parameters as name=value pairs, comma separated")
	rootCmd.PersistentFlags().Float64("tstart", 0.1, "Start of the time grid in days")
	rootCmd.PersistentFlags().Float64("tend", 100.0, "End of the time grid in days")
	rootCmd.PersistentFlags().Int("points", 100, "Number of points on the time grid")
	rootCmd.PersistentFlags().Uint64("seed", 0, "RNG seed for reproducible sampling (0 = time-based)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Dataset cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("runs-backend", string(schema.SQLiteBackend), "Fit-run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("runs-db-connect", "", "Database connection string for run tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of fitCmd to Viper
	fitCmd.Flags().Int("walkers", contract.DefaultWalkers, "Number of ensemble walkers (even, >= 4)")
	fitCmd.Flags().Int("steps", contract.DefaultSteps, "Number of MCMC steps per walker")
	fitCmd.Flags().Int("burn", contract.DefaultBurn, "Number of burn-in steps to discard")
	fitCmd.Flags().Int("thin", contract.DefaultThin, "Keep every n-th posterior sample")
	fitCmd.Flags().Int("predictive-draws", 0, "Number of posterior draws to evaluate on a dense grid (0 = off)")
	fitCmd.Flags().Int("predictive-points", 100, "Grid size for posterior-predictive draws")
	fitCmd.Flags().String("samples-file", "", "Optional Parquet path to export the posterior samples")
	if err := viper.BindPFlags(fitCmd.Flags()); err != nil {
		contract.LogFatal("Error binding fit flags", err)
	}

	// Bind all flags of simulateCmd to Viper
	simulateCmd.Flags().Float64("noise", 0.05, "Fractional Gaussian noise added to the simulated curve")
	if err := viper.BindPFlags(simulateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding simulate flags", err)
	}

	// Bind all flags of runsListCmd to Viper
	runsListCmd.Flags().Int("limit", 20, "Number of runs to display")
	if err := viper.BindPFlags(runsListCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs list flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
