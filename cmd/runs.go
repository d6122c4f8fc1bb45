package cmd

import (
	"fmt"

	"github.com/pulsegrid/afterglow/internal/contract"
	"github.com/pulsegrid/afterglow/internal/iocache"
	"github.com/pulsegrid/afterglow/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsSetup loads minimal configuration needed for run-store operations.
// This is used by commands that need run access without full shared setup.
func runsSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get run-store config values
	backendStr := viper.GetString("runs-backend")
	connStr := viper.GetString("runs-db-connect")

	// Handle empty backend as NoneBackend
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Get output-related config values (used by export command)
	outputFile := viper.GetString("output-file")

	// Initialize the run store only (no dataset caching for runs commands)
	if err := iocache.InitStores(schema.NoneBackend, "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run store: %w", err)
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr
	cfg.OutputFile = outputFile

	return nil
}

// runsSetupWrapper wraps runsSetup to provide PreRunE for runs commands.
func runsSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsSetup()
}

// runsMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func runsMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get run-store config values
	backendStr := viper.GetString("runs-backend")
	connStr := viper.GetString("runs-db-connect")

	// Handle empty backend as NoneBackend
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetRunsDBFilePath()
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr

	return nil
}

// runsMigrateSetupWrapper wraps runsMigrateSetup to provide PreRunE for migrate command.
func runsMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsMigrateSetup()
}

// runsCmd focused on fit-run history management.
//
// Note: Runs subcommands use minimal initialization (runsSetup) instead of
// the full sharedSetup used by fitting commands. This avoids data file
// validation and complex config processing for simple store operations.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage recorded fit runs and exports",
	Long: `Manage the fit-run history used for tracking and reporting.

When enabled, Afterglow records every fit, storing:
- Run metadata (timestamps, configuration, duration)
- Per-parameter posterior summaries (median, credible interval, max like)
- Sampler diagnostics (acceptance, max log likelihood)

This enables comparison across fits and data export for analytics tools.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  list    - Show recent fit runs
  status  - Show run store statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all recorded runs
  migrate - Run database schema migrations

Examples:
  # Look at recent fits
  afterglow runs list

  # Export for analysis in pandas/DuckDB
  afterglow runs export --output-file fit-history.parquet`,
}

// runsListCmd lists recent fit runs.
var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the most recent fit runs, newest first",
	Long: `List recorded fit runs with their timing, configuration and sampler
diagnostics.

Examples:
  # The 20 most recent runs
  afterglow runs list

  # A longer history
  afterglow runs list --limit 100`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runs, err := iocache.Manager.GetRunStore().ListRuns(viper.GetInt("limit"))
		if err != nil {
			contract.LogFatal("Failed to list runs", err)
		}
		if err := iocache.PrintRunList(runs); err != nil {
			contract.LogFatal("Failed to print runs", err)
		}
	},
}

// runsStatusCmd shows run store status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run store statistics and connection details",
	Long: `Show detailed information about fit-run tracking.

Displays:
- Backend type and connection status
- Total number of recorded fit runs
- Database table sizes

Examples:
  # Check run tracking status
  afterglow runs status`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetRunStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run store status", err)
		}
		iocache.PrintRunStoreStatus(status)
	},
}

// runsClearCmd clears the run history.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded fit runs",
	Long: `Delete all stored fit runs and their posterior summaries.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  afterglow runs export --output-file backup.parquet
  afterglow runs clear`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearRuns(cfg.RunsBackend, contract.GetRunsDBFilePath(), cfg.RunsDBConnect); err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		fmt.Println("Run history cleared successfully.")
	},
}

// runsExportCmd exports run data to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export fit-run history to Parquet for BI tools and analytics",
	Long: `Export all recorded fit runs to Parquet format for use with analytics
tools.

Exports two datasets:
- Fit runs - metadata and diagnostics for each fit
- Run params - per-parameter posterior summaries

Parquet format enables fast querying with DuckDB, Apache Spark and pandas.

Requires: --output-file parameter

Examples:
  # Export all data
  afterglow runs export --output-file fit-history.parquet

  # Use with DuckDB for analysis
  duckdb -c "SELECT * FROM read_parquet('fit-history.parquet.fit_runs.parquet') LIMIT 10"`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteRunsExport(iocache.Manager, cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the fit-run store.

By default, migrates to the latest version. Use --target-version for
specific versions.

Examples:
  # Migrate to latest version (default)
  afterglow runs migrate

  # Rollback to initial state
  afterglow runs migrate --target-version 0`,
	PreRunE: runsMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateRuns(cfg.RunsBackend, cfg.RunsDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
