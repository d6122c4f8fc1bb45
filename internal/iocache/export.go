package iocache

import (
	"errors"
	"fmt"
	"os"

	"github.com/pulsegrid/afterglow/internal/contract"
	"github.com/pulsegrid/afterglow/internal/parquet"
)

// ExecuteRunsExport exports all recorded fit runs and their posterior
// summaries to a pair of Parquet files.
func ExecuteRunsExport(mgr contract.StoreManager, outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := mgr.GetRunStore()

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run store status: %w", err)
	}

	if status.TotalRuns == 0 {
		return errors.New("no fit runs found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total fit runs: %d\n", status.TotalRuns)

	// Retrieve all fit runs
	runs, err := store.ListRuns(status.TotalRuns)
	if err != nil {
		return fmt.Errorf("failed to retrieve fit runs: %w", err)
	}

	// Retrieve the posterior summaries of every run
	var params []parquet.RunParam
	for _, run := range runs {
		records, err := store.ListParams(run.RunID)
		if err != nil {
			return fmt.Errorf("failed to retrieve params for run %d: %w", run.RunID, err)
		}
		params = append(params, parquet.FromRunParamRecords(records)...)
	}

	// Write fit runs to Parquet
	runsFile := outputFile + ".fit_runs.parquet"
	if err := writeParquetFile(runsFile, func(f *os.File) error {
		return parquet.WriteFitRuns(f, parquet.FromFitRunRecords(runs))
	}); err != nil {
		return fmt.Errorf("failed to write fit runs: %w", err)
	}
	fmt.Printf("Exported %d fit runs to: %s\n", len(runs), runsFile)

	// Write posterior summaries to Parquet
	paramsFile := outputFile + ".run_params.parquet"
	if err := writeParquetFile(paramsFile, func(f *os.File) error {
		return parquet.WriteRunParams(f, params)
	}); err != nil {
		return fmt.Errorf("failed to write run params: %w", err)
	}
	fmt.Printf("Exported %d parameter summaries to: %s\n", len(params), paramsFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Apache Arrow")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}

// writeParquetFile creates the file, hands it to the writer and closes it.
func writeParquetFile(path string, writer func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writer(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
