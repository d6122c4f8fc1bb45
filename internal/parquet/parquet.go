// Package parquet provides data structures and functions for exporting
// fit-run data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/pulsegrid/afterglow/schema"
)

// FitRun represents a single recorded fit with metadata.
// This struct maps to the afterglow_fit_runs database table.
type FitRun struct {
	// RunID is the unique identifier for this fit run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the fit began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the fit completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the fit in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// Transient is the name of the fitted transient
	Transient string `parquet:"transient,snappy"`

	// Model is the light-curve model name
	Model string `parquet:"model,snappy"`

	// Likelihood is the likelihood kind used for the fit
	Likelihood string `parquet:"likelihood,snappy"`

	// MaxLogLike is the highest log likelihood seen in the chain (nullable)
	MaxLogLike *float64 `parquet:"max_log_like,optional,snappy"`

	// Acceptance is the mean acceptance fraction of the ensemble (nullable)
	Acceptance *float64 `parquet:"acceptance,optional,snappy"`

	// ConfigParams contains the JSON-encoded run configuration (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// RunParam represents one parameter's posterior summary within a fit run.
// This struct maps to the afterglow_run_params database table.
type RunParam struct {
	// RunID references the parent fit run
	RunID int64 `parquet:"run_id,snappy"`

	// Name is the parameter name as declared by the model
	Name string `parquet:"name,snappy"`

	// Median is the 50th percentile of the posterior samples
	Median float64 `parquet:"median,snappy"`

	// Lower is the 16th percentile
	Lower float64 `parquet:"lower,snappy"`

	// Upper is the 84th percentile
	Upper float64 `parquet:"upper,snappy"`

	// MaxLike is the value at the maximum-likelihood sample
	MaxLike float64 `parquet:"max_like,snappy"`
}

// Sample is one posterior draw of one parameter, in long format so column
// stores can pivot it however they like.
type Sample struct {
	// Draw is the flattened chain index
	Draw int64 `parquet:"draw,snappy"`

	// Name is the parameter name
	Name string `parquet:"name,snappy"`

	// Value is the sampled parameter value
	Value float64 `parquet:"value,snappy"`
}

// EvalPoint is one point of a model evaluation grid.
type EvalPoint struct {
	// Time is the grid time in days
	Time float64 `parquet:"time,snappy"`

	// Value is the model output at that time
	Value float64 `parquet:"value,snappy"`
}

// FromFitRunRecords converts database rows into their Parquet form.
func FromFitRunRecords(records []schema.FitRunRecord) []FitRun {
	out := make([]FitRun, len(records))
	for i, r := range records {
		out[i] = FitRun{
			RunID:         r.RunID,
			StartTime:     r.StartTime,
			EndTime:       r.EndTime,
			RunDurationMs: r.RunDurationMs,
			Transient:     r.Transient,
			Model:         r.Model,
			Likelihood:    r.Likelihood,
			MaxLogLike:    r.MaxLogLike,
			Acceptance:    r.Acceptance,
			ConfigParams:  r.ConfigParams,
		}
	}
	return out
}

// FromRunParamRecords converts database rows into their Parquet form.
func FromRunParamRecords(records []schema.RunParamRecord) []RunParam {
	out := make([]RunParam, len(records))
	for i, r := range records {
		out[i] = RunParam{
			RunID:   r.RunID,
			Name:    r.Name,
			Median:  r.Median,
			Lower:   r.Lower,
			Upper:   r.Upper,
			MaxLike: r.MaxLike,
		}
	}
	return out
}

// FromPosteriorSamples flattens a sample matrix into long-format rows.
// names gives the column order of each draw.
func FromPosteriorSamples(names []string, samples [][]float64) []Sample {
	out := make([]Sample, 0, len(samples)*len(names))
	for d, draw := range samples {
		for j, name := range names {
			out = append(out, Sample{Draw: int64(d), Name: name, Value: draw[j]})
		}
	}
	return out
}

// WriteFitRuns writes fit-run rows to w in Parquet format.
func WriteFitRuns(w io.Writer, data []FitRun) error {
	return writeRows(w, data)
}

// WriteRunParams writes parameter-summary rows to w in Parquet format.
func WriteRunParams(w io.Writer, data []RunParam) error {
	return writeRows(w, data)
}

// WriteSamples writes posterior-sample rows to w in Parquet format.
func WriteSamples(w io.Writer, data []Sample) error {
	return writeRows(w, data)
}

// WriteEvalPoints writes evaluation-grid rows to w in Parquet format.
func WriteEvalPoints(w io.Writer, data []EvalPoint) error {
	return writeRows(w, data)
}

// writeRows streams rows through a GenericWriter; the schema is inferred
// from the struct tags.
func writeRows[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
