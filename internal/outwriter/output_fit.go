package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/pulsegrid/afterglow/internal/contract"
	"github.com/pulsegrid/afterglow/internal/parquet"
	"github.com/pulsegrid/afterglow/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteFitResult outputs a fit result, dispatching based on the output format configured.
func WriteFitResult(result *schema.FitResult, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, sciFmt := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONFitResult(w, result, duration)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVFitResult(w, result, sciFmt)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeParquetFitResult(w, result)
		}, "Wrote Parquet")
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFitTable(result, cfg, fmtFloat, sciFmt, duration, w)
		}, "Wrote table")
	}
}

// WriteSamples writes the flattened posterior samples to path in Parquet format.
// The long format (draw, name, value) keeps the schema independent of the model.
func WriteSamples(path string, result *schema.FitResult) error {
	if path == "" {
		return fmt.Errorf("no samples file given")
	}
	names := make([]string, len(result.Params))
	for i, p := range result.Params {
		names[i] = p.Name
	}
	rows := parquet.FromPosteriorSamples(names, result.Samples)
	return writeWithFile(path, func(w io.Writer) error {
		return parquet.WriteSamples(w, rows)
	}, "Wrote posterior samples")
}

// writeFitTable generates and writes the human-readable posterior summary.
func writeFitTable(result *schema.FitResult, cfg *contract.Config, fmtFloat func(float64) string, sciFmt func(float64) string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	table.Header([]string{"Param", "Median", "-1σ", "+1σ", "Max like", "Prior"})

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, p := range result.Params {
		row := []string{
			p.Name,
			sciFmt(p.Median),
			sciFmt(p.Median - p.Lower),
			sciFmt(p.Upper - p.Median),
			sciFmt(p.MaxLike),
			fmt.Sprintf("[%s, %s]", sciFmt(p.PriorLower), sciFmt(p.PriorUpper)),
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Fitted %s to %s with the %s likelihood on %d points (%d posterior draws)\n",
		result.Model, result.Transient, result.Likelihood, result.Points, len(result.Samples)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Acceptance: %s %s, max log likelihood: %s, seed: %d\n",
		fmtFloat(result.Acceptance), contract.GetColorLabel(result.Acceptance), sciFmt(result.MaxLogLike), result.Seed); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Sampling completed in %v with %d walkers and %d workers. Runs backend: %s\n",
		duration, result.Walkers, cfg.Workers, cfg.RunsBackend); err != nil {
		return err
	}
	return nil
}

// writeCSVFitResult writes the posterior summary in CSV format.
func writeCSVFitResult(w io.Writer, result *schema.FitResult, sciFmt func(float64) string) error {
	header := []string{
		"name",
		"median",
		"lower",
		"upper",
		"max_like",
		"prior_lower",
		"prior_upper",
	}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, p := range result.Params {
			rec := []string{
				p.Name,
				sciFmt(p.Median),
				sciFmt(p.Lower),
				sciFmt(p.Upper),
				sciFmt(p.MaxLike),
				sciFmt(p.PriorLower),
				sciFmt(p.PriorUpper),
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeJSONFitResult writes the fit result in JSON format. The raw posterior
// samples are left out; they go to the samples file when requested.
func writeJSONFitResult(w io.Writer, result *schema.FitResult, duration time.Duration) error {
	type JSONParamSummary struct {
		Name       string  `json:"name"`
		Median     float64 `json:"median"`
		Lower      float64 `json:"lower"`
		Upper      float64 `json:"upper"`
		MaxLike    float64 `json:"max_like"`
		PriorLower float64 `json:"prior_lower"`
		PriorUpper float64 `json:"prior_upper"`
	}
	type JSONFitResult struct {
		Transient       string             `json:"transient"`
		Model           string             `json:"model"`
		Likelihood      string             `json:"likelihood"`
		DataMode        string             `json:"data_mode"`
		Points          int                `json:"points"`
		Walkers         int                `json:"walkers"`
		Steps           int                `json:"steps"`
		Burn            int                `json:"burn"`
		Thin            int                `json:"thin"`
		Seed            uint64             `json:"seed"`
		Acceptance      float64            `json:"acceptance"`
		AcceptanceLabel string             `json:"acceptance_label"`
		MaxLogLike      float64            `json:"max_log_like"`
		Draws           int                `json:"draws"`
		DurationMs      int64              `json:"duration_ms"`
		Params          []JSONParamSummary `json:"params"`
	}

	params := make([]JSONParamSummary, len(result.Params))
	for i, p := range result.Params {
		params[i] = JSONParamSummary{
			Name:       p.Name,
			Median:     p.Median,
			Lower:      p.Lower,
			Upper:      p.Upper,
			MaxLike:    p.MaxLike,
			PriorLower: p.PriorLower,
			PriorUpper: p.PriorUpper,
		}
	}

	output := JSONFitResult{
		Transient:       result.Transient,
		Model:           result.Model,
		Likelihood:      string(result.Likelihood),
		DataMode:        string(result.DataMode),
		Points:          result.Points,
		Walkers:         result.Walkers,
		Steps:           result.Steps,
		Burn:            result.Burn,
		Thin:            result.Thin,
		Seed:            result.Seed,
		Acceptance:      result.Acceptance,
		AcceptanceLabel: contract.GetPlainLabel(result.Acceptance),
		MaxLogLike:      result.MaxLogLike,
		Draws:           len(result.Samples),
		DurationMs:      duration.Milliseconds(),
		Params:          params,
	}

	return writeJSON(w, output)
}

// writeParquetFitResult writes the posterior summary in Parquet format.
// The run id is zero here; persisted runs are exported through the run store.
func writeParquetFitResult(w io.Writer, result *schema.FitResult) error {
	rows := make([]parquet.RunParam, len(result.Params))
	for i, p := range result.Params {
		rows[i] = parquet.RunParam{
			RunID:   0,
			Name:    p.Name,
			Median:  p.Median,
			Lower:   p.Lower,
			Upper:   p.Upper,
			MaxLike: p.MaxLike,
		}
	}
	return parquet.WriteRunParams(w, rows)
}
