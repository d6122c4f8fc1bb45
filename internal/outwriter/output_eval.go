package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pulsegrid/afterglow/internal/contract"
	"github.com/pulsegrid/afterglow/internal/parquet"
	"github.com/pulsegrid/afterglow/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteEvalResult outputs a model evaluation, dispatching based on the output format configured.
func WriteEvalResult(result *schema.EvalResult, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	_, sciFmt := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONEvalResult(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVEvalResult(w, result, sciFmt)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeParquetEvalResult(w, result)
		}, "Wrote Parquet")
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEvalTable(result, sciFmt, duration, w)
		}, "Wrote table")
	}
}

// writeEvalTable generates and writes the human-readable evaluation grid.
func writeEvalTable(result *schema.EvalResult, sciFmt func(float64) string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	table.Header([]string{"Time (days)", string(result.Unit)})

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, t := range result.Time {
		data = append(data, []string{sciFmt(t), sciFmt(result.Values[i])})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Evaluated %s at %d points with %s\n",
		result.Model, len(result.Time), formatParams(result.Params, sciFmt)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Evaluation completed in %v\n", duration); err != nil {
		return err
	}
	return nil
}

// writeCSVEvalResult writes the evaluation grid in CSV format.
func writeCSVEvalResult(w io.Writer, result *schema.EvalResult, sciFmt func(float64) string) error {
	header := []string{"time", string(result.Unit)}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for i, t := range result.Time {
			if err := csvWriter.Write([]string{sciFmt(t), sciFmt(result.Values[i])}); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeJSONEvalResult writes the evaluation grid in JSON format.
func writeJSONEvalResult(w io.Writer, result *schema.EvalResult) error {
	type JSONEvalResult struct {
		Model  string             `json:"model"`
		Unit   string             `json:"unit"`
		Params map[string]float64 `json:"params"`
		Time   []float64          `json:"time"`
		Values []float64          `json:"values"`
	}
	output := JSONEvalResult{
		Model:  result.Model,
		Unit:   string(result.Unit),
		Params: result.Params,
		Time:   result.Time,
		Values: result.Values,
	}
	return writeJSON(w, output)
}

// writeParquetEvalResult writes the evaluation grid in Parquet format.
func writeParquetEvalResult(w io.Writer, result *schema.EvalResult) error {
	rows := make([]parquet.EvalPoint, len(result.Time))
	for i, t := range result.Time {
		rows[i] = parquet.EvalPoint{Time: t, Value: result.Values[i]}
	}
	return parquet.WriteEvalPoints(w, rows)
}

// formatParams renders a parameter map as "name=value" pairs in sorted order.
func formatParams(params map[string]float64, sciFmt func(float64) string) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	out := ""
	for i, name := range names {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s=%s", name, sciFmt(params[name]))
	}
	return out
}
