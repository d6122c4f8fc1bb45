package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/pulsegrid/afterglow/core/models"
	"github.com/pulsegrid/afterglow/internal/contract"
	"github.com/pulsegrid/afterglow/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteModels outputs the model registry, dispatching based on the output format configured.
func WriteModels(list []*models.Model, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONModels(w, list)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVModels(w, list)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for the model listing")
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeModelsTable(list, cfg, w)
		}, "Wrote table")
	}
}

// writeModelsTable generates and writes the human-readable model listing.
func writeModelsTable(list []*models.Model, cfg *contract.Config, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	table.Header([]string{"Model", "Type", "Units", "Params", "Description"})

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	maxDesc := getMaxTableDescWidth(cfg)

	var data [][]string
	for _, m := range list {
		row := []string{
			m.Name,
			string(m.Type),
			joinUnits(m.Units),
			strings.Join(m.ParamNames(), ","),
			contract.TruncateLabel(m.Description, maxDesc),
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Showing %d registered models\n", len(list)); err != nil {
		return err
	}
	return nil
}

// writeCSVModels writes the model listing in CSV format.
func writeCSVModels(w io.Writer, list []*models.Model) error {
	header := []string{"name", "type", "units", "params", "description"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, m := range list {
			rec := []string{
				m.Name,
				string(m.Type),
				joinUnits(m.Units),
				strings.Join(m.ParamNames(), "|"),
				m.Description,
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeJSONModels writes the model listing in JSON format, including the
// full parameter declarations.
func writeJSONModels(w io.Writer, list []*models.Model) error {
	type JSONParam struct {
		Name        string  `json:"name"`
		Unit        string  `json:"unit"`
		Description string  `json:"description"`
		Default     float64 `json:"default"`
	}
	type JSONModel struct {
		Name        string      `json:"name"`
		Type        string      `json:"type"`
		Description string      `json:"description"`
		Units       []string    `json:"units"`
		Params      []JSONParam `json:"params"`
	}

	output := make([]JSONModel, len(list))
	for i, m := range list {
		params := make([]JSONParam, len(m.Params))
		for j, p := range m.Params {
			params[j] = JSONParam{
				Name:        p.Name,
				Unit:        p.Unit,
				Description: p.Description,
				Default:     p.Default,
			}
		}
		units := make([]string, len(m.Units))
		for j, u := range m.Units {
			units[j] = string(u)
		}
		output[i] = JSONModel{
			Name:        m.Name,
			Type:        string(m.Type),
			Description: m.Description,
			Units:       units,
			Params:      params,
		}
	}

	return writeJSON(w, output)
}

// joinUnits renders the supported output units as a comma-separated list.
func joinUnits(units []schema.OutputUnit) string {
	parts := make([]string, len(units))
	for i, u := range units {
		parts[i] = string(u)
	}
	return strings.Join(parts, ",")
}
