package outwriter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pulsegrid/afterglow/core/models"
	"github.com/pulsegrid/afterglow/internal/contract"
	"github.com/pulsegrid/afterglow/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFitResult() *schema.FitResult {
	return &schema.FitResult{
		Transient:  "SN2011kl",
		Model:      "arnett",
		Likelihood: schema.GaussianLikelihood,
		DataMode:   schema.LuminosityMode,
		Points:     42,
		Walkers:    64,
		Steps:      500,
		Burn:       250,
		Thin:       1,
		Seed:       1234,
		Acceptance: 0.31,
		MaxLogLike: -120.5,
		Params: []schema.ParamSummary{
			{Name: "f_nickel", Median: 0.2, Lower: 0.15, Upper: 0.26, MaxLike: 0.21, PriorLower: 1e-3, PriorUpper: 1},
			{Name: "mej", Median: 3.1, Lower: 2.8, Upper: 3.5, MaxLike: 3.0, PriorLower: 1e-2, PriorUpper: 10},
		},
		Samples: [][]float64{
			{0.19, 3.0},
			{0.21, 3.2},
		},
	}
}

func TestWriteJSONFitResult(t *testing.T) {
	var buf bytes.Buffer
	err := writeJSONFitResult(&buf, sampleFitResult(), 2*time.Second)
	require.NoError(t, err)

	var result map[string]any
	err = json.Unmarshal(buf.Bytes(), &result)
	require.NoError(t, err)

	assert.Equal(t, "SN2011kl", result["transient"])
	assert.Equal(t, "arnett", result["model"])
	assert.Equal(t, "gaussian", result["likelihood"])
	assert.Equal(t, float64(42), result["points"])
	assert.Equal(t, 0.31, result["acceptance"])
	assert.Equal(t, "Good", result["acceptance_label"])
	assert.Equal(t, float64(2000), result["duration_ms"])

	params, ok := result["params"].([]any)
	require.True(t, ok)
	require.Len(t, params, 2)
	first, ok := params[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "f_nickel", first["name"])
	assert.Equal(t, 0.2, first["median"])
}

func TestWriteCSVFitResult(t *testing.T) {
	_, sciFmt := createFormatters(4)

	var buf bytes.Buffer
	err := writeCSVFitResult(&buf, sampleFitResult(), sciFmt)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3) // header + 2 params
	assert.Contains(t, lines[0], "median")
	assert.Contains(t, lines[0], "prior_lower")
	assert.Contains(t, lines[1], "f_nickel")
	assert.Contains(t, lines[2], "mej")
}

func TestWriteFitTable(t *testing.T) {
	fmtFloat, sciFmt := createFormatters(4)
	cfg := &contract.Config{Workers: 4, RunsBackend: schema.SQLiteBackend}

	var buf bytes.Buffer
	err := writeFitTable(sampleFitResult(), cfg, fmtFloat, sciFmt, time.Second, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "f_nickel")
	assert.Contains(t, out, "mej")
	assert.Contains(t, out, "Acceptance")
	assert.Contains(t, out, "2 posterior draws")
	assert.Contains(t, out, "Runs backend: sqlite")
}

func TestWriteParquetFitResult(t *testing.T) {
	var buf bytes.Buffer
	err := writeParquetFitResult(&buf, sampleFitResult())
	require.NoError(t, err)
	assert.NotEmpty(t, buf.Bytes())
}

func TestWriteSamplesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.parquet")
	err := WriteSamples(path, sampleFitResult())
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestWriteSamplesRequiresPath(t *testing.T) {
	err := WriteSamples("", sampleFitResult())
	assert.Error(t, err)
}

func sampleEvalResult() *schema.EvalResult {
	return &schema.EvalResult{
		Model:  "arnett",
		Unit:   schema.LuminosityUnit,
		Params: map[string]float64{"mej": 3.0, "f_nickel": 0.2},
		Time:   []float64{1, 10, 100},
		Values: []float64{1e42, 5e42, 1e41},
	}
}

func TestWriteCSVEvalResult(t *testing.T) {
	_, sciFmt := createFormatters(4)

	var buf bytes.Buffer
	err := writeCSVEvalResult(&buf, sampleEvalResult(), sciFmt)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4) // header + 3 points
	assert.Equal(t, "time,luminosity", lines[0])
	assert.Contains(t, lines[1], "1e+42")
}

func TestWriteJSONEvalResult(t *testing.T) {
	var buf bytes.Buffer
	err := writeJSONEvalResult(&buf, sampleEvalResult())
	require.NoError(t, err)

	var result map[string]any
	err = json.Unmarshal(buf.Bytes(), &result)
	require.NoError(t, err)

	assert.Equal(t, "arnett", result["model"])
	assert.Equal(t, "luminosity", result["unit"])
	values, ok := result["values"].([]any)
	require.True(t, ok)
	assert.Len(t, values, 3)
}

func TestWriteEvalTable(t *testing.T) {
	_, sciFmt := createFormatters(4)

	var buf bytes.Buffer
	err := writeEvalTable(sampleEvalResult(), sciFmt, time.Millisecond, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Time (days)")
	assert.Contains(t, out, "Evaluated arnett at 3 points")
	assert.Contains(t, out, "f_nickel=0.2")
}

func TestFormatParamsSorted(t *testing.T) {
	_, sciFmt := createFormatters(4)
	got := formatParams(map[string]float64{"tau": 100, "l0": 1e47, "nn": 3}, sciFmt)
	assert.Equal(t, "l0=1e+47, nn=3, tau=100", got)
}

func TestWriteModelsFormats(t *testing.T) {
	list := models.All()
	require.NotEmpty(t, list)

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		err := writeCSVModels(&buf, list)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, len(list)+1)
		assert.Contains(t, lines[0], "name")
		assert.Contains(t, buf.String(), "arnett")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		err := writeJSONModels(&buf, list)
		require.NoError(t, err)

		var result []map[string]any
		err = json.Unmarshal(buf.Bytes(), &result)
		require.NoError(t, err)
		assert.Len(t, result, len(list))
	})

	t.Run("table", func(t *testing.T) {
		cfg := &contract.Config{Width: 120}

		var buf bytes.Buffer
		err := writeModelsTable(list, cfg, &buf)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "arnett")
		assert.Contains(t, buf.String(), "Showing")
	})

	t.Run("parquet rejected", func(t *testing.T) {
		cfg := &contract.Config{Output: schema.ParquetOut}
		err := WriteModels(list, cfg)
		assert.Error(t, err)
	})
}

func TestGetMaxTableDescWidth(t *testing.T) {
	tests := []struct {
		name  string
		width int
		want  int
	}{
		{"narrow terminal clamps to minimum", 50, 15},
		{"wide terminal clamps to maximum", 200, 70},
		{"medium terminal uses available space", 100, 55},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &contract.Config{Width: tc.width}
			assert.Equal(t, tc.want, getMaxTableDescWidth(cfg))
		})
	}
}

func TestCreateFormatters(t *testing.T) {
	fmtFloat, sciFmt := createFormatters(2)
	assert.Equal(t, "3.14", fmtFloat(3.14159))
	assert.Equal(t, "3.1e+42", sciFmt(3.14159e42))
}
