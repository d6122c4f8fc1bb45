package core

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsegrid/afterglow/internal/contract"
	"github.com/pulsegrid/afterglow/schema"
)

func TestWriteSimulatedCSVLuminosityRoundTrip(t *testing.T) {
	times := []float64{1, 5, 20}
	y := []float64{1.3e50, 8.7e49, 2.1e49}
	yErr := []float64{1.3e48, 8.7e47, 2.1e47}
	cfg := &contract.Config{Unit: schema.LuminosityUnit}

	var buf bytes.Buffer
	require.NoError(t, writeSimulatedCSV("out.csv", &buf, times, y, yErr, cfg))

	got, err := schema.ReadTransientCSV(bytes.NewReader(buf.Bytes()), "sim", schema.LuminosityMode)
	require.NoError(t, err)
	require.Len(t, got.Time, 3)
	for i := range times {
		assert.Equal(t, times[i], got.Time[i])
		assert.InEpsilon(t, y[i], got.Luminosity[i], 1e-12)
		assert.InEpsilon(t, yErr[i], got.LuminosityErr[i], 1e-12)
	}
}

func TestWriteSimulatedCSVMagnitudeBandColumn(t *testing.T) {
	times := []float64{1, 2}
	y := []float64{21.3, 22.1}
	yErr := []float64{0.05, 0.05}
	cfg := &contract.Config{Unit: schema.MagnitudeUnit, Bands: []string{"r"}}

	var buf bytes.Buffer
	require.NoError(t, writeSimulatedCSV("out.csv", &buf, times, y, yErr, cfg))
	assert.Contains(t, buf.String(), "e_magnitude")

	got, err := schema.ReadTransientCSV(bytes.NewReader(buf.Bytes()), "sim", schema.MagnitudeMode)
	require.NoError(t, err)
	require.Len(t, got.Magnitude, 2)
	assert.Equal(t, []string{"r", "r"}, got.Bands)
	assert.InEpsilon(t, 21.3, got.Magnitude[0], 1e-12)
}

func TestWriteSimulatedCSVUnsupportedUnit(t *testing.T) {
	cfg := &contract.Config{Unit: schema.OutputUnit("counts")}
	var buf bytes.Buffer
	err := writeSimulatedCSV("out.csv", &buf, []float64{1}, []float64{1}, []float64{1}, cfg)
	assert.ErrorContains(t, err, "cannot simulate")
}

func TestExecuteSimulateZeroNoiseMatchesModel(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "sim.csv")
	cfg := &contract.Config{
		Model:      "arnett",
		Unit:       schema.LuminosityUnit,
		EvalParams: map[string]float64{"mej": 2.0, "f_nickel": 0.1},
		Redshift:   math.NaN(),
		TimeStart:  1.0,
		TimeEnd:    50.0,
		TimePoints: 25,
		Noise:      0,
		Seed:       7,
		OutputFile: outPath,
	}

	require.NoError(t, ExecuteSimulate(context.Background(), cfg))

	want, err := evaluateOnGrid(context.Background(), cfg)
	require.NoError(t, err)

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	got, err := schema.ReadTransientCSV(f, "sim", schema.LuminosityMode)
	require.NoError(t, err)

	require.Len(t, got.Time, 25)
	for i := range want.Time {
		assert.Equal(t, want.Time[i], got.Time[i])
		assert.InEpsilon(t, want.Values[i], got.Luminosity[i], 1e-12)
		assert.Zero(t, got.LuminosityErr[i])
	}
}

func TestExecuteSimulateNoiseScalesErrors(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "sim.csv")
	cfg := &contract.Config{
		Model:      "arnett",
		Unit:       schema.LuminosityUnit,
		EvalParams: map[string]float64{"mej": 2.0, "f_nickel": 0.1},
		Redshift:   math.NaN(),
		TimeStart:  1.0,
		TimeEnd:    50.0,
		TimePoints: 10,
		Noise:      0.1,
		Seed:       7,
		OutputFile: outPath,
	}

	require.NoError(t, ExecuteSimulate(context.Background(), cfg))

	want, err := evaluateOnGrid(context.Background(), cfg)
	require.NoError(t, err)

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	got, err := schema.ReadTransientCSV(f, "sim", schema.LuminosityMode)
	require.NoError(t, err)

	for i := range want.Values {
		assert.InEpsilon(t, 0.1*math.Abs(want.Values[i]), got.LuminosityErr[i], 1e-12)
		// Perturbed values stay within a few sigma of the model.
		assert.InDelta(t, want.Values[i], got.Luminosity[i], 6*got.LuminosityErr[i])
	}
}
