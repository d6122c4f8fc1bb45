package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `time (days),time,magnitude,e_magnitude,band,flux_density(mjy),flux_density_error,detected
1.0,58000.0,20.1,0.1,g,0.50,0.05,1
2.0,58001.0,20.5,0.1,r,0.40,0.04,1
3.0,58002.0,21.8,0.3,g,0.12,0.06,0
`

func TestReadTransientCSV(t *testing.T) {
	t.Run("magnitude mode", func(t *testing.T) {
		tr, err := ReadTransientCSV(strings.NewReader(sampleCSV), "ZTF20abc", MagnitudeMode)
		require.NoError(t, err)

		assert.Equal(t, []float64{1, 2, 3}, tr.Time)
		assert.Equal(t, []float64{58000, 58001, 58002}, tr.TimeMJD)
		assert.Equal(t, []string{"g", "r", "g"}, tr.Bands)
		assert.Equal(t, []bool{true, true, false}, tr.Detected)
		require.Len(t, tr.Frequencies, 3)
		assert.InDelta(t, tr.Frequencies[0], tr.Frequencies[2], 1e6)
	})

	t.Run("flux density mode", func(t *testing.T) {
		tr, err := ReadTransientCSV(strings.NewReader(sampleCSV), "ZTF20abc", FluxDensityMode)
		require.NoError(t, err)
		assert.Equal(t, []float64{0.5, 0.4, 0.12}, tr.FluxDensity)
		assert.Equal(t, []float64{0.05, 0.04, 0.06}, tr.FluxDensityErr)
	})

	t.Run("missing mode column", func(t *testing.T) {
		_, err := ReadTransientCSV(strings.NewReader(sampleCSV), "ZTF20abc", LuminosityMode)
		assert.Error(t, err)
	})

	t.Run("bad value", func(t *testing.T) {
		bad := "time (days),magnitude,e_magnitude\noops,20,0.1\n"
		_, err := ReadTransientCSV(strings.NewReader(bad), "x", MagnitudeMode)
		assert.Error(t, err)
	})
}

func TestBandToFrequency(t *testing.T) {
	f, err := BandToFrequency("g")
	require.NoError(t, err)
	assert.InDelta(t, 6.16e14, f, 1e13)

	// Numeric labels pass through as frequencies.
	f, err = BandToFrequency("1.4e9")
	require.NoError(t, err)
	assert.Equal(t, 1.4e9, f)

	_, err = BandToFrequency("w")
	assert.Error(t, err)
}
