package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewTransientValidation covers array-length and data-mode validation.
func TestNewTransientValidation(t *testing.T) {
	tests := []struct {
		name    string
		mode    DataMode
		in      *Transient
		wantErr bool
	}{
		{
			name: "valid flux density",
			mode: FluxDensityMode,
			in: &Transient{
				Time:           []float64{1, 2, 3},
				FluxDensity:    []float64{10, 8, 6},
				FluxDensityErr: []float64{1, 1, 1},
			},
			wantErr: false,
		},
		{
			name: "mismatched lengths",
			mode: FluxDensityMode,
			in: &Transient{
				Time:           []float64{1, 2, 3},
				FluxDensity:    []float64{10, 8},
				FluxDensityErr: []float64{1, 1},
			},
			wantErr: true,
		},
		{
			name:    "unknown mode",
			mode:    DataMode("bogus"),
			in:      &Transient{Time: []float64{1}, Flux: []float64{1}},
			wantErr: true,
		},
		{
			name: "missing mode data",
			mode: MagnitudeMode,
			in: &Transient{
				Time: []float64{1, 2},
				Flux: []float64{3, 4},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTransient("test", tt.mode, tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestBandFrequencyPairing checks the three pairing cases from the
// original container semantics.
func TestBandFrequencyPairing(t *testing.T) {
	t.Run("bands only are converted", func(t *testing.T) {
		tr, err := NewTransient("t", MagnitudeMode, &Transient{
			Time:         []float64{1, 2},
			Magnitude:    []float64{20, 21},
			MagnitudeErr: []float64{0.1, 0.1},
			Bands:        []string{"g", "r"},
		})
		require.NoError(t, err)
		require.Len(t, tr.Frequencies, 2)
		assert.Greater(t, tr.Frequencies[0], tr.Frequencies[1]) // g is bluer than r
	})

	t.Run("frequencies only double as bands", func(t *testing.T) {
		tr, err := NewTransient("t", FluxDensityMode, &Transient{
			Time:           []float64{1},
			FluxDensity:    []float64{5},
			FluxDensityErr: []float64{0.5},
			Frequencies:    []float64{5e14},
		})
		require.NoError(t, err)
		assert.Len(t, tr.Bands, 1)
	})

	t.Run("unknown band is an error", func(t *testing.T) {
		_, err := NewTransient("t", MagnitudeMode, &Transient{
			Time:         []float64{1},
			Magnitude:    []float64{20},
			MagnitudeErr: []float64{0.1},
			Bands:        []string{"notaband"},
		})
		assert.Error(t, err)
	})
}

// TestActiveBandFiltering exercises the filtered fitting view.
func TestActiveBandFiltering(t *testing.T) {
	tr, err := NewTransient("t", MagnitudeMode, &Transient{
		Time:         []float64{1, 2, 3, 4},
		Magnitude:    []float64{20, 21, 20.5, 21.5},
		MagnitudeErr: []float64{0.1, 0.1, 0.2, 0.2},
		Bands:        []string{"g", "r", "g", "r"},
		Detected:     []bool{true, true, false, true},
	})
	require.NoError(t, err)

	tr.SetActiveBands([]string{"g"})
	fd, err := tr.FilteredData()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3}, fd.Time)
	assert.Equal(t, []float64{20, 20.5}, fd.Y)
	assert.Equal(t, []bool{true, false}, fd.Detected)

	tr.SetActiveBands([]string{"all"})
	fd, err = tr.FilteredData()
	require.NoError(t, err)
	assert.Len(t, fd.Time, 4)

	tr.SetActiveBands([]string{"z"})
	_, err = tr.FilteredData()
	assert.Error(t, err)
}

// TestBinTTEs verifies time-tagged events are binned into Poisson counts.
func TestBinTTEs(t *testing.T) {
	tr, err := NewTransient("grb", TTEMode, &Transient{})
	require.NoError(t, err)

	events := []float64{0.1, 0.2, 0.3, 1.1, 1.2, 2.5}
	require.NoError(t, tr.BinTTEs(events, 1.0))

	assert.Equal(t, CountsMode, tr.Mode)
	require.Len(t, tr.Counts, 3)
	assert.Equal(t, 3.0, tr.Counts[0])
	assert.Equal(t, 2.0, tr.Counts[1])
	assert.Equal(t, 1.0, tr.Counts[2])
	assert.InDelta(t, 1.0, tr.CountsErr[2], 1e-12)

	assert.Error(t, tr.BinTTEs(events, 1.0)) // no longer in tte mode
}

// TestHasUpperLimits checks detection-flag handling.
func TestHasUpperLimits(t *testing.T) {
	tr := &Transient{Detected: []bool{true, true}}
	assert.False(t, tr.HasUpperLimits())
	tr.Detected[1] = false
	assert.True(t, tr.HasUpperLimits())
}
