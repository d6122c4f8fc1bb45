package schema

import (
	"fmt"
	"strconv"
)

// speedOfLightAngstrom converts effective wavelengths to frequencies.
const speedOfLightAngstrom = 2.99792458e18 // Angstrom/s

// bandWavelengths maps common filter names to effective wavelengths in
// Angstrom. Covers Sloan ugriz, Johnson UBVRI, 2MASS JHK, Swift/UVOT and
// the ZTF survey filters.
var bandWavelengths = map[string]float64{
	"u": 3561.8, "g": 4866.5, "r": 6214.6, "i": 7687.0, "z": 8918.3, "y": 9600.0,
	"U": 3663.0, "B": 4361.0, "V": 5448.0, "R": 6407.0, "I": 7980.0,
	"J": 12350.0, "H": 16620.0, "K": 21590.0,
	"uvot::uvw2": 2085.7, "uvot::uvm2": 2245.8, "uvot::uvw1": 2684.1,
	"uvot::u": 3520.9, "uvot::b": 4346.3, "uvot::v": 5411.4,
	"ztfg": 4813.9, "ztfr": 6421.8, "ztfi": 7883.0,
}

// BandToFrequency converts a single band label to an effective frequency
// in Hz. Purely numeric labels are interpreted as frequencies directly,
// matching the original behavior where frequencies double as band names.
func BandToFrequency(band string) (float64, error) {
	if wl, ok := bandWavelengths[band]; ok {
		return speedOfLightAngstrom / wl, nil
	}
	if f, err := strconv.ParseFloat(band, 64); err == nil && f > 0 {
		return f, nil
	}
	return 0, fmt.Errorf("unknown band %q", band)
}

// BandsToFrequency converts band labels to effective frequencies in Hz.
func BandsToFrequency(bands []string) ([]float64, error) {
	out := make([]float64, len(bands))
	for i, b := range bands {
		f, err := BandToFrequency(b)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// KnownBands returns the number of filters in the built-in table.
func KnownBands() int {
	return len(bandWavelengths)
}
