package schema

import (
	"fmt"
	"math"
	"sort"
)

// Transient holds the observational data and metadata for a single
// astrophysical transient. Only the arrays matching the active data mode
// need to be populated; every populated per-point array must have the
// same length as Time.
type Transient struct {
	Name string        // Transient name, e.g. "SN2011kl"
	Type TransientType // Astrophysical class
	Mode DataMode      // Active data mode

	Time    []float64 // Days since explosion (observer frame, or rest frame for luminosity data)
	TimeErr []float64 // Symmetric time uncertainties (optional)
	TimeMJD []float64 // Times in MJD, used by phase models (optional)

	Luminosity     []float64 // erg/s
	LuminosityErr  []float64
	Flux           []float64 // erg/cm^2/s
	FluxErr        []float64
	FluxDensity    []float64 // mJy
	FluxDensityErr []float64
	Magnitude      []float64 // AB magnitudes
	MagnitudeErr   []float64
	Counts         []float64
	CountsErr      []float64

	Bands       []string  // Per-point band labels (optional)
	Frequencies []float64 // Per-point effective frequencies in Hz (optional)
	Detected    []bool    // Per-point detection flags; false marks an upper limit

	Redshift    float64 // NaN when unknown
	PhotonIndex float64 // NaN when unknown

	activeBands map[string]struct{} // nil means all bands active
}

// NewTransient builds a transient and validates array lengths and the
// band/frequency pairing. It follows the original pairing rule: if only
// frequencies are given they double as band labels; if only bands are
// given they are converted through the band table.
func NewTransient(name string, mode DataMode, t *Transient) (*Transient, error) {
	if t == nil {
		t = &Transient{}
	}
	t.Name = name
	if _, ok := ValidDataModes[mode]; !ok {
		return nil, fmt.Errorf("unknown data mode %q, must be one of %v", mode, AllDataModes)
	}
	t.Mode = mode
	if t.Type == "" {
		t.Type = GenericType
	}
	if math.IsNaN(t.Redshift) || t.Redshift == 0 {
		// Zero is not a meaningful redshift for an extragalactic transient;
		// treat it as unknown.
		if t.Redshift == 0 {
			t.Redshift = math.NaN()
		}
	}

	if t.Mode == TTEMode {
		return t, nil // binned later via BinTTEs
	}

	if len(t.Time) == 0 {
		return nil, fmt.Errorf("transient %q has no time samples", name)
	}
	n := len(t.Time)
	for _, pair := range []struct {
		label string
		arr   int
	}{
		{"time_err", len(t.TimeErr)},
		{"time_mjd", len(t.TimeMJD)},
		{"luminosity", len(t.Luminosity)},
		{"luminosity_err", len(t.LuminosityErr)},
		{"flux", len(t.Flux)},
		{"flux_err", len(t.FluxErr)},
		{"flux_density", len(t.FluxDensity)},
		{"flux_density_err", len(t.FluxDensityErr)},
		{"magnitude", len(t.Magnitude)},
		{"magnitude_err", len(t.MagnitudeErr)},
		{"counts", len(t.Counts)},
		{"bands", len(t.Bands)},
		{"frequency", len(t.Frequencies)},
		{"detected", len(t.Detected)},
	} {
		if pair.arr != 0 && pair.arr != n {
			return nil, fmt.Errorf("transient %q: %s has %d entries, expected %d", name, pair.label, pair.arr, n)
		}
	}

	if y, _ := t.valuesFor(mode); len(y) == 0 {
		return nil, fmt.Errorf("transient %q has no %s data", name, mode)
	}

	// Counts errors are Poisson.
	if mode == CountsMode && len(t.CountsErr) == 0 {
		t.CountsErr = make([]float64, n)
		for i, c := range t.Counts {
			t.CountsErr[i] = math.Sqrt(c)
		}
	}

	if err := t.pairBandsAndFrequencies(); err != nil {
		return nil, err
	}
	return t, nil
}

// pairBandsAndFrequencies keeps bands and frequencies consistent.
func (t *Transient) pairBandsAndFrequencies() error {
	switch {
	case len(t.Bands) == 0 && len(t.Frequencies) == 0:
		return nil
	case len(t.Bands) == 0:
		t.Bands = make([]string, len(t.Frequencies))
		for i, f := range t.Frequencies {
			t.Bands[i] = fmt.Sprintf("%.4g", f)
		}
	case len(t.Frequencies) == 0:
		freqs, err := BandsToFrequency(t.Bands)
		if err != nil {
			return fmt.Errorf("transient %q: %w", t.Name, err)
		}
		t.Frequencies = freqs
	}
	return nil
}

// BinTTEs converts time-tagged event data into binned counts. The input
// events are raw arrival times; binSize is in the same unit.
func (t *Transient) BinTTEs(events []float64, binSize float64) error {
	if t.Mode != TTEMode {
		return fmt.Errorf("transient %q is in %s mode, not ttes", t.Name, t.Mode)
	}
	if len(events) == 0 {
		return fmt.Errorf("transient %q has no events to bin", t.Name)
	}
	if binSize <= 0 {
		return fmt.Errorf("bin size must be positive, got %g", binSize)
	}
	sorted := append([]float64(nil), events...)
	sort.Float64s(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	nbins := int(math.Ceil((hi-lo)/binSize)) + 1

	times := make([]float64, nbins)
	counts := make([]float64, nbins)
	for i := range times {
		times[i] = lo + (float64(i)+0.5)*binSize
	}
	for _, e := range sorted {
		idx := int((e - lo) / binSize)
		if idx >= nbins {
			idx = nbins - 1
		}
		counts[idx]++
	}

	t.Time = times
	t.Counts = counts
	t.CountsErr = make([]float64, nbins)
	for i, c := range counts {
		t.CountsErr[i] = math.Sqrt(c)
	}
	t.Mode = CountsMode
	return nil
}

// SetActiveBands restricts fitting to the listed bands. The keyword "all"
// (or an empty list) activates every unique band in the data.
func (t *Transient) SetActiveBands(bands []string) {
	if len(bands) == 0 || (len(bands) == 1 && bands[0] == "all") {
		t.activeBands = nil
		return
	}
	t.activeBands = make(map[string]struct{}, len(bands))
	for _, b := range bands {
		t.activeBands[b] = struct{}{}
	}
}

// ActiveBands returns the bands currently used for fitting, sorted.
func (t *Transient) ActiveBands() []string {
	if t.activeBands == nil {
		return t.UniqueBands()
	}
	out := make([]string, 0, len(t.activeBands))
	for b := range t.activeBands {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}

// UniqueBands returns all distinct band labels in data order of first appearance.
func (t *Transient) UniqueBands() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, b := range t.Bands {
		if _, ok := seen[b]; !ok {
			seen[b] = struct{}{}
			out = append(out, b)
		}
	}
	return out
}

// filteredIndices returns indices whose band is active. Without band
// labels every point is active.
func (t *Transient) filteredIndices() []int {
	idx := make([]int, 0, len(t.Time))
	for i := range t.Time {
		if t.activeBands != nil && len(t.Bands) > 0 {
			if _, ok := t.activeBands[t.Bands[i]]; !ok {
				continue
			}
		}
		idx = append(idx, i)
	}
	return idx
}

// valuesFor returns the y and yErr arrays backing the given data mode.
func (t *Transient) valuesFor(mode DataMode) ([]float64, []float64) {
	switch mode {
	case LuminosityMode:
		return t.Luminosity, t.LuminosityErr
	case FluxMode:
		return t.Flux, t.FluxErr
	case FluxDensityMode:
		return t.FluxDensity, t.FluxDensityErr
	case MagnitudeMode:
		return t.Magnitude, t.MagnitudeErr
	case CountsMode:
		return t.Counts, t.CountsErr
	default:
		return nil, nil
	}
}

// FilteredData is the per-point view of a transient used by likelihoods:
// only active-band points, with the y arrays chosen by the data mode.
type FilteredData struct {
	Time        []float64
	Y           []float64
	YErr        []float64
	Frequencies []float64 // empty when the data carries no bands
	Bands       []string
	Detected    []bool // nil when the data carries no detection flags
}

// FilteredData returns the active-band view of the transient's data.
// Luminosity and counts data are never band-filtered.
func (t *Transient) FilteredData() (*FilteredData, error) {
	y, yErr := t.valuesFor(t.Mode)
	if len(y) == 0 {
		return nil, fmt.Errorf("transient %q has no %s data", t.Name, t.Mode)
	}
	if len(yErr) == 0 {
		return nil, fmt.Errorf("transient %q has no %s uncertainties", t.Name, t.Mode)
	}

	idx := t.filteredIndices()
	if t.Mode == LuminosityMode || t.Mode == CountsMode {
		idx = idx[:0]
		for i := range t.Time {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return nil, fmt.Errorf("transient %q has no points in the active bands", t.Name)
	}

	fd := &FilteredData{
		Time: make([]float64, len(idx)),
		Y:    make([]float64, len(idx)),
		YErr: make([]float64, len(idx)),
	}
	if len(t.Frequencies) > 0 {
		fd.Frequencies = make([]float64, len(idx))
	}
	if len(t.Bands) > 0 {
		fd.Bands = make([]string, len(idx))
	}
	if len(t.Detected) > 0 {
		fd.Detected = make([]bool, len(idx))
	}
	for j, i := range idx {
		fd.Time[j] = t.Time[i]
		fd.Y[j] = y[i]
		fd.YErr[j] = yErr[i]
		if fd.Frequencies != nil {
			fd.Frequencies[j] = t.Frequencies[i]
		}
		if fd.Bands != nil {
			fd.Bands[j] = t.Bands[i]
		}
		if fd.Detected != nil {
			fd.Detected[j] = t.Detected[i]
		}
	}
	return fd, nil
}

// HasUpperLimits reports whether any point is flagged as a non-detection.
func (t *Transient) HasUpperLimits() bool {
	for _, d := range t.Detected {
		if !d {
			return true
		}
	}
	return false
}
