package schema

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Column names follow the processed-file layout used by transient catalogs.
const (
	colTimeDays    = "time (days)"
	colTimeMJD     = "time"
	colMagnitude   = "magnitude"
	colMagErr      = "e_magnitude"
	colBand        = "band"
	colSystem      = "system"
	colFlux        = "flux(erg/cm2/s)"
	colFluxErr     = "flux_error"
	colFluxDensity = "flux_density(mjy)"
	colFluxDensErr = "flux_density_error"
	colLuminosity  = "luminosity(1e50erg/s)"
	colLumErr      = "luminosity_error"
	colDetected    = "detected"
)

// LoadTransientCSV reads a processed light-curve CSV and builds a
// transient in the requested data mode. Columns not required by the mode
// are optional; rows with unparsable required values are an error.
func LoadTransientCSV(path, name string, mode DataMode) (*Transient, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadTransientCSV(f, name, mode)
}

// ReadTransientCSV parses processed light-curve CSV content from r.
func ReadTransientCSV(r io.Reader, name string, mode DataMode) (*Transient, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}

	t := &Transient{Redshift: math.NaN(), PhotonIndex: math.NaN()}

	getFloat := func(row []string, col string) (float64, bool, error) {
		idx, ok := cols[col]
		if !ok || idx >= len(row) {
			return 0, false, nil
		}
		s := strings.TrimSpace(row[idx])
		if s == "" {
			return 0, false, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false, fmt.Errorf("bad value %q in column %q: %w", s, col, err)
		}
		return v, true, nil
	}

	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", line, err)
		}
		line++

		td, ok, err := getFloat(row, colTimeDays)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Fall back to the MJD column when "time (days)" is absent.
			td, ok, err = getFloat(row, colTimeMJD)
			if err != nil || !ok {
				return nil, fmt.Errorf("row %d has no usable time column", line)
			}
		}
		t.Time = append(t.Time, td)

		if mjd, ok, err := getFloat(row, colTimeMJD); err != nil {
			return nil, err
		} else if ok {
			t.TimeMJD = append(t.TimeMJD, mjd)
		}

		appendPair := func(col, errCol string, y *[]float64, yErr *[]float64) error {
			v, ok, err := getFloat(row, col)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			*y = append(*y, v)
			e, ok, err := getFloat(row, errCol)
			if err != nil {
				return err
			}
			if ok {
				*yErr = append(*yErr, e)
			}
			return nil
		}

		if err := appendPair(colMagnitude, colMagErr, &t.Magnitude, &t.MagnitudeErr); err != nil {
			return nil, err
		}
		if err := appendPair(colFlux, colFluxErr, &t.Flux, &t.FluxErr); err != nil {
			return nil, err
		}
		if err := appendPair(colFluxDensity, colFluxDensErr, &t.FluxDensity, &t.FluxDensityErr); err != nil {
			return nil, err
		}
		if err := appendPair(colLuminosity, colLumErr, &t.Luminosity, &t.LuminosityErr); err != nil {
			return nil, err
		}

		if idx, ok := cols[colBand]; ok && idx < len(row) {
			t.Bands = append(t.Bands, strings.TrimSpace(row[idx]))
		}
		if d, ok, err := getFloat(row, colDetected); err != nil {
			return nil, err
		} else if ok {
			t.Detected = append(t.Detected, d != 0)
		}
	}

	// The luminosity column is stored in units of 1e50 erg/s; everything
	// downstream works in erg/s.
	for i := range t.Luminosity {
		t.Luminosity[i] *= 1e50
	}
	for i := range t.LuminosityErr {
		t.LuminosityErr[i] *= 1e50
	}

	return NewTransient(name, mode, t)
}
