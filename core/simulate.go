package core

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pulsegrid/afterglow/internal/contract"
	"github.com/pulsegrid/afterglow/schema"
)

// ExecuteSimulate evaluates a model over a grid, perturbs it with Gaussian
// noise and writes a processed-format CSV that round-trips through the
// data loader. It serves as the main entry point for the 'simulate' command.
func ExecuteSimulate(ctx context.Context, cfg *contract.Config) error {
	result, err := evaluateOnGrid(ctx, cfg)
	if err != nil {
		return err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	noise := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(seed)}

	values := make([]float64, len(result.Values))
	errs := make([]float64, len(result.Values))
	for i, v := range result.Values {
		sigma := cfg.Noise * math.Abs(v)
		if result.Unit == schema.MagnitudeUnit {
			// Magnitudes are logarithmic already; noise is absolute.
			sigma = cfg.Noise
		}
		values[i] = v
		errs[i] = sigma
		if sigma > 0 {
			values[i] += sigma * noise.Rand()
		}
	}

	f, err := contract.SelectOutputFile(cfg.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return writeSimulatedCSV(f.Name(), f, result.Time, values, errs, cfg)
}

// writeSimulatedCSV emits the processed-file column layout for the
// configured unit, so simulated data loads like catalog data.
func writeSimulatedCSV(name string, out io.Writer, t, y, yErr []float64, cfg *contract.Config) error {
	w := csv.NewWriter(out)

	var header []string
	band := ""
	if len(cfg.Bands) == 1 {
		band = cfg.Bands[0]
	}
	switch cfg.Unit {
	case schema.LuminosityUnit:
		header = []string{"time (days)", "luminosity(1e50erg/s)", "luminosity_error"}
	case schema.FluxUnit:
		header = []string{"time (days)", "flux(erg/cm2/s)", "flux_error"}
	case schema.FluxDensityUnit:
		header = []string{"time (days)", "flux_density(mjy)", "flux_density_error", "band"}
	case schema.MagnitudeUnit:
		header = []string{"time (days)", "magnitude", "e_magnitude", "band"}
	default:
		return fmt.Errorf("cannot simulate %s data", cfg.Unit)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	fmtFloat := func(v float64) string {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	for i := range t {
		yi, ei := y[i], yErr[i]
		if cfg.Unit == schema.LuminosityUnit {
			// The luminosity column is stored in units of 1e50 erg/s.
			yi /= 1e50
			ei /= 1e50
		}
		row := []string{fmtFloat(t[i]), fmtFloat(yi), fmtFloat(ei)}
		if len(header) == 4 {
			row = append(row, band)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
