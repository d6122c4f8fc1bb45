package core

import (
	"context"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/pulsegrid/afterglow/internal/contract"
)

// ExecuteInspect loads a transient data file and prints a short summary of
// its contents. It serves as the main entry point for the 'data inspect'
// command.
func ExecuteInspect(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	transient, err := loadTransient(cfg, mgr)
	if err != nil {
		return err
	}
	transient.SetActiveBands(cfg.Bands)

	data, err := transient.FilteredData()
	if err != nil {
		return err
	}

	limits := 0
	for _, d := range data.Detected {
		if !d {
			limits++
		}
	}

	fmt.Printf("Transient: %s\n", transient.Name)
	fmt.Printf("Type: %s\n", transient.Type)
	fmt.Printf("Data mode: %s\n", transient.Mode)
	fmt.Printf("Points: %d (%d upper limits)\n", len(data.Time), limits)
	fmt.Printf("Time range: %.4g to %.4g days\n", floats.Min(data.Time), floats.Max(data.Time))
	if bands := transient.UniqueBands(); len(bands) > 0 {
		fmt.Printf("Bands: %s\n", strings.Join(bands, ", "))
		if active := transient.ActiveBands(); len(active) > 0 && len(active) < len(bands) {
			fmt.Printf("Active bands: %s\n", strings.Join(active, ", "))
		}
	}
	if !math.IsNaN(transient.Redshift) {
		fmt.Printf("Redshift: %g\n", transient.Redshift)
	}
	return nil
}
