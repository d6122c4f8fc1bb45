// Package core has core logic for model evaluation, likelihoods and fitting.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/pulsegrid/afterglow/core/models"
	"github.com/pulsegrid/afterglow/internal/contract"
	"github.com/pulsegrid/afterglow/internal/outwriter"
	"github.com/pulsegrid/afterglow/schema"
)

// ExecutorFunc defines the function signature for executing different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config) error

// ExecuteFit runs a full Bayesian fit and prints the posterior summary.
// It serves as the main entry point for the 'fit' command.
func ExecuteFit(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()

	fp, err := prepareFit(cfg, mgr)
	if err != nil {
		return err
	}

	var runStore contract.RunStore
	if mgr != nil {
		runStore = mgr.GetRunStore()
	}
	var runID int64 = -1
	if runStore != nil {
		runID, err = runStore.BeginRun(start, map[string]any{
			"transient":  fp.transient.Name,
			"model":      cfg.Model,
			"likelihood": string(cfg.Likelihood),
			"data_mode":  string(cfg.DataMode),
			"walkers":    cfg.Walkers,
			"steps":      cfg.Steps,
			"burn":       cfg.Burn,
			"thin":       cfg.Thin,
		})
		if err != nil {
			contract.LogWarn("run store", err)
			runID = -1
		}
	}

	result, err := runFit(ctx, cfg, fp)
	if err != nil {
		return err
	}

	if runStore != nil && runID >= 0 {
		if err := runStore.EndRun(runID, time.Now(), result); err != nil {
			contract.LogWarn("run store", err)
		} else if err := runStore.RecordParams(runID, result.Params); err != nil {
			contract.LogWarn("run store", err)
		}
	}

	if cfg.SamplesFile != "" {
		if err := outwriter.WriteSamples(cfg.SamplesFile, result); err != nil {
			return fmt.Errorf("failed to export posterior samples: %w", err)
		}
	}

	duration := time.Since(start)
	return outwriter.WriteFitResult(result, cfg, duration)
}

// ExecuteEvaluate evaluates a named model over a time grid and prints the
// curve. It serves as the main entry point for the 'evaluate' command.
func ExecuteEvaluate(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	result, err := evaluateOnGrid(ctx, cfg)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.WriteEvalResult(result, cfg, duration)
}

// ExecuteModels lists the registered models with their parameters.
func ExecuteModels(_ context.Context, cfg *contract.Config) error {
	return outwriter.WriteModels(models.All(), cfg)
}

// GetFitResults runs a fit and returns the posterior summary without
// printing or run tracking. This is the entry point for MCP tools.
func GetFitResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*schema.FitResult, error) {
	fp, err := prepareFit(cfg, mgr)
	if err != nil {
		return nil, err
	}
	return runFit(ctx, cfg, fp)
}

// GetEvalResults evaluates a model over the configured grid and returns the
// curve. This is the entry point for MCP tools.
func GetEvalResults(ctx context.Context, cfg *contract.Config) (*schema.EvalResult, error) {
	return evaluateOnGrid(ctx, cfg)
}

// evaluateOnGrid resolves the model, parameters and request, then runs one
// evaluation over the configured grid.
func evaluateOnGrid(ctx context.Context, cfg *contract.Config) (*schema.EvalResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	model, err := models.Get(cfg.Model)
	if err != nil {
		return nil, err
	}
	if !model.SupportsUnit(cfg.Unit) {
		return nil, fmt.Errorf("model %s does not support %s output", model.Name, cfg.Unit)
	}

	params := model.DefaultParams()
	for name, v := range cfg.EvalParams {
		if _, ok := params[name]; !ok {
			return nil, fmt.Errorf("model %s has no parameter %q", model.Name, name)
		}
		params[name] = v
	}

	req := models.Request{Unit: cfg.Unit, Redshift: cfg.Redshift}
	if cfg.Unit == schema.FluxDensityUnit || cfg.Unit == schema.MagnitudeUnit {
		if len(cfg.Bands) != 1 {
			return nil, fmt.Errorf("%s output needs exactly one --bands entry, got %d", cfg.Unit, len(cfg.Bands))
		}
		nu, err := schema.BandToFrequency(cfg.Bands[0])
		if err != nil {
			return nil, err
		}
		req.Frequencies = []float64{nu}
	}

	grid := make([]float64, cfg.TimePoints)
	for i := range grid {
		grid[i] = cfg.TimeStart + (cfg.TimeEnd-cfg.TimeStart)*float64(i)/float64(cfg.TimePoints-1)
	}

	values, err := model.Evaluate(grid, params, req)
	if err != nil {
		return nil, err
	}
	return &schema.EvalResult{
		Model:  model.Name,
		Unit:   cfg.Unit,
		Params: params,
		Time:   grid,
		Values: values,
	}, nil
}
