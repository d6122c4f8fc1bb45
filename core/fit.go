package core

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/rand"

	"github.com/pulsegrid/afterglow/core/models"
	"github.com/pulsegrid/afterglow/core/prior"
	"github.com/pulsegrid/afterglow/internal/contract"
	"github.com/pulsegrid/afterglow/schema"
)

// maxInitTries bounds the rejection sampling used to place walkers at
// finite posterior density.
const maxInitTries = 10000

// fitProblem bundles everything a fit needs once the data, model, priors
// and likelihood have been resolved and cross-checked.
type fitProblem struct {
	transient *schema.Transient
	data      *schema.FilteredData
	model     *models.Model
	priors    *prior.Set
	req       models.Request
	logLike   logLikeFunc
}

// unitForMode maps the transient's data mode to the model output unit the
// likelihood compares against.
func unitForMode(mode schema.DataMode) (schema.OutputUnit, error) {
	switch mode {
	case schema.LuminosityMode:
		return schema.LuminosityUnit, nil
	case schema.FluxMode:
		return schema.FluxUnit, nil
	case schema.FluxDensityMode:
		return schema.FluxDensityUnit, nil
	case schema.MagnitudeMode:
		return schema.MagnitudeUnit, nil
	default:
		return "", fmt.Errorf("fitting %s data is not supported", mode)
	}
}

// resolvePriors loads the prior file or falls back to the model defaults,
// then checks the set covers the model's parameters exactly before the
// likelihood hyper-priors are appended.
func resolvePriors(cfg *contract.Config, model *models.Model, data *schema.FilteredData) (*prior.Set, error) {
	var (
		priors *prior.Set
		err    error
	)
	if cfg.PriorFile != "" {
		priors, err = prior.Load(cfg.PriorFile)
	} else {
		priors, err = prior.Defaults(model.Name)
	}
	if err != nil {
		return nil, err
	}

	declared := make(map[string]struct{})
	for _, name := range model.ParamNames() {
		declared[name] = struct{}{}
		if _, ok := priors.Get(name); !ok {
			return nil, fmt.Errorf("prior set is missing model parameter %q", name)
		}
	}
	for _, name := range priors.Names() {
		if _, ok := declared[name]; !ok {
			return nil, fmt.Errorf("prior set has %q, which is not a parameter of model %s", name, model.Name)
		}
	}

	hyper, err := hyperPriors(cfg.Likelihood, data)
	if err != nil {
		return nil, err
	}
	for _, name := range hyper.Names() {
		p, _ := hyper.Get(name)
		priors.Add(name, p)
	}
	return priors, nil
}

// prepareFit resolves the transient, model, priors and likelihood.
func prepareFit(cfg *contract.Config, mgr contract.StoreManager) (*fitProblem, error) {
	transient, err := loadTransient(cfg, mgr)
	if err != nil {
		return nil, err
	}
	transient.SetActiveBands(cfg.Bands)

	data, err := transient.FilteredData()
	if err != nil {
		return nil, err
	}

	model, err := models.Get(cfg.Model)
	if err != nil {
		return nil, err
	}
	unit, err := unitForMode(transient.Mode)
	if err != nil {
		return nil, err
	}
	if !model.SupportsUnit(unit) {
		return nil, fmt.Errorf("model %s cannot produce %s output needed for %s data", model.Name, unit, transient.Mode)
	}

	if transient.HasUpperLimits() && cfg.Likelihood != schema.UpperLimitLikelihood {
		contract.LogWarn("fit setup",
			fmt.Errorf("data contains non-detections but likelihood is %s; limits will be treated as detections", cfg.Likelihood))
	}

	priors, err := resolvePriors(cfg, model, data)
	if err != nil {
		return nil, err
	}

	hyper, err := hyperPriors(cfg.Likelihood, data)
	if err != nil {
		return nil, err
	}
	ev := &evaluator{
		model: model,
		time:  data.Time,
		req: models.Request{
			Unit:        unit,
			Frequencies: data.Frequencies,
			Redshift:    transient.Redshift,
		},
		hyper: hyper.Names(),
	}

	logLike, err := buildLikelihood(cfg.Likelihood, data, ev)
	if err != nil {
		return nil, err
	}

	return &fitProblem{
		transient: transient,
		data:      data,
		model:     model,
		priors:    priors,
		req:       ev.req,
		logLike:   logLike,
	}, nil
}

// logPosterior combines the joint prior with the likelihood over a
// parameter vector in prior-set order.
func (fp *fitProblem) logPosterior(x []float64) float64 {
	lp := fp.priors.LnProbVector(x)
	if math.IsInf(lp, -1) {
		return lp
	}
	return lp + fp.logLike(fp.priors.ToParams(x))
}

// initWalkers draws walker start positions from the prior, rejecting
// points with non-finite posterior density.
func (fp *fitProblem) initWalkers(walkers int, rng *rand.Rand) ([][]float64, error) {
	init := make([][]float64, 0, walkers)
	for tries := 0; len(init) < walkers; tries++ {
		if tries > maxInitTries {
			return nil, fmt.Errorf("could not find %d prior draws with finite posterior after %d tries", walkers, tries)
		}
		x := fp.priors.SampleVector(rng)
		if !math.IsInf(fp.logPosterior(x), -1) {
			init = append(init, x)
		}
	}
	return init, nil
}

// runFit samples the posterior and reduces the chain to a FitResult.
func runFit(ctx context.Context, cfg *contract.Config, fp *fitProblem) (*schema.FitResult, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewSource(seed))

	init, err := fp.initWalkers(cfg.Walkers, rng)
	if err != nil {
		return nil, err
	}

	ens, err := newEnsemble(fp.logPosterior, init, seed)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ch, err := ens.run(ctx, samplerConfig{
		Walkers: cfg.Walkers,
		Steps:   cfg.Steps,
		Burn:    cfg.Burn,
		Thin:    cfg.Thin,
		Seed:    seed,
		Workers: cfg.Workers,
	})
	if err != nil {
		return nil, err
	}

	result := &schema.FitResult{
		Transient:  fp.transient.Name,
		Model:      fp.model.Name,
		Likelihood: cfg.Likelihood,
		DataMode:   fp.transient.Mode,
		Points:     len(fp.data.Time),
		Walkers:    cfg.Walkers,
		Steps:      cfg.Steps,
		Burn:       cfg.Burn,
		Thin:       cfg.Thin,
		Seed:       seed,
		Acceptance: ch.Acceptance,
		MaxLogLike: ch.MaxLogProb,
		Params:     summarizeChain(ch, fp.priors),
		Samples:    ch.Samples,
		StartedAt:  start,
		Duration:   time.Since(start),
	}

	if cfg.PredictiveDraws > 0 {
		if err := fp.addPredictive(result, cfg, rng); err != nil {
			contract.LogWarn("posterior predictive", err)
		}
	}
	return result, nil
}

// addPredictive evaluates the model at random posterior draws over a dense
// grid spanning the data.
func (fp *fitProblem) addPredictive(result *schema.FitResult, cfg *contract.Config, rng *rand.Rand) error {
	tMin, tMax := fp.data.Time[0], fp.data.Time[0]
	for _, t := range fp.data.Time {
		tMin = math.Min(tMin, t)
		tMax = math.Max(tMax, t)
	}
	points := cfg.PredictivePoints
	grid := make([]float64, points)
	for i := range grid {
		grid[i] = tMin + (tMax-tMin)*float64(i)/float64(points-1)
	}

	// For band data, predict at the bluest active frequency.
	req := fp.req
	if len(req.Frequencies) > 1 {
		nu := req.Frequencies[0]
		for _, f := range req.Frequencies {
			nu = math.Max(nu, f)
		}
		req.Frequencies = []float64{nu}
	}

	hyper := map[string]struct{}{sysNoiseParam: {}, studentTParam: {}}
	curves := make([][]float64, 0, cfg.PredictiveDraws)
	for d := 0; d < cfg.PredictiveDraws; d++ {
		draw := result.Samples[rng.Intn(len(result.Samples))]
		params := fp.priors.ToParams(draw)
		p := make(models.Params, len(params))
		for k, v := range params {
			if _, skip := hyper[k]; skip {
				continue
			}
			p[k] = v
		}
		curve, err := fp.model.Evaluate(grid, p, req)
		if err != nil {
			return fmt.Errorf("draw %d: %w", d, err)
		}
		curves = append(curves, curve)
	}
	result.PredictiveTime = grid
	result.Predictive = curves
	return nil
}
