package core

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/exp/rand"

	"github.com/pulsegrid/afterglow/core/models"
	"github.com/pulsegrid/afterglow/core/prior"
	"github.com/pulsegrid/afterglow/internal/contract"
	"github.com/pulsegrid/afterglow/schema"
)

func TestUnitForMode(t *testing.T) {
	unit, err := unitForMode(schema.MagnitudeMode)
	require.NoError(t, err)
	assert.Equal(t, schema.MagnitudeUnit, unit)

	_, err = unitForMode(schema.TTEMode)
	assert.ErrorContains(t, err, "not supported")
}

func TestResolvePriors(t *testing.T) {
	model, err := models.Get("arnett")
	require.NoError(t, err)
	data := &schema.FilteredData{
		Time: []float64{1, 2},
		Y:    []float64{5, 5},
		YErr: []float64{0.5, 0.5},
	}

	t.Run("defaults cover the model exactly", func(t *testing.T) {
		cfg := &contract.Config{Likelihood: schema.GaussianLikelihood}
		priors, err := resolvePriors(cfg, model, data)
		require.NoError(t, err)
		assert.ElementsMatch(t, model.ParamNames(), priors.Names())
	})

	t.Run("hyper priors are appended last", func(t *testing.T) {
		cfg := &contract.Config{Likelihood: schema.QuadratureLikelihood}
		priors, err := resolvePriors(cfg, model, data)
		require.NoError(t, err)
		names := priors.Names()
		assert.Equal(t, sysNoiseParam, names[len(names)-1])
		assert.Len(t, names, len(model.ParamNames())+1)
	})

	t.Run("prior file missing a parameter", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "priors.yaml")
		content := "f_nickel:\n  type: log_uniform\n  minimum: 0.001\n  maximum: 1\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg := &contract.Config{Likelihood: schema.GaussianLikelihood, PriorFile: path}
		_, err := resolvePriors(cfg, model, data)
		assert.ErrorContains(t, err, "missing model parameter")
	})

	t.Run("prior file with an unknown parameter", func(t *testing.T) {
		defaults, err := prior.Defaults("arnett")
		require.NoError(t, err)
		extra, err := prior.NewUniform(0, 1)
		require.NoError(t, err)
		defaults.Add("bogus", extra)

		path := filepath.Join(t.TempDir(), "priors.yaml")
		f, err := os.Create(path)
		require.NoError(t, err)
		require.NoError(t, defaults.Write(f))
		require.NoError(t, f.Close())

		cfg := &contract.Config{Likelihood: schema.GaussianLikelihood, PriorFile: path}
		_, err = resolvePriors(cfg, model, data)
		assert.ErrorContains(t, err, "not a parameter of model")
	})
}

// flatProblem builds a complete fitProblem for the synthetic flat model, so
// the full sampling path runs without touching the model registry.
func flatProblem(t *testing.T, level float64) *fitProblem {
	t.Helper()
	data := &schema.FilteredData{
		Time: []float64{1, 2, 3, 4, 5, 6, 7, 8},
		Y:    make([]float64, 8),
		YErr: make([]float64, 8),
	}
	offsets := []float64{0.1, -0.2, 0.05, -0.1, 0.15, 0.0, -0.05, 0.1}
	for i := range data.Y {
		data.Y[i] = level + offsets[i]
		data.YErr[i] = 0.25
	}

	model := flatModel()
	priors := prior.NewSet()
	u, err := prior.NewUniform(0, 10)
	require.NoError(t, err)
	priors.Add("level", u)

	ev := &evaluator{model: model, time: data.Time, req: models.Request{Unit: schema.LuminosityUnit}}
	logLike, err := buildLikelihood(schema.GaussianLikelihood, data, ev)
	require.NoError(t, err)

	transient, err := schema.NewTransient("synthetic", schema.LuminosityMode, &schema.Transient{
		Time:          data.Time,
		Luminosity:    data.Y,
		LuminosityErr: data.YErr,
	})
	require.NoError(t, err)

	return &fitProblem{
		transient: transient,
		data:      data,
		model:     model,
		priors:    priors,
		req:       ev.req,
		logLike:   logLike,
	}
}

func TestRunFitRecoversLevel(t *testing.T) {
	fp := flatProblem(t, 5.0)
	cfg := &contract.Config{
		Likelihood: schema.GaussianLikelihood,
		Walkers:    16,
		Steps:      400,
		Burn:       100,
		Thin:       1,
		Seed:       11,
		Workers:    2,
	}

	result, err := runFit(context.Background(), cfg, fp)
	require.NoError(t, err)

	require.Len(t, result.Params, 1)
	p := result.Params[0]
	assert.Equal(t, "level", p.Name)
	assert.InDelta(t, 5.0, p.Median, 0.3)
	assert.Less(t, p.Lower, p.Median)
	assert.Greater(t, p.Upper, p.Median)
	assert.InDelta(t, 5.0, p.MaxLike, 0.3)
	assert.Equal(t, 0.0, p.PriorLower)
	assert.Equal(t, 10.0, p.PriorUpper)

	assert.Equal(t, "synthetic", result.Transient)
	assert.Equal(t, 8, result.Points)
	assert.Equal(t, uint64(11), result.Seed)
	assert.NotEmpty(t, result.Samples)
	assert.False(t, math.IsInf(result.MaxLogLike, 0))
}

func TestRunFitDeterministicPerSeed(t *testing.T) {
	cfg := &contract.Config{
		Likelihood: schema.GaussianLikelihood,
		Walkers:    8,
		Steps:      50,
		Burn:       10,
		Thin:       1,
		Seed:       23,
		Workers:    2,
	}

	a, err := runFit(context.Background(), cfg, flatProblem(t, 5.0))
	require.NoError(t, err)
	b, err := runFit(context.Background(), cfg, flatProblem(t, 5.0))
	require.NoError(t, err)

	assert.Equal(t, a.Params[0].Median, b.Params[0].Median)
	assert.Equal(t, a.Acceptance, b.Acceptance)
	assert.Equal(t, a.MaxLogLike, b.MaxLogLike)
}

func TestRunFitPosteriorPredictive(t *testing.T) {
	fp := flatProblem(t, 5.0)
	cfg := &contract.Config{
		Likelihood:       schema.GaussianLikelihood,
		Walkers:          8,
		Steps:            50,
		Burn:             10,
		Thin:             1,
		Seed:             31,
		Workers:          2,
		PredictiveDraws:  5,
		PredictivePoints: 20,
	}

	result, err := runFit(context.Background(), cfg, fp)
	require.NoError(t, err)
	require.Len(t, result.PredictiveTime, 20)
	require.Len(t, result.Predictive, 5)
	assert.Equal(t, 1.0, result.PredictiveTime[0])
	assert.Equal(t, 8.0, result.PredictiveTime[19])
	for _, curve := range result.Predictive {
		assert.Len(t, curve, 20)
	}
}

func TestInitWalkersRejectsHopelessPosterior(t *testing.T) {
	fp := flatProblem(t, 5.0)
	fp.logLike = func(map[string]float64) float64 { return math.Inf(-1) }

	rng := rand.New(rand.NewSource(1))
	_, err := fp.initWalkers(4, rng)
	assert.ErrorContains(t, err, "finite posterior")
}

func TestSummarizeChainOrdering(t *testing.T) {
	priors := prior.NewSet()
	a, err := prior.NewUniform(0, 1)
	require.NoError(t, err)
	b, err := prior.NewUniform(-5, 5)
	require.NoError(t, err)
	priors.Add("alpha", a)
	priors.Add("beta", b)

	c := &chain{
		Samples: [][]float64{
			{0.1, -1},
			{0.2, 0},
			{0.3, 1},
		},
		LogProbs: []float64{-1, -0.5, -2},
		Best:     []float64{0.2, 0},
	}

	out := summarizeChain(c, priors)
	require.Len(t, out, 2)
	assert.Equal(t, "alpha", out[0].Name)
	assert.Equal(t, "beta", out[1].Name)
	assert.Equal(t, 0.2, out[0].Median)
	assert.Equal(t, 0.0, out[1].Median)
	assert.Equal(t, 0.2, out[0].MaxLike)
	assert.Equal(t, -5.0, out[1].PriorLower)
	assert.Equal(t, 5.0, out[1].PriorUpper)
}
