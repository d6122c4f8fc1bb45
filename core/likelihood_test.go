package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsegrid/afterglow/core/models"
	"github.com/pulsegrid/afterglow/schema"
)

// flatModel returns a constant "level" at every time sample. It keeps the
// likelihood tests independent of any physical model.
func flatModel() *models.Model {
	return &models.Model{
		Name:  "flat",
		Units: []schema.OutputUnit{schema.LuminosityUnit},
		Params: []models.Param{
			{Name: "level", Default: 1},
		},
		Evaluate: func(t []float64, p models.Params, _ models.Request) ([]float64, error) {
			out := make([]float64, len(t))
			for i := range out {
				out[i] = p["level"]
			}
			return out, nil
		},
	}
}

func flatEvaluator(data *schema.FilteredData, hyper ...string) *evaluator {
	return &evaluator{
		model: flatModel(),
		time:  data.Time,
		req:   models.Request{Unit: schema.LuminosityUnit},
		hyper: hyper,
	}
}

func TestGaussianLikelihoodClosedForm(t *testing.T) {
	data := &schema.FilteredData{
		Time: []float64{1, 2},
		Y:    []float64{5, 5},
		YErr: []float64{0.5, 0.5},
	}
	logLike, err := buildLikelihood(schema.GaussianLikelihood, data, flatEvaluator(data))
	require.NoError(t, err)

	// Perfect fit: the residual term vanishes, only normalization remains.
	got := logLike(map[string]float64{"level": 5})
	want := -0.5 * 2 * (math.Log(0.25) + log2Pi)
	assert.InDelta(t, want, got, 1e-12)

	// Two-sigma residual per point.
	got = logLike(map[string]float64{"level": 6})
	want += -0.5 * 2 * 4.0
	assert.InDelta(t, want, got, 1e-12)
}

func TestQuadratureLikelihood(t *testing.T) {
	data := &schema.FilteredData{
		Time: []float64{1, 2, 3},
		Y:    []float64{5, 4, 6},
		YErr: []float64{0.5, 0.5, 0.5},
	}
	ev := flatEvaluator(data, sysNoiseParam)
	logLike, err := buildLikelihood(schema.QuadratureLikelihood, data, ev)
	require.NoError(t, err)

	gauss, err := buildLikelihood(schema.GaussianLikelihood, data, flatEvaluator(data))
	require.NoError(t, err)

	t.Run("zero systematic matches gaussian", func(t *testing.T) {
		a := logLike(map[string]float64{"level": 5, sysNoiseParam: 0})
		b := gauss(map[string]float64{"level": 5})
		assert.InDelta(t, b, a, 1e-12)
	})

	t.Run("negative systematic is rejected", func(t *testing.T) {
		assert.True(t, math.IsInf(logLike(map[string]float64{"level": 5, sysNoiseParam: -1}), -1))
	})

	t.Run("systematic noise downweights outliers", func(t *testing.T) {
		tight := logLike(map[string]float64{"level": 20, sysNoiseParam: 0.01})
		loose := logLike(map[string]float64{"level": 20, sysNoiseParam: 10})
		assert.Greater(t, loose, tight)
	})
}

func TestUpperLimitLikelihood(t *testing.T) {
	data := &schema.FilteredData{
		Time:     []float64{1, 2, 3},
		Y:        []float64{5, 5, 2}, // last point is a limit at 2
		YErr:     []float64{0.5, 0.5, 0.5},
		Detected: []bool{true, true, false},
	}
	logLike, err := buildLikelihood(schema.UpperLimitLikelihood, data, flatEvaluator(data))
	require.NoError(t, err)

	t.Run("model below the limit is barely penalized", func(t *testing.T) {
		// CDF((2-0.5)/0.5) = CDF(3) is essentially 1.
		ll := logLike(map[string]float64{"level": 0.5})
		assert.False(t, math.IsInf(ll, -1))
	})

	t.Run("model above the limit scores worse", func(t *testing.T) {
		below := logLike(map[string]float64{"level": 1.5})
		above := logLike(map[string]float64{"level": 4})
		assert.Greater(t, below, above)
	})

	t.Run("requires detection flags", func(t *testing.T) {
		noFlags := &schema.FilteredData{Time: data.Time, Y: data.Y, YErr: data.YErr}
		_, err := buildLikelihood(schema.UpperLimitLikelihood, noFlags, flatEvaluator(noFlags))
		assert.ErrorContains(t, err, "detection flags")
	})

	t.Run("hard limit excludes the model outright", func(t *testing.T) {
		hard := &schema.FilteredData{
			Time:     []float64{1},
			Y:        []float64{2},
			YErr:     []float64{0}, // sigma 0 marks a hard limit
			Detected: []bool{false},
		}
		ll, err := buildLikelihood(schema.UpperLimitLikelihood, hard, flatEvaluator(hard))
		require.NoError(t, err)
		assert.True(t, math.IsInf(ll(map[string]float64{"level": 3}), -1))
		assert.Equal(t, 0.0, ll(map[string]float64{"level": 1}))
	})
}

func TestStudentTLikelihood(t *testing.T) {
	data := &schema.FilteredData{
		Time: []float64{1, 2},
		Y:    []float64{5, 5},
		YErr: []float64{0.5, 0.5},
	}
	ev := flatEvaluator(data, studentTParam)
	logLike, err := buildLikelihood(schema.StudentTLikelihood, data, ev)
	require.NoError(t, err)

	assert.False(t, math.IsInf(logLike(map[string]float64{"level": 5, studentTParam: 10}), -1))
	assert.True(t, math.IsInf(logLike(map[string]float64{"level": 5, studentTParam: 0}), -1))

	// Heavy tails forgive outliers relative to a Gaussian.
	gauss, err := buildLikelihood(schema.GaussianLikelihood, data, flatEvaluator(data))
	require.NoError(t, err)
	assert.Greater(t,
		logLike(map[string]float64{"level": 30, studentTParam: 2}),
		gauss(map[string]float64{"level": 30}))
}

func TestLikelihoodNeverNaN(t *testing.T) {
	data := &schema.FilteredData{
		Time: []float64{1},
		Y:    []float64{5},
		YErr: []float64{0.5},
	}
	nanModel := &models.Model{
		Name:  "nan",
		Units: []schema.OutputUnit{schema.LuminosityUnit},
		Evaluate: func(t []float64, _ models.Params, _ models.Request) ([]float64, error) {
			return []float64{math.NaN()}, nil
		},
	}
	ev := &evaluator{model: nanModel, time: data.Time, req: models.Request{Unit: schema.LuminosityUnit}}

	for _, kind := range []schema.LikelihoodKind{
		schema.GaussianLikelihood,
		schema.QuadratureLikelihood,
	} {
		logLike, err := buildLikelihood(kind, data, ev)
		require.NoError(t, err)
		ll := logLike(map[string]float64{sysNoiseParam: 1})
		assert.False(t, math.IsNaN(ll), "likelihood %s returned NaN", kind)
		assert.True(t, math.IsInf(ll, -1))
	}
}

func TestBuildLikelihoodValidation(t *testing.T) {
	bad := &schema.FilteredData{
		Time: []float64{1},
		Y:    []float64{5},
		YErr: []float64{0},
	}
	_, err := buildLikelihood(schema.GaussianLikelihood, bad, flatEvaluator(bad))
	assert.ErrorContains(t, err, "non-positive uncertainty")

	ok := &schema.FilteredData{Time: []float64{1}, Y: []float64{5}, YErr: []float64{1}}
	_, err = buildLikelihood(schema.LikelihoodKind("poisson"), ok, flatEvaluator(ok))
	assert.ErrorContains(t, err, "unknown likelihood")
}

func TestHyperPriors(t *testing.T) {
	data := &schema.FilteredData{
		Time: []float64{1},
		Y:    []float64{5},
		YErr: []float64{0.5},
	}

	s, err := hyperPriors(schema.GaussianLikelihood, data)
	require.NoError(t, err)
	assert.Zero(t, s.Len())

	s, err = hyperPriors(schema.QuadratureLikelihood, data)
	require.NoError(t, err)
	assert.Equal(t, []string{sysNoiseParam}, s.Names())

	s, err = hyperPriors(schema.StudentTLikelihood, data)
	require.NoError(t, err)
	assert.Equal(t, []string{studentTParam}, s.Names())

	zeroErr := &schema.FilteredData{Time: []float64{1}, Y: []float64{5}, YErr: []float64{0}}
	_, err = hyperPriors(schema.QuadratureLikelihood, zeroErr)
	assert.ErrorContains(t, err, "positive uncertainties")
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, 1.5, sanitize(1.5))
	assert.True(t, math.IsInf(sanitize(math.NaN()), -1))
	assert.True(t, math.IsInf(sanitize(math.Inf(1)), -1))
	assert.True(t, math.IsInf(sanitize(math.Inf(-1)), -1))
}
