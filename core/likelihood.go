package core

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pulsegrid/afterglow/core/models"
	"github.com/pulsegrid/afterglow/core/prior"
	"github.com/pulsegrid/afterglow/schema"
)

// Names of likelihood hyper-parameters appended to the fitted parameter
// vector. They are stripped before the model is evaluated.
const (
	sysNoiseParam = "sigma_sys"
	studentTParam = "nu"
)

const log2Pi = 1.8378770664093453 // ln(2*pi)

// logLikeFunc evaluates the log likelihood at a parameter map.
// Invalid model output maps to -Inf, never NaN.
type logLikeFunc func(params map[string]float64) float64

// evaluator narrows a model to one dataset: fixed times, frequencies and
// redshift, with likelihood hyper-parameters stripped before evaluation.
type evaluator struct {
	model *models.Model
	time  []float64
	req   models.Request
	hyper []string
}

func (e *evaluator) eval(params map[string]float64) ([]float64, bool) {
	p := make(models.Params, len(params))
	for k, v := range params {
		p[k] = v
	}
	for _, h := range e.hyper {
		delete(p, h)
	}
	out, err := e.model.Evaluate(e.time, p, e.req)
	if err != nil {
		return nil, false
	}
	for _, v := range out {
		if math.IsNaN(v) {
			return nil, false
		}
	}
	return out, true
}

// hyperPriors returns extra priors a likelihood kind needs beyond the
// model's own parameters.
func hyperPriors(kind schema.LikelihoodKind, data *schema.FilteredData) (*prior.Set, error) {
	s := prior.NewSet()
	switch kind {
	case schema.QuadratureLikelihood:
		// The systematic noise floor spans from far below the smallest
		// error bar to the full data range.
		scale := 0.0
		for _, e := range data.YErr {
			scale = math.Max(scale, e)
		}
		if scale <= 0 {
			return nil, fmt.Errorf("quadrature likelihood needs positive uncertainties")
		}
		p, err := prior.NewLogUniform(scale*1e-3, scale*1e3)
		if err != nil {
			return nil, err
		}
		s.Add(sysNoiseParam, p)
	case schema.StudentTLikelihood:
		p, err := prior.NewLogUniform(1, 100)
		if err != nil {
			return nil, err
		}
		s.Add(studentTParam, p)
	}
	return s, nil
}

// buildLikelihood constructs the log-likelihood function for a dataset.
func buildLikelihood(kind schema.LikelihoodKind, data *schema.FilteredData, ev *evaluator) (logLikeFunc, error) {
	for i, e := range data.YErr {
		if e <= 0 && (kind != schema.UpperLimitLikelihood || data.Detected == nil || data.Detected[i]) {
			return nil, fmt.Errorf("point %d has non-positive uncertainty %g", i, e)
		}
	}

	switch kind {
	case schema.GaussianLikelihood:
		return func(params map[string]float64) float64 {
			m, ok := ev.eval(params)
			if !ok {
				return math.Inf(-1)
			}
			return gaussianLogLike(data.Y, data.YErr, m, 0)
		}, nil

	case schema.QuadratureLikelihood:
		return func(params map[string]float64) float64 {
			sys := params[sysNoiseParam]
			if sys < 0 {
				return math.Inf(-1)
			}
			m, ok := ev.eval(params)
			if !ok {
				return math.Inf(-1)
			}
			return gaussianLogLike(data.Y, data.YErr, m, sys)
		}, nil

	case schema.UpperLimitLikelihood:
		if data.Detected == nil {
			return nil, fmt.Errorf("upper-limit likelihood needs per-point detection flags")
		}
		return func(params map[string]float64) float64 {
			m, ok := ev.eval(params)
			if !ok {
				return math.Inf(-1)
			}
			return upperLimitLogLike(data, m)
		}, nil

	case schema.StudentTLikelihood:
		return func(params map[string]float64) float64 {
			nu := params[studentTParam]
			if nu <= 0 {
				return math.Inf(-1)
			}
			m, ok := ev.eval(params)
			if !ok {
				return math.Inf(-1)
			}
			total := 0.0
			for i, y := range data.Y {
				d := distuv.StudentsT{Mu: m[i], Sigma: data.YErr[i], Nu: nu}
				total += d.LogProb(y)
			}
			return sanitize(total)
		}, nil

	default:
		return nil, fmt.Errorf("unknown likelihood %q", kind)
	}
}

// gaussianLogLike is the iid Gaussian log likelihood with an optional
// systematic term added in quadrature.
func gaussianLogLike(y, yErr, m []float64, sys float64) float64 {
	total := 0.0
	for i := range y {
		v := yErr[i]*yErr[i] + sys*sys
		r := y[i] - m[i]
		total += -0.5 * (r*r/v + math.Log(v) + log2Pi)
	}
	return sanitize(total)
}

// upperLimitLogLike treats detections as Gaussian draws and non-detections
// as one-sided constraints: the probability the true value lies below the
// reported limit, a Gaussian CDF at (limit - model) / sigma.
func upperLimitLogLike(data *schema.FilteredData, m []float64) float64 {
	total := 0.0
	for i, y := range data.Y {
		sigma := data.YErr[i]
		if data.Detected[i] {
			r := y - m[i]
			total += -0.5 * (r*r/(sigma*sigma) + math.Log(sigma*sigma) + log2Pi)
			continue
		}
		if sigma <= 0 {
			// A hard limit: model above it is excluded outright.
			if m[i] > y {
				return math.Inf(-1)
			}
			continue
		}
		cdf := distuv.UnitNormal.CDF((y - m[i]) / sigma)
		if cdf <= 0 {
			return math.Inf(-1)
		}
		total += math.Log(cdf)
	}
	return sanitize(total)
}

// sanitize maps NaN and +Inf to -Inf so the sampler always rejects
// pathological evaluations.
func sanitize(ll float64) float64 {
	if math.IsNaN(ll) || math.IsInf(ll, 1) {
		return math.Inf(-1)
	}
	return ll
}
