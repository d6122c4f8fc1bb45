// Package prior defines the prior distributions used for Bayesian fits.
//
// Every distribution supports direct sampling, log-density evaluation and
// rescaling from the unit cube, so the same objects serve both the
// ensemble sampler and deterministic tests.
package prior

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Prior is one marginal prior distribution over a single parameter.
type Prior interface {
	// Sample draws one value from the distribution.
	Sample(rng *rand.Rand) float64
	// LnProb returns the log density at x, -Inf outside the support.
	LnProb(x float64) float64
	// Rescale maps a unit-cube coordinate u in [0, 1] into the support
	// via the inverse CDF.
	Rescale(u float64) float64
	// Bounds returns the support; infinities for unbounded tails.
	Bounds() (min, max float64)
	// Kind is the distribution name used in prior files.
	Kind() string
}

// Uniform is flat between Min and Max.
type Uniform struct {
	Min, Max float64
}

// NewUniform validates the bounds.
func NewUniform(min, max float64) (Uniform, error) {
	if !(max > min) {
		return Uniform{}, fmt.Errorf("uniform prior needs max > min, got [%g, %g]", min, max)
	}
	return Uniform{Min: min, Max: max}, nil
}

func (p Uniform) Sample(rng *rand.Rand) float64 { return p.Rescale(rng.Float64()) }
func (p Uniform) Rescale(u float64) float64 { return p.Min + u*(p.Max-p.Min) }
func (p Uniform) Bounds() (float64, float64) { return p.Min, p.Max }
func (p Uniform) Kind() string { return "uniform" }

func (p Uniform) LnProb(x float64) float64 {
	if x < p.Min || x > p.Max {
		return math.Inf(-1)
	}
	return -math.Log(p.Max - p.Min)
}

// LogUniform is flat in log space between Min and Max; the natural choice
// for scale parameters spanning decades.
type LogUniform struct {
	Min, Max float64
}

// NewLogUniform validates the bounds; both must be positive.
func NewLogUniform(min, max float64) (LogUniform, error) {
	if !(min > 0) || !(max > min) {
		return LogUniform{}, fmt.Errorf("log_uniform prior needs 0 < min < max, got [%g, %g]", min, max)
	}
	return LogUniform{Min: min, Max: max}, nil
}

func (p LogUniform) Sample(rng *rand.Rand) float64 { return p.Rescale(rng.Float64()) }
func (p LogUniform) Bounds() (float64, float64) { return p.Min, p.Max }
func (p LogUniform) Kind() string { return "log_uniform" }

func (p LogUniform) Rescale(u float64) float64 {
	return math.Exp(math.Log(p.Min) + u*(math.Log(p.Max)-math.Log(p.Min)))
}

func (p LogUniform) LnProb(x float64) float64 {
	if x < p.Min || x > p.Max {
		return math.Inf(-1)
	}
	return -math.Log(x) - math.Log(math.Log(p.Max/p.Min))
}

// Gaussian is an unbounded normal distribution.
type Gaussian struct {
	Mu, Sigma float64
}

// NewGaussian validates the width.
func NewGaussian(mu, sigma float64) (Gaussian, error) {
	if !(sigma > 0) {
		return Gaussian{}, fmt.Errorf("gaussian prior needs sigma > 0, got %g", sigma)
	}
	return Gaussian{Mu: mu, Sigma: sigma}, nil
}

func (p Gaussian) dist() distuv.Normal { return distuv.Normal{Mu: p.Mu, Sigma: p.Sigma} }

func (p Gaussian) Sample(rng *rand.Rand) float64 { return p.Rescale(rng.Float64()) }
func (p Gaussian) LnProb(x float64) float64 { return p.dist().LogProb(x) }
func (p Gaussian) Rescale(u float64) float64 { return p.dist().Quantile(clampUnit(u)) }
func (p Gaussian) Bounds() (float64, float64) { return math.Inf(-1), math.Inf(1) }
func (p Gaussian) Kind() string { return "gaussian" }

// TruncatedGaussian is a normal distribution restricted to [Min, Max] and
// renormalised there.
type TruncatedGaussian struct {
	Mu, Sigma float64
	Min, Max  float64
}

// NewTruncatedGaussian validates the width and bounds.
func NewTruncatedGaussian(mu, sigma, min, max float64) (TruncatedGaussian, error) {
	if !(sigma > 0) {
		return TruncatedGaussian{}, fmt.Errorf("truncated_gaussian prior needs sigma > 0, got %g", sigma)
	}
	if !(max > min) {
		return TruncatedGaussian{}, fmt.Errorf("truncated_gaussian prior needs max > min, got [%g, %g]", min, max)
	}
	return TruncatedGaussian{Mu: mu, Sigma: sigma, Min: min, Max: max}, nil
}

func (p TruncatedGaussian) dist() distuv.Normal { return distuv.Normal{Mu: p.Mu, Sigma: p.Sigma} }

// mass is the probability the untruncated normal assigns to [Min, Max].
func (p TruncatedGaussian) mass() float64 {
	d := p.dist()
	return d.CDF(p.Max) - d.CDF(p.Min)
}

func (p TruncatedGaussian) Sample(rng *rand.Rand) float64 { return p.Rescale(rng.Float64()) }
func (p TruncatedGaussian) Bounds() (float64, float64) { return p.Min, p.Max }
func (p TruncatedGaussian) Kind() string { return "truncated_gaussian" }

func (p TruncatedGaussian) LnProb(x float64) float64 {
	if x < p.Min || x > p.Max {
		return math.Inf(-1)
	}
	return p.dist().LogProb(x) - math.Log(p.mass())
}

func (p TruncatedGaussian) Rescale(u float64) float64 {
	d := p.dist()
	lo := d.CDF(p.Min)
	return d.Quantile(clampUnit(lo + clampUnit(u)*p.mass()))
}

// Sine has density sin(x)/2 on [0, pi]; an isotropic inclination angle.
type Sine struct{}

func (Sine) Sample(rng *rand.Rand) float64 { return Sine{}.Rescale(rng.Float64()) }
func (Sine) Rescale(u float64) float64 { return math.Acos(1 - 2*clampUnit(u)) }
func (Sine) Bounds() (float64, float64) { return 0, math.Pi }
func (Sine) Kind() string { return "sine" }

func (Sine) LnProb(x float64) float64 {
	if x < 0 || x > math.Pi {
		return math.Inf(-1)
	}
	return math.Log(math.Sin(x) / 2)
}

// Cosine has density cos(x)/2 on [-pi/2, pi/2]; an isotropic latitude.
type Cosine struct{}

func (Cosine) Sample(rng *rand.Rand) float64 { return Cosine{}.Rescale(rng.Float64()) }
func (Cosine) Rescale(u float64) float64 { return math.Asin(2*clampUnit(u) - 1) }
func (Cosine) Bounds() (float64, float64) { return -math.Pi / 2, math.Pi / 2 }
func (Cosine) Kind() string { return "cosine" }

func (Cosine) LnProb(x float64) float64 {
	if x < -math.Pi/2 || x > math.Pi/2 {
		return math.Inf(-1)
	}
	return math.Log(math.Cos(x) / 2)
}

// DeltaFunction pins a parameter to a single value; used to freeze
// parameters out of a fit.
type DeltaFunction struct {
	Peak float64
}

func (p DeltaFunction) Sample(*rand.Rand) float64 { return p.Peak }
func (p DeltaFunction) Rescale(float64) float64 { return p.Peak }
func (p DeltaFunction) Bounds() (float64, float64) { return p.Peak, p.Peak }
func (p DeltaFunction) Kind() string { return "delta" }

func (p DeltaFunction) LnProb(x float64) float64 {
	if x == p.Peak {
		return 0
	}
	return math.Inf(-1)
}

// clampUnit keeps inverse-CDF arguments strictly inside (0, 1) so the
// quantile functions stay finite.
func clampUnit(u float64) float64 {
	const eps = 1e-15
	if u < eps {
		return eps
	}
	if u > 1-eps {
		return 1 - eps
	}
	return u
}
