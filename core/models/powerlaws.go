package models

import (
	"math"

	"github.com/pulsegrid/afterglow/schema"
)

func init() {
	register(&Model{
		Name:        "smooth_broken_powerlaw",
		Description: "Smoothly broken power-law flux density, the workhorse afterglow shape",
		Type:        schema.AfterglowType,
		Units:       []schema.OutputUnit{schema.FluxDensityUnit, schema.MagnitudeUnit},
		Params: []Param{
			{Name: "f_peak", Unit: "mJy", Description: "Flux density at the break time", Default: 1.0},
			{Name: "tb", Unit: "days", Description: "Break time", Default: 1.0},
			{Name: "alpha_1", Unit: "-", Description: "Temporal slope before the break", Default: -0.5},
			{Name: "alpha_2", Unit: "-", Description: "Temporal slope after the break", Default: -2.0},
			{Name: "s", Unit: "-", Description: "Break smoothness", Default: 1.0},
		},
		Evaluate: smoothBrokenPowerlaw,
	})

	register(&Model{
		Name:        "exponential_powerlaw",
		Description: "Power-law rise with an exponential cutoff",
		Type:        schema.GenericType,
		Units:       []schema.OutputUnit{schema.LuminosityUnit, schema.FluxUnit},
		Params: []Param{
			{Name: "a", Unit: "erg/s", Description: "Amplitude", Default: 1e42},
			{Name: "alpha", Unit: "-", Description: "Rise slope", Default: 1.0},
			{Name: "tau", Unit: "days", Description: "Cutoff timescale", Default: 30},
		},
		Evaluate: exponentialPowerlaw,
	})

	register(&Model{
		Name:        "gaussian_rise_powerlaw_decay",
		Description: "Gaussian rise to peak followed by a t^decay_index fallback, the canonical tidal disruption shape",
		Type:        schema.TDEType,
		Units:       []schema.OutputUnit{schema.LuminosityUnit, schema.FluxUnit},
		Params: []Param{
			{Name: "l_peak", Unit: "erg/s", Description: "Peak luminosity", Default: 1e44},
			{Name: "t_peak", Unit: "days", Description: "Time of peak", Default: 30},
			{Name: "sigma_rise", Unit: "days", Description: "Width of the Gaussian rise", Default: 10},
			{Name: "decay_index", Unit: "-", Description: "Post-peak power-law index", Default: -5.0 / 3.0},
		},
		Evaluate: gaussianRisePowerlawDecay,
	})
}

// smoothBrokenPowerlawValue joins two power laws at tb with smoothness s;
// larger s gives a sharper break.
func smoothBrokenPowerlawValue(t, fPeak, tb, alpha1, alpha2, s float64) float64 {
	x := t / tb
	blend := math.Pow(x, -s*alpha1) + math.Pow(x, -s*alpha2)
	return fPeak * math.Pow(2, 1/s) * math.Pow(blend, -1/s)
}

func smoothBrokenPowerlaw(t []float64, p Params, req Request) ([]float64, error) {
	out := make([]float64, len(t))
	for i, ti := range t {
		if ti <= 0 {
			if req.Unit == schema.MagnitudeUnit {
				out[i] = math.Inf(1)
			}
			continue
		}
		f := smoothBrokenPowerlawValue(ti, p["f_peak"], p["tb"], p["alpha_1"], p["alpha_2"], p["s"])
		if req.Unit == schema.MagnitudeUnit {
			out[i] = fluxDensityToABMagnitude(f)
		} else {
			out[i] = f
		}
	}
	return out, nil
}

func exponentialPowerlaw(t []float64, p Params, req Request) ([]float64, error) {
	lum := make([]float64, len(t))
	for i, ti := range t {
		if ti <= 0 {
			continue
		}
		lum[i] = p["a"] * math.Pow(ti, p["alpha"]) * math.Exp(-ti/p["tau"])
	}
	return luminosityToRequested(lum, req, "exponential_powerlaw")
}

func gaussianRisePowerlawDecay(t []float64, p Params, req Request) ([]float64, error) {
	lPeak := p["l_peak"]
	tPeak := p["t_peak"]
	sigma := p["sigma_rise"]

	lum := make([]float64, len(t))
	for i, ti := range t {
		switch {
		case ti <= 0:
		case ti <= tPeak:
			d := ti - tPeak
			lum[i] = lPeak * math.Exp(-d*d/(2*sigma*sigma))
		default:
			lum[i] = lPeak * math.Pow(ti/tPeak, p["decay_index"])
		}
	}
	return luminosityToRequested(lum, req, "gaussian_rise_powerlaw_decay")
}
