package models

import (
	"math"

	"github.com/pulsegrid/afterglow/schema"
)

// arnettGridPoints controls the internal grid for the diffusion integral.
const arnettGridPoints = 2000

// arnettBeta is the canonical light-curve shape factor of the diffusion
// approximation.
const arnettBeta = 13.8

func init() {
	register(&Model{
		Name:        "arnett",
		Description: "Radioactive-decay supernova bolometric light curve (Arnett diffusion)",
		Type:        schema.SupernovaType,
		Units:       []schema.OutputUnit{schema.LuminosityUnit, schema.FluxUnit},
		Params: []Param{
			{Name: "f_nickel", Unit: "-", Description: "Ni56 mass fraction of the ejecta", Default: 0.1},
			{Name: "mej", Unit: "Msun", Description: "Ejecta mass", Default: 1.0},
			{Name: "vej", Unit: "km/s", Description: "Ejecta velocity", Default: 10000},
			{Name: "kappa", Unit: "cm^2/g", Description: "Grey opacity", Default: 0.2},
		},
		Evaluate: arnett,
	})
}

// radioactiveHeating returns the Ni56+Co56 heating rate in erg/s for a
// nickel mass in grams at time t in days.
func radioactiveHeating(tDays, nickelGrams float64) float64 {
	ni := math.Exp(-tDays / nickelLifeDays)
	co := math.Exp(-tDays / cobaltLifeDays)
	return nickelGrams * ((nickelEnergyRate-cobaltEnergyRate)*ni + cobaltEnergyRate*co)
}

// diffusionTimeDays computes the Arnett diffusion timescale in days.
func diffusionTimeDays(mejGrams, vejCms, kappa float64) float64 {
	tauSec := math.Sqrt(2 * kappa * mejGrams / (arnettBeta * speedOfLight * vejCms))
	return tauSec / daySeconds
}

// diffusedLuminosity applies the Arnett diffusion solution
//
//	L(t) = e^{-x^2} \int_0^t 2 (t'/tau_m^2) e^{(t'/tau_m)^2} Q(t') dt',  x = t/tau_m
//
// to the heating function Q (erg/s, with t in days) on a dense grid, then
// interpolates onto the requested times. The exponential inside the
// integral overflows far past the diffusion time, so the integral is
// accumulated incrementally with the damping factor folded into each step;
// every exponent evaluated is non-positive.
func diffusedLuminosity(t []float64, tauM float64, heating func(tDays float64) float64) ([]float64, error) {
	tMax := 0.0
	for _, ti := range t {
		if ti > tMax {
			tMax = ti
		}
	}
	if tMax <= 0 {
		return make([]float64, len(t)), nil
	}

	grid := denseGrid(tMax, arnettGridPoints)
	// g~(t') = 2 (t'/tau_m^2) Q(t'), the integrand without its exponential.
	gt := func(td float64) float64 {
		return 2 * (td / (tauM * tauM)) * heating(td)
	}

	lum := make([]float64, len(grid))
	xPrev := grid[0] / tauM
	lum[0] = 0.5 * grid[0] * gt(grid[0]) // first sliver; the integrand vanishes at t'=0
	for i := 1; i < len(grid); i++ {
		x := grid[i] / tauM
		decay := math.Exp(xPrev*xPrev - x*x)
		dt := grid[i] - grid[i-1]
		lum[i] = lum[i-1]*decay + 0.5*dt*(gt(grid[i-1])*decay+gt(grid[i]))
		xPrev = x
	}

	out, err := interpolateTo(grid, lum, t)
	if err != nil {
		return nil, err
	}
	for i, ti := range t {
		if ti <= 0 {
			out[i] = 0
		}
	}
	return out, nil
}

// arnett evaluates the Arnett supernova model.
func arnett(t []float64, p Params, req Request) ([]float64, error) {
	mejGrams := p["mej"] * solarMass
	nickelGrams := p["f_nickel"] * mejGrams
	vejCms := p["vej"] * 1e5
	tauM := diffusionTimeDays(mejGrams, vejCms, p["kappa"])

	lum, err := diffusedLuminosity(t, tauM, func(td float64) float64 {
		return radioactiveHeating(td, nickelGrams)
	})
	if err != nil {
		return nil, err
	}
	return luminosityToRequested(lum, req, "arnett")
}
