package models

import (
	"math"

	"github.com/pulsegrid/afterglow/schema"
)

// r-process heating parameterisation (Korobkin et al. 2012).
const (
	rprocessEps0  = 4e18 // erg/s/g
	rprocessT0    = 1.3  // s
	rprocessSigma = 0.11 // s
	rprocessPower = 1.3
)

// Analytic thermalisation efficiency coefficients (Barnes et al. 2016),
// interpolated for mej ~ 0.01 Msun, vej ~ 0.1c ejecta.
const (
	thermA = 0.56
	thermB = 0.17
	thermD = 0.74
)

func init() {
	register(&Model{
		Name:        "one_component_kilonova",
		Description: "Grey-body kilonova with r-process heating and an expanding photosphere",
		Type:        schema.KilonovaType,
		Units: []schema.OutputUnit{
			schema.LuminosityUnit, schema.FluxUnit, schema.FluxDensityUnit, schema.MagnitudeUnit,
		},
		Params: []Param{
			{Name: "mej", Unit: "Msun", Description: "Ejecta mass", Default: 0.04},
			{Name: "vej", Unit: "c", Description: "Ejecta velocity", Default: 0.15},
			{Name: "kappa", Unit: "cm^2/g", Description: "Grey opacity", Default: 1.0},
			{Name: "temperature_floor", Unit: "K", Description: "Photosphere temperature floor", Default: 2500},
		},
		Evaluate: oneComponentKilonova,
	})
}

// rprocessHeating returns the thermalised r-process heating rate in erg/s
// for an ejecta mass in grams at time t in days.
func rprocessHeating(tDays, mejGrams float64) float64 {
	tSec := tDays * daySeconds
	base := rprocessEps0 * math.Pow(0.5-math.Atan((tSec-rprocessT0)/rprocessSigma)/math.Pi, rprocessPower)
	return base * thermalisationEfficiency(tDays) * mejGrams
}

// thermalisationEfficiency is the analytic fit of Barnes et al. 2016.
func thermalisationEfficiency(tDays float64) float64 {
	if tDays <= 0 {
		return 0.36
	}
	td := math.Pow(tDays, thermD)
	return 0.36 * (math.Exp(-thermA*tDays) + math.Log1p(2*thermB*td)/(2*thermB*td))
}

// photosphere holds the radius/temperature state of the expanding ejecta
// at one time sample.
type photosphere struct {
	radius float64 // cm
	temp   float64 // K
}

// kilonovaPhotosphere derives the photosphere from the bolometric
// luminosity under free expansion, applying the temperature floor: once
// the effective temperature would drop below the floor, the temperature is
// pinned and the radius recedes instead.
func kilonovaPhotosphere(tDays, lum, vejC, tempFloor float64) photosphere {
	r := vejC * speedOfLight * tDays * daySeconds
	if r <= 0 || lum <= 0 {
		return photosphere{}
	}
	t4 := lum / (4 * math.Pi * r * r * stefanBoltzmann)
	temp := math.Pow(t4, 0.25)
	if temp < tempFloor {
		temp = tempFloor
		r = math.Sqrt(lum / (4 * math.Pi * stefanBoltzmann * math.Pow(tempFloor, 4)))
	}
	return photosphere{radius: r, temp: temp}
}

// oneComponentKilonova evaluates the kilonova model in any supported unit.
func oneComponentKilonova(t []float64, p Params, req Request) ([]float64, error) {
	mejGrams := p["mej"] * solarMass
	vejCms := p["vej"] * speedOfLight
	tauM := diffusionTimeDays(mejGrams, vejCms, p["kappa"])

	// Source-frame times for flux-like outputs.
	srcT := t
	z := req.Redshift
	timeDilated := req.Unit != schema.LuminosityUnit && !math.IsNaN(z) && z > 0
	if timeDilated {
		srcT = make([]float64, len(t))
		for i, ti := range t {
			srcT[i] = ti / (1 + z)
		}
	}

	lum, err := diffusedLuminosity(srcT, tauM, func(td float64) float64 {
		return rprocessHeating(td, mejGrams)
	})
	if err != nil {
		return nil, err
	}

	switch req.Unit {
	case schema.LuminosityUnit, schema.FluxUnit:
		return luminosityToRequested(lum, req, "one_component_kilonova")
	}

	dl, err := LuminosityDistance(z)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(t))
	for i := range t {
		nu, err := frequencyAt(req, i, len(t))
		if err != nil {
			return nil, err
		}
		ph := kilonovaPhotosphere(srcT[i], lum[i], p["vej"], p["temperature_floor"])
		fmJy := blackbodyFluxDensity(ph.radius, ph.temp, nu, z, dl)
		if req.Unit == schema.MagnitudeUnit {
			out[i] = fluxDensityToABMagnitude(fmJy)
		} else {
			out[i] = fmJy
		}
	}
	return out, nil
}
