package models

import (
	"math"

	"github.com/pulsegrid/afterglow/schema"
)

func init() {
	register(&Model{
		Name:        "shock_cooling",
		Description: "Shock cooling of extended material around a supernova progenitor (Piro 2015)",
		Type:        schema.SupernovaType,
		Units:       []schema.OutputUnit{schema.LuminosityUnit, schema.FluxUnit},
		Params: []Param{
			{Name: "me", Unit: "Msun", Description: "Mass of the extended material", Default: 0.01},
			{Name: "re", Unit: "Rsun", Description: "Radius of the extended material", Default: 200},
			{Name: "ve", Unit: "km/s", Description: "Shock velocity through the extended material", Default: 10000},
			{Name: "kappa", Unit: "cm^2/g", Description: "Grey opacity", Default: 0.2},
		},
		Evaluate: shockCooling,
	})
}

// shockCoolingLuminosity evaluates the Piro 2015 analytic light curve
//
//	L(t) = (t_e E_e / t_p^2) exp(-t (t + 2 t_e) / (2 t_p^2))
//
// with the expansion time t_e = R_e/v_e and the diffusion time
// t_p = sqrt(3 kappa M_e / (4 pi c v_e)). All arguments cgs.
func shockCoolingLuminosity(tSec, meGrams, reCm, veCms, kappa float64) float64 {
	energy := 0.5 * meGrams * veCms * veCms
	te := reCm / veCms
	tp := math.Sqrt(3 * kappa * meGrams / (4 * math.Pi * speedOfLight * veCms))
	return (te * energy / (tp * tp)) * math.Exp(-tSec*(tSec+2*te)/(2*tp*tp))
}

func shockCooling(t []float64, p Params, req Request) ([]float64, error) {
	meGrams := p["me"] * solarMass
	reCm := p["re"] * solarRadius
	veCms := p["ve"] * 1e5

	lum := make([]float64, len(t))
	for i, ti := range t {
		if ti <= 0 {
			continue
		}
		lum[i] = shockCoolingLuminosity(ti*daySeconds, meGrams, reCm, veCms, p["kappa"])
	}
	return luminosityToRequested(lum, req, "shock_cooling")
}
