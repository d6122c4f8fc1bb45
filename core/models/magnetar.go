package models

import (
	"math"

	"github.com/pulsegrid/afterglow/schema"
)

func init() {
	register(&Model{
		Name:        "magnetar",
		Description: "Millisecond-magnetar spin-down luminosity (closed form)",
		Type:        schema.MagnetarType,
		Units:       []schema.OutputUnit{schema.LuminosityUnit, schema.FluxUnit},
		Params: []Param{
			{Name: "l0", Unit: "erg/s", Description: "Initial spin-down luminosity", Default: 1e47},
			{Name: "tau", Unit: "days", Description: "Spin-down timescale", Default: 10},
			{Name: "nn", Unit: "-", Description: "Braking index", Default: 3},
		},
		Evaluate: magnetar,
	})

	register(&Model{
		Name:        "evolving_magnetar",
		Description: "Magnetar spin-down with the frequency evolution solved as an ODE",
		Type:        schema.MagnetarType,
		Units:       []schema.OutputUnit{schema.LuminosityUnit, schema.FluxUnit},
		Params: []Param{
			{Name: "l0", Unit: "erg/s", Description: "Initial spin-down luminosity", Default: 1e47},
			{Name: "tau", Unit: "days", Description: "Spin-down timescale", Default: 10},
			{Name: "nn", Unit: "-", Description: "Braking index", Default: 3},
		},
		Evaluate: evolvingMagnetar,
	})
}

// magnetarLuminosity is the closed-form spin-down law
//
//	L(t) = L0 (1 + t/tau)^{(1+n)/(1-n)}
//
// which reduces to the familiar 1/(1+t/tau)^2 for a dipole (n = 3).
func magnetarLuminosity(t, l0, tau, nn float64) float64 {
	if t < 0 {
		return 0
	}
	exponent := (1 + nn) / (1 - nn)
	return l0 * math.Pow(1+t/tau, exponent)
}

func magnetar(t []float64, p Params, req Request) ([]float64, error) {
	lum := make([]float64, len(t))
	for i, ti := range t {
		lum[i] = magnetarLuminosity(ti, p["l0"], p["tau"], p["nn"])
	}
	return luminosityToRequested(lum, req, "magnetar")
}

// evolvingMagnetarGridPoints controls the RK4 step count.
const evolvingMagnetarGridPoints = 4000

// evolvingMagnetar integrates the braking law omega' = -k omega^n with RK4
// and maps the spin frequency to luminosity via L proportional to
// omega^{n+1}. For constant braking index this matches the closed form,
// and the ODE route is what time-varying braking models build on.
func evolvingMagnetar(t []float64, p Params, req Request) ([]float64, error) {
	l0, tau, nn := p["l0"], p["tau"], p["nn"]

	tMax := 0.0
	for _, ti := range t {
		if ti > tMax {
			tMax = ti
		}
	}
	if tMax <= 0 {
		return luminosityToRequested(make([]float64, len(t)), req, "evolving_magnetar")
	}

	// Dimensionless spin omega(0) = 1; tau fixes the torque coefficient
	// via tau = omega0^{1-n} / ((n-1) k).
	k := 1 / ((nn - 1) * tau)
	h := tMax / evolvingMagnetarGridPoints
	omegas := rk4(func(_, om float64) float64 {
		if om <= 0 {
			return 0
		}
		return -k * math.Pow(om, nn)
	}, 0, 1, h, evolvingMagnetarGridPoints)

	grid := make([]float64, evolvingMagnetarGridPoints+1)
	lumGrid := make([]float64, evolvingMagnetarGridPoints+1)
	for i := range grid {
		grid[i] = float64(i) * h
		lumGrid[i] = l0 * math.Pow(omegas[i], nn+1)
	}

	lum, err := interpolateTo(grid, lumGrid, t)
	if err != nil {
		return nil, err
	}
	for i, ti := range t {
		if ti < 0 {
			lum[i] = 0
		}
	}
	return luminosityToRequested(lum, req, "evolving_magnetar")
}
