package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsegrid/afterglow/schema"
)

func TestRegistry(t *testing.T) {
	names := Names()
	require.NotEmpty(t, names)
	assert.IsIncreasing(t, names)

	for _, name := range []string{
		"arnett", "one_component_kilonova", "magnetar", "evolving_magnetar",
		"shock_cooling", "smooth_broken_powerlaw", "exponential_powerlaw",
		"gaussian_rise_powerlaw_decay",
	} {
		m, err := Get(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, m.Name)
		assert.NotEmpty(t, m.Params)
		assert.NotEmpty(t, m.Units)
	}

	_, err := Get("no_such_model")
	assert.ErrorContains(t, err, "unknown model")
}

func TestEvaluateValidation(t *testing.T) {
	m, err := Get("arnett")
	require.NoError(t, err)

	times := []float64{1, 10}

	t.Run("missing parameter", func(t *testing.T) {
		p := m.DefaultParams()
		delete(p, "mej")
		_, err := m.Evaluate(times, p, Request{Unit: schema.LuminosityUnit})
		assert.ErrorContains(t, err, "missing parameter")
	})

	t.Run("non-finite parameter", func(t *testing.T) {
		p := m.DefaultParams()
		p["vej"] = math.NaN()
		_, err := m.Evaluate(times, p, Request{Unit: schema.LuminosityUnit})
		assert.ErrorContains(t, err, "not finite")
	})

	t.Run("unsupported unit", func(t *testing.T) {
		_, err := m.Evaluate(times, m.DefaultParams(), Request{Unit: schema.MagnitudeUnit})
		assert.ErrorContains(t, err, "does not support")
	})

	t.Run("flux needs redshift", func(t *testing.T) {
		_, err := m.Evaluate(times, m.DefaultParams(), Request{Unit: schema.FluxUnit})
		assert.Error(t, err)
	})
}

func TestLuminosityDistance(t *testing.T) {
	t.Run("rejects non-positive redshift", func(t *testing.T) {
		_, err := LuminosityDistance(0)
		assert.Error(t, err)
		_, err = LuminosityDistance(-0.1)
		assert.Error(t, err)
		_, err = LuminosityDistance(math.NaN())
		assert.Error(t, err)
	})

	t.Run("low redshift matches the Hubble law", func(t *testing.T) {
		dl, err := LuminosityDistance(0.01)
		require.NoError(t, err)
		// d_L ~ (1+z) c z / H0 at low z, about 44.7 Mpc here.
		assert.InEpsilon(t, 44.65*megaparsec, dl, 0.02)
	})

	t.Run("monotonic in redshift", func(t *testing.T) {
		prev := 0.0
		for _, z := range []float64{0.1, 0.5, 1, 2, 5} {
			dl, err := LuminosityDistance(z)
			require.NoError(t, err)
			assert.Greater(t, dl, prev)
			prev = dl
		}
	})
}

func TestArnett(t *testing.T) {
	m, err := Get("arnett")
	require.NoError(t, err)
	p := m.DefaultParams()

	times := []float64{1, 5, 10, 15, 20, 30, 60, 100, 300}
	lum, err := m.Evaluate(times, p, Request{Unit: schema.LuminosityUnit})
	require.NoError(t, err)
	require.Len(t, lum, len(times))

	t.Run("rises then declines", func(t *testing.T) {
		for _, l := range lum {
			assert.Greater(t, l, 0.0)
		}
		assert.Greater(t, lum[2], lum[0], "still rising towards peak")
		assert.Greater(t, lum[4], lum[8], "declining on the tail")
	})

	t.Run("tail tracks the instantaneous heating", func(t *testing.T) {
		// Long after the diffusion time, photons escape as fast as they
		// are produced.
		nickelGrams := p["f_nickel"] * p["mej"] * solarMass
		assert.InEpsilon(t, radioactiveHeating(300, nickelGrams), lum[8], 0.05)
	})

	t.Run("flux is luminosity over the shell area", func(t *testing.T) {
		const z = 0.1
		flux, err := m.Evaluate(times, p, Request{Unit: schema.FluxUnit, Redshift: z})
		require.NoError(t, err)
		dl, err := LuminosityDistance(z)
		require.NoError(t, err)
		for i := range times {
			assert.InEpsilon(t, lum[i]/(4*math.Pi*dl*dl), flux[i], 1e-9)
		}
	})

	t.Run("zero before explosion", func(t *testing.T) {
		out, err := m.Evaluate([]float64{-1, 0, 1}, p, Request{Unit: schema.LuminosityUnit})
		require.NoError(t, err)
		assert.Zero(t, out[0])
		assert.Zero(t, out[1])
		assert.Greater(t, out[2], 0.0)
	})
}

func TestMagnetar(t *testing.T) {
	m, err := Get("magnetar")
	require.NoError(t, err)
	p := Params{"l0": 1e47, "tau": 10, "nn": 3}

	out, err := m.Evaluate([]float64{0, 10, 90}, p, Request{Unit: schema.LuminosityUnit})
	require.NoError(t, err)

	// Dipole braking gives L = L0 / (1 + t/tau)^2.
	assert.InDelta(t, 1e47, out[0], 1e38)
	assert.InEpsilon(t, 1e47/4, out[1], 1e-12)
	assert.InEpsilon(t, 1e47/100, out[2], 1e-12)
}

func TestEvolvingMagnetarMatchesClosedForm(t *testing.T) {
	evolving, err := Get("evolving_magnetar")
	require.NoError(t, err)

	p := Params{"l0": 1e47, "tau": 10, "nn": 3}
	times := []float64{0.5, 1, 5, 10, 30, 60}

	got, err := evolving.Evaluate(times, p, Request{Unit: schema.LuminosityUnit})
	require.NoError(t, err)

	for i, ti := range times {
		want := magnetarLuminosity(ti, p["l0"], p["tau"], p["nn"])
		assert.InEpsilon(t, want, got[i], 1e-3, "t=%g", ti)
	}
}

func TestKilonova(t *testing.T) {
	m, err := Get("one_component_kilonova")
	require.NoError(t, err)
	p := m.DefaultParams()

	const z = 0.01
	gBand, err := schema.BandToFrequency("g")
	require.NoError(t, err)
	req := Request{Unit: schema.FluxDensityUnit, Frequencies: []float64{gBand}, Redshift: z}

	times := []float64{0.5, 1, 2, 4, 8, 16}
	fd, err := m.Evaluate(times, p, req)
	require.NoError(t, err)

	t.Run("fades in the optical after peak", func(t *testing.T) {
		for _, f := range fd {
			assert.Greater(t, f, 0.0)
		}
		assert.Greater(t, fd[1], fd[5], "kilonovae are gone within weeks")
	})

	t.Run("magnitude output is the AB conversion of the flux density", func(t *testing.T) {
		magReq := req
		magReq.Unit = schema.MagnitudeUnit
		mags, err := m.Evaluate(times, p, magReq)
		require.NoError(t, err)
		for i := range times {
			assert.InDelta(t, fluxDensityToABMagnitude(fd[i]), mags[i], 1e-9)
		}
	})

	t.Run("flux density needs a frequency", func(t *testing.T) {
		_, err := m.Evaluate(times, p, Request{Unit: schema.FluxDensityUnit, Redshift: z})
		assert.ErrorContains(t, err, "requires a band or frequency")
	})
}

func TestKilonovaPhotosphereFloor(t *testing.T) {
	// Early on the photosphere is hot and expanding with the ejecta; once
	// the floor kicks in the temperature is pinned.
	hot := kilonovaPhotosphere(0.5, 1e41, 0.2, 2500)
	assert.Greater(t, hot.temp, 2500.0)
	assert.InEpsilon(t, 0.2*speedOfLight*0.5*daySeconds, hot.radius, 1e-12)

	cool := kilonovaPhotosphere(30, 1e38, 0.2, 2500)
	assert.Equal(t, 2500.0, cool.temp)
	assert.Less(t, cool.radius, 0.2*speedOfLight*30*daySeconds)
}

func TestShockCooling(t *testing.T) {
	m, err := Get("shock_cooling")
	require.NoError(t, err)
	p := m.DefaultParams()

	times := []float64{0.1, 0.5, 1, 2, 5, 10}
	lum, err := m.Evaluate(times, p, Request{Unit: schema.LuminosityUnit})
	require.NoError(t, err)

	t.Run("monotonically fading", func(t *testing.T) {
		assert.IsDecreasing(t, lum)
		assert.Greater(t, lum[0], 0.0)
	})

	t.Run("matches the analytic form", func(t *testing.T) {
		want := shockCoolingLuminosity(times[2]*daySeconds,
			p["me"]*solarMass, p["re"]*solarRadius, p["ve"]*1e5, p["kappa"])
		assert.InEpsilon(t, want, lum[2], 1e-12)
	})
}

func TestSmoothBrokenPowerlaw(t *testing.T) {
	m, err := Get("smooth_broken_powerlaw")
	require.NoError(t, err)
	p := Params{"f_peak": 2.5, "tb": 3, "alpha_1": -0.5, "alpha_2": -2, "s": 4}

	req := Request{Unit: schema.FluxDensityUnit, Frequencies: []float64{5e14}}

	t.Run("flux density equals f_peak at the break", func(t *testing.T) {
		out, err := m.Evaluate([]float64{3}, p, req)
		require.NoError(t, err)
		assert.InEpsilon(t, 2.5, out[0], 1e-12)
	})

	t.Run("recovers the pure slopes far from the break", func(t *testing.T) {
		out, err := m.Evaluate([]float64{0.003, 0.03, 300, 3000}, p, req)
		require.NoError(t, err)
		early := math.Log10(out[0]/out[1]) / math.Log10(0.003/0.03)
		late := math.Log10(out[3]/out[2]) / math.Log10(3000.0/300.0)
		assert.InDelta(t, -0.5, early, 1e-3)
		assert.InDelta(t, -2.0, late, 1e-3)
	})

	t.Run("magnitude output", func(t *testing.T) {
		magReq := req
		magReq.Unit = schema.MagnitudeUnit
		out, err := m.Evaluate([]float64{3}, p, magReq)
		require.NoError(t, err)
		assert.InDelta(t, fluxDensityToABMagnitude(2.5), out[0], 1e-9)
	})
}

func TestExponentialPowerlaw(t *testing.T) {
	m, err := Get("exponential_powerlaw")
	require.NoError(t, err)
	p := Params{"a": 1e42, "alpha": 1, "tau": 30}

	out, err := m.Evaluate([]float64{0, 30}, p, Request{Unit: schema.LuminosityUnit})
	require.NoError(t, err)
	assert.Zero(t, out[0])
	assert.InEpsilon(t, 1e42*30*math.Exp(-1), out[1], 1e-12)
}

func TestGaussianRisePowerlawDecay(t *testing.T) {
	m, err := Get("gaussian_rise_powerlaw_decay")
	require.NoError(t, err)
	p := Params{"l_peak": 1e44, "t_peak": 30, "sigma_rise": 10, "decay_index": -5.0 / 3.0}

	times := []float64{10, 20, 30, 60, 120}
	out, err := m.Evaluate(times, p, Request{Unit: schema.LuminosityUnit})
	require.NoError(t, err)

	t.Run("peaks at t_peak", func(t *testing.T) {
		assert.InEpsilon(t, 1e44, out[2], 1e-12)
		assert.Less(t, out[0], out[1])
		assert.Less(t, out[1], out[2])
	})

	t.Run("canonical fallback decay", func(t *testing.T) {
		assert.InEpsilon(t, 1e44*math.Pow(2, -5.0/3.0), out[3], 1e-12)
		assert.InEpsilon(t, out[3]*math.Pow(2, -5.0/3.0), out[4], 1e-12)
	})
}

func TestABMagnitudeRoundTrip(t *testing.T) {
	for _, f := range []float64{0.01, 1, 250} {
		mag := fluxDensityToABMagnitude(f)
		assert.InEpsilon(t, f, abMagnitudeToFluxDensity(mag), 1e-12)
	}
	assert.True(t, math.IsInf(fluxDensityToABMagnitude(0), 1))
}
