package prior

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestDistributions(t *testing.T) {
	uniform := mustUniform(2, 6)
	logUniform := mustLogUniform(1, 100)
	gaussian, err := NewGaussian(5, 2)
	require.NoError(t, err)
	truncated, err := NewTruncatedGaussian(0, 1, -1, 2)
	require.NoError(t, err)

	tests := []struct {
		name    string
		p       Prior
		inside  float64
		outside float64
	}{
		{"uniform", uniform, 3, 7},
		{"log_uniform", logUniform, 10, 0.5},
		{"truncated_gaussian", truncated, 0.5, 3},
		{"sine", Sine{}, 1, -0.1},
		{"cosine", Cosine{}, 0, 2},
		{"delta", DeltaFunction{Peak: 4}, 4, 4.1},
	}

	rng := rand.New(rand.NewSource(7))
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, math.IsInf(tc.p.LnProb(tc.inside), -1), "inside the support")
			assert.True(t, math.IsInf(tc.p.LnProb(tc.outside), -1), "outside the support")

			min, max := tc.p.Bounds()
			for i := 0; i < 200; i++ {
				x := tc.p.Sample(rng)
				assert.GreaterOrEqual(t, x, min)
				assert.LessOrEqual(t, x, max)
			}

			// Rescale endpoints land on the bounds.
			assert.InDelta(t, min, tc.p.Rescale(0), 1e-6*math.Max(1, math.Abs(min)))
			assert.InDelta(t, max, tc.p.Rescale(1), 1e-6*math.Max(1, math.Abs(max)))
		})
	}

	t.Run("gaussian", func(t *testing.T) {
		assert.InDelta(t, 5.0, gaussian.Rescale(0.5), 1e-9)
		// Standard normal density at the mean, shifted and scaled.
		assert.InDelta(t, math.Log(1/(2*math.Sqrt(2*math.Pi))), gaussian.LnProb(5), 1e-9)
	})
}

func TestDistributionValidation(t *testing.T) {
	_, err := NewUniform(3, 3)
	assert.Error(t, err)
	_, err = NewLogUniform(0, 10)
	assert.Error(t, err)
	_, err = NewGaussian(0, -1)
	assert.Error(t, err)
	_, err = NewTruncatedGaussian(0, 1, 5, 2)
	assert.Error(t, err)
}

func TestUniformRescaleMidpoint(t *testing.T) {
	u := mustUniform(-2, 2)
	assert.InDelta(t, 0.0, u.Rescale(0.5), 1e-12)
	assert.InDelta(t, math.Log(0.25), u.LnProb(1), 1e-12)

	lu := mustLogUniform(1, 100)
	assert.InDelta(t, 10.0, lu.Rescale(0.5), 1e-9)
}

func TestSetOrderingAndJointOps(t *testing.T) {
	s := NewSet()
	s.Add("b_param", mustUniform(0, 1))
	s.Add("a_param", mustLogUniform(1, 10))
	s.Add("c_param", DeltaFunction{Peak: 3})

	assert.Equal(t, []string{"b_param", "a_param", "c_param"}, s.Names())
	assert.Equal(t, 3, s.Len())

	rng := rand.New(rand.NewSource(42))
	params := s.Sample(rng)
	require.Len(t, params, 3)
	assert.Equal(t, 3.0, params["c_param"])
	assert.False(t, math.IsInf(s.LnProb(params), -1))

	t.Run("out of support is -Inf", func(t *testing.T) {
		bad := map[string]float64{"b_param": 2, "a_param": 5, "c_param": 3}
		assert.True(t, math.IsInf(s.LnProb(bad), -1))
	})

	t.Run("missing parameter is -Inf", func(t *testing.T) {
		bad := map[string]float64{"b_param": 0.5}
		assert.True(t, math.IsInf(s.LnProb(bad), -1))
	})

	t.Run("rescale follows set order", func(t *testing.T) {
		x, err := s.Rescale([]float64{0.5, 0.5, 0.9})
		require.NoError(t, err)
		assert.InDelta(t, 0.5, x[0], 1e-12)
		assert.InDelta(t, math.Sqrt(10), x[1], 1e-9)
		assert.Equal(t, 3.0, x[2])

		_, err = s.Rescale([]float64{0.5})
		assert.Error(t, err)
	})

	t.Run("vector round trip", func(t *testing.T) {
		vec := s.SampleVector(rng)
		m := s.ToParams(vec)
		assert.Equal(t, vec[0], m["b_param"])
		assert.Equal(t, vec[1], m["a_param"])
		assert.False(t, math.IsInf(s.LnProbVector(vec), -1))
	})
}

const samplePriorYAML = `
mej:
  type: log_uniform
  minimum: 0.001
  maximum: 0.1
vej:
  type: uniform
  minimum: 0.05
  maximum: 0.35
offset:
  type: gaussian
  mu: 0
  sigma: 1.5
angle:
  type: sine
kappa:
  type: delta
  peak: 1
`

func TestParsePriorFile(t *testing.T) {
	s, err := Parse([]byte(samplePriorYAML))
	require.NoError(t, err)
	assert.Equal(t, []string{"mej", "vej", "offset", "angle", "kappa"}, s.Names())

	p, ok := s.Get("mej")
	require.True(t, ok)
	assert.Equal(t, "log_uniform", p.Kind())
	min, max := p.Bounds()
	assert.Equal(t, 0.001, min)
	assert.Equal(t, 0.1, max)

	t.Run("unknown type", func(t *testing.T) {
		_, err := Parse([]byte("x:\n  type: jeffreys\n"))
		assert.ErrorContains(t, err, "unknown prior type")
	})

	t.Run("invalid bounds", func(t *testing.T) {
		_, err := Parse([]byte("x:\n  type: uniform\n  minimum: 5\n  maximum: 1\n"))
		assert.Error(t, err)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := Parse([]byte("{}\n"))
		assert.Error(t, err)
	})
}

func TestWriteRoundTrip(t *testing.T) {
	orig, err := Parse([]byte(samplePriorYAML))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, orig.Write(&buf))

	back, err := Parse(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, orig.Names(), back.Names())
	for _, n := range orig.Names() {
		p, _ := orig.Get(n)
		q, _ := back.Get(n)
		assert.Equal(t, p, q, n)
	}
}

func TestDefaults(t *testing.T) {
	for _, name := range DefaultModels() {
		s, err := Defaults(name)
		require.NoError(t, err, name)
		assert.Greater(t, s.Len(), 0, name)
	}

	_, err := Defaults("no_such_model")
	assert.ErrorContains(t, err, "no default priors")
}
