package prior

import (
	"fmt"
	"sort"
)

// mustUniform and friends panic on bad literals; only used for the
// compiled-in defaults below.
func mustUniform(min, max float64) Uniform {
	p, err := NewUniform(min, max)
	if err != nil {
		panic(err)
	}
	return p
}

func mustLogUniform(min, max float64) LogUniform {
	p, err := NewLogUniform(min, max)
	if err != nil {
		panic(err)
	}
	return p
}

// defaultSets holds broad, weakly informative priors per model, mirroring
// the parameter ranges the models are physically sensible over.
var defaultSets = map[string]func() *Set{
	"arnett": func() *Set {
		s := NewSet()
		s.Add("f_nickel", mustLogUniform(1e-3, 1))
		s.Add("mej", mustLogUniform(1e-2, 10))
		s.Add("vej", mustUniform(1e3, 3e4))
		s.Add("kappa", mustUniform(0.05, 2))
		return s
	},
	"one_component_kilonova": func() *Set {
		s := NewSet()
		s.Add("mej", mustLogUniform(1e-3, 0.1))
		s.Add("vej", mustUniform(0.05, 0.35))
		s.Add("kappa", mustLogUniform(0.1, 30))
		s.Add("temperature_floor", mustLogUniform(100, 6000))
		return s
	},
	"magnetar": func() *Set {
		s := NewSet()
		s.Add("l0", mustLogUniform(1e40, 1e50))
		s.Add("tau", mustLogUniform(1e-2, 1e3))
		s.Add("nn", mustUniform(1.5, 10))
		return s
	},
	"evolving_magnetar": func() *Set {
		s := NewSet()
		s.Add("l0", mustLogUniform(1e40, 1e50))
		s.Add("tau", mustLogUniform(1e-2, 1e3))
		s.Add("nn", mustUniform(1.5, 10))
		return s
	},
	"shock_cooling": func() *Set {
		s := NewSet()
		s.Add("me", mustLogUniform(1e-3, 1))
		s.Add("re", mustLogUniform(1, 3500))
		s.Add("ve", mustUniform(1e3, 5e4))
		s.Add("kappa", mustUniform(0.05, 2))
		return s
	},
	"smooth_broken_powerlaw": func() *Set {
		s := NewSet()
		s.Add("f_peak", mustLogUniform(1e-6, 1e3))
		s.Add("tb", mustLogUniform(1e-3, 1e3))
		s.Add("alpha_1", mustUniform(-3, 1))
		s.Add("alpha_2", mustUniform(-5, 0))
		s.Add("s", mustUniform(0.1, 10))
		return s
	},
	"exponential_powerlaw": func() *Set {
		s := NewSet()
		s.Add("a", mustLogUniform(1e35, 1e50))
		s.Add("alpha", mustUniform(0, 5))
		s.Add("tau", mustLogUniform(1, 300))
		return s
	},
	"gaussian_rise_powerlaw_decay": func() *Set {
		s := NewSet()
		s.Add("l_peak", mustLogUniform(1e40, 1e48))
		s.Add("t_peak", mustUniform(1, 300))
		s.Add("sigma_rise", mustLogUniform(0.1, 100))
		s.Add("decay_index", mustUniform(-3, -0.5))
		return s
	},
}

// Defaults returns the compiled-in prior set for a model name.
func Defaults(model string) (*Set, error) {
	builder, ok := defaultSets[model]
	if !ok {
		return nil, fmt.Errorf("no default priors for model %q, provide a prior file", model)
	}
	return builder(), nil
}

// DefaultModels lists the model names with compiled-in priors, sorted.
func DefaultModels() []string {
	names := make([]string, 0, len(defaultSets))
	for n := range defaultSets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
